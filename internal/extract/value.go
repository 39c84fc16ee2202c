package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/brainmap/internal/rma"
)

// Kind is the declared value type of an attribute
type Kind int

const (
	KindText Kind = iota
	KindInt
)

func (k Kind) String() string {
	if k == KindInt {
		return "integer"
	}
	return "text"
}

// Value is a typed attribute value. The zero Value is null.
type Value struct {
	kind Kind
	set  bool
	i    int64
	s    string
}

// Null returns a null value of kind k.
func Null(k Kind) Value { return Value{kind: k} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, set: true, i: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: KindText, set: true, s: v} }

// Kind returns the declared kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the field was present but empty.
func (v Value) IsNull() bool { return !v.set }

// Int returns the integer and whether v holds one.
func (v Value) Int() (int64, bool) {
	if v.IsNull() || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Text returns the string and whether v holds one.
func (v Value) Text() (string, bool) {
	if v.IsNull() || v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// String renders the value for display; null renders as "".
func (v Value) String() string {
	switch {
	case v.IsNull():
		return ""
	case v.kind == KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return v.s
	}
}

// MarshalJSON encodes integers as numbers, text as strings and null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsNull():
		return []byte("null"), nil
	case v.kind == KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	default:
		return json.Marshal(v.s)
	}
}

// parse converts a node to a value of kind k.
func parse(n *rma.Node, k Kind) (Value, error) {
	if n.IsNull() {
		return Null(k), nil
	}
	text := strings.TrimSpace(n.Text)
	if k == KindInt {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, errors.Mark(
				errors.Wrapf(err, "%s: %q is not an integer", n.Name, text),
				rma.ErrMalformedValue,
			)
		}
		return Int(i), nil
	}
	return Text(text), nil
}
