package rma

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Identifier selects entities by ID, acronym or name.
//
// Only one field is honoured per call. When several are populated the
// precedence is fixed: IDs, then acronyms, then names. The others are
// reported by Discarded so callers can surface them.
type Identifier struct {
	IDs      []int64
	Acronyms []string
	Names    []string
}

// ByID selects entities by numeric ID.
func ByID(ids ...int64) Identifier { return Identifier{IDs: ids} }

// ByAcronym selects entities by acronym (case sensitive).
func ByAcronym(acronyms ...string) Identifier { return Identifier{Acronyms: acronyms} }

// ByName selects entities by full name (case sensitive). RMA string
// literals have no escape, so names containing a single quote are rejected
// by BuildCriteria.
func ByName(names ...string) Identifier { return Identifier{Names: names} }

// IsEmpty reports whether no identifying parameter is populated.
func (id Identifier) IsEmpty() bool {
	return len(id.IDs) == 0 && len(id.Acronyms) == 0 && len(id.Names) == 0
}

// Field returns the criteria field that will be used: "id", "acronym",
// "name", or "" for an empty identifier.
func (id Identifier) Field() string {
	switch {
	case len(id.IDs) > 0:
		return "id"
	case len(id.Acronyms) > 0:
		return "acronym"
	case len(id.Names) > 0:
		return "name"
	}
	return ""
}

// Discarded lists the populated fields that lose to the precedence order.
func (id Identifier) Discarded() []string {
	var out []string
	used := id.Field()
	for _, f := range []struct {
		name string
		n    int
	}{
		{"id", len(id.IDs)},
		{"acronym", len(id.Acronyms)},
		{"name", len(id.Names)},
	} {
		if f.n > 0 && f.name != used {
			out = append(out, f.name)
		}
	}
	return out
}

// String renders the honoured parameter, e.g. id=1018 or acronym=[SSp MOp].
func (id Identifier) String() string {
	var vals []string
	switch id.Field() {
	case "id":
		for _, v := range id.IDs {
			vals = append(vals, strconv.FormatInt(v, 10))
		}
	case "acronym":
		vals = id.Acronyms
	case "name":
		vals = id.Names
	default:
		return "<none>"
	}
	if len(vals) == 1 {
		return id.Field() + "=" + vals[0]
	}
	return fmt.Sprintf("%s=[%s]", id.Field(), strings.Join(vals, " "))
}

// BuildCriteria turns an identifier into an RMA filter fragment.
//
// A single value yields an equality test ([id$eq5], [acronym$eq'SSp']);
// several values yield a membership test ([acronym$in'SSp','MOp']).
// Strings are quote-wrapped, numbers are not. A string holding a single
// quote fails with ErrInvalidInput.
func BuildCriteria(id Identifier) (string, error) {
	var vals []string
	quote := true
	switch id.Field() {
	case "id":
		quote = false
		for _, v := range id.IDs {
			vals = append(vals, strconv.FormatInt(v, 10))
		}
	case "acronym":
		vals = id.Acronyms
	case "name":
		vals = id.Names
	default:
		return "", errors.WithHint(
			errors.Wrap(ErrInvalidInput, "at least one of id, acronym or name must be specified"),
			"pass an ID, an acronym or a name",
		)
	}

	if quote {
		quoted := make([]string, len(vals))
		for i, v := range vals {
			if strings.Contains(v, "'") {
				return "", errors.WithHint(
					errors.Wrapf(ErrInvalidInput, "%s %q contains a single quote", id.Field(), v),
					"look the entity up by id instead",
				)
			}
			quoted[i] = "'" + v + "'"
		}
		vals = quoted
	}

	op := "eq"
	if len(vals) > 1 {
		op = "in"
	}
	return fmt.Sprintf("[%s$%s%s]", id.Field(), op, strings.Join(vals, ",")), nil
}
