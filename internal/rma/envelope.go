package rma

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html/charset"
)

// Format is the response encoding requested from the service
type Format int

const (
	FormatXML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "xml"
}

// Node is one decoded field of a response row. XML elements map to nodes
// one to one. JSON object keys become child nodes with '_' replaced by '-',
// and each element of a JSON array becomes a child named after its key.
type Node struct {
	Name     string
	Text     string
	Nil      bool
	Children []*Node
}

// IsNull reports whether the node is present but carries no value.
func (n *Node) IsNull() bool {
	return n.Nil || (n.Text == "" && len(n.Children) == 0)
}

// FindAll returns every descendant matching a slash separated path of
// child names, in document order.
func (n *Node) FindAll(path string) []*Node {
	current := []*Node{n}
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		var next []*Node
		for _, c := range current {
			for _, child := range c.Children {
				if child.Name == seg {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Find returns the first match of path, or nil.
func (n *Node) Find(path string) *Node {
	if found := n.FindAll(path); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Envelope is a decoded RMA response, independent of wire encoding
type Envelope struct {
	Success   bool
	TotalRows int
	Rows      []*Node
	Message   string // server message when the payload is not a row list
}

// FindAll evaluates path against every row, in row order.
func (e *Envelope) FindAll(path string) []*Node {
	var out []*Node
	for _, row := range e.Rows {
		out = append(out, row.FindAll(path)...)
	}
	return out
}

// Decode parses a response body in the given format.
func Decode(format Format, r io.Reader) (*Envelope, error) {
	var (
		env *Envelope
		err error
	)
	if format == FormatJSON {
		env, err = decodeJSON(r)
	} else {
		env, err = decodeXML(r)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s response", format), ErrDecode)
	}
	return env, nil
}

func decodeXML(r io.Reader) (*Envelope, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var start *xml.StartElement
	for start == nil {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			start = &se
		}
	}

	root, err := readElement(dec, *start)
	if err != nil {
		return nil, err
	}

	env := &Envelope{TotalRows: -1}
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "success":
			env.Success, _ = strconv.ParseBool(attr.Value)
		case "total_rows":
			n, err := strconv.Atoi(strings.TrimSpace(attr.Value))
			if err != nil {
				return nil, errors.Wrapf(err, "total_rows %q", attr.Value)
			}
			env.TotalRows = n
		}
	}

	// <Response><structures><structure/>...</structures></Response>
	for _, child := range root.Children {
		if child.Name == "msg" && len(child.Children) == 0 {
			env.Message = child.Text
			continue
		}
		env.Rows = append(env.Rows, child.Children...)
		break
	}
	if env.TotalRows < 0 {
		env.TotalRows = len(env.Rows)
	}
	return env, nil
}

func readElement(dec *xml.Decoder, start xml.StartElement) (*Node, error) {
	n := &Node{Name: start.Name.Local}
	for _, attr := range start.Attr {
		if attr.Name.Local == "nil" && attr.Value == "true" {
			n.Nil = true
		}
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readElement(dec, t)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.Text = strings.TrimSpace(text.String())
			return n, nil
		}
	}
}

type jsonEnvelope struct {
	Success   *bool           `json:"success"`
	TotalRows json.RawMessage `json:"total_rows"`
	Msg       json.RawMessage `json:"msg"`
}

func decodeJSON(r io.Reader) (*Envelope, error) {
	var raw jsonEnvelope
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	env := &Envelope{TotalRows: -1}
	if raw.Success != nil {
		env.Success = *raw.Success
	}

	// total_rows arrives as a number or as a numeric string
	if tr := strings.Trim(string(bytes.TrimSpace(raw.TotalRows)), `"`); tr != "" && tr != "null" {
		n, err := strconv.Atoi(tr)
		if err != nil {
			return nil, errors.Wrapf(err, "total_rows %s", raw.TotalRows)
		}
		env.TotalRows = n
	}

	msg := bytes.TrimSpace(raw.Msg)
	switch {
	case len(msg) == 0 || string(msg) == "null":
	case msg[0] == '"':
		if err := json.Unmarshal(msg, &env.Message); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var rows []any
		if err := dec.Decode(&rows); err != nil {
			return nil, errors.Wrap(err, "msg")
		}
		for _, row := range rows {
			env.Rows = append(env.Rows, jsonNodes("row", row)...)
		}
	}

	if env.TotalRows < 0 {
		env.TotalRows = len(env.Rows)
	}
	return env, nil
}

func jsonNodes(name string, v any) []*Node {
	switch t := v.(type) {
	case nil:
		return []*Node{{Name: name, Nil: true}}
	case []any:
		var out []*Node
		for _, el := range t {
			out = append(out, jsonNodes(name, el)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &Node{Name: name}
		for _, k := range keys {
			n.Children = append(n.Children, jsonNodes(strings.ReplaceAll(k, "_", "-"), t[k])...)
		}
		return []*Node{n}
	case json.Number:
		return []*Node{{Name: name, Text: t.String()}}
	case string:
		return []*Node{{Name: name, Text: strings.TrimSpace(t)}}
	case bool:
		return []*Node{{Name: name, Text: strconv.FormatBool(t)}}
	default:
		return []*Node{{Name: name}}
	}
}
