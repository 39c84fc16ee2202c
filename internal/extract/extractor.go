// Package extract pulls typed attribute values out of decoded RMA responses.
//
// Every entity family has a fixed Schema. Attribute names are resolved
// against it and each one carries a compile-time path and value kind, so
// no value type is guessed at runtime.
//
// Callers must only extract from responses already known to hold rows.
package extract

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/rma"
)

// Extractor reads attributes of one schema from envelopes
type Extractor struct {
	schema *Schema
	logger *zap.SugaredLogger
}

// NewExtractor creates an extractor. A nil logger uses the global one.
func NewExtractor(schema *Schema, logger *zap.SugaredLogger) *Extractor {
	return &Extractor{
		schema: schema,
		logger: logging.Or(logger, "extract"),
	}
}

// Each returns one value per match of the attribute across all rows, in
// row order. An attribute outside the schema, or one whose path matches
// nothing in the response, fails with ErrUnknownAttribute.
func (e *Extractor) Each(env *rma.Envelope, name string) ([]Value, error) {
	attr, err := e.schema.Attribute(name)
	if err != nil {
		return nil, err
	}

	nodes := env.FindAll(attr.Path)
	if len(nodes) == 0 {
		return nil, errors.Wrapf(rma.ErrUnknownAttribute, "no %s attribute %q in response", e.schema.Entity, name)
	}

	values := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := parse(n, attr.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "%s attribute %q", e.schema.Entity, name)
		}
		values = append(values, v)
	}
	return values, nil
}

// One returns the first value of the attribute.
func (e *Extractor) One(env *rma.Envelope, name string) (Value, error) {
	values, err := e.Each(env, name)
	if err != nil {
		return Value{}, err
	}
	return values[0], nil
}

// Result is a multi-attribute extraction: the values found plus the names
// that were skipped because they are not attributes of the entity.
type Result struct {
	Entity  string
	Names   []string
	Values  map[string][]Value
	Skipped []string
}

// Has reports whether name was extracted.
func (r *Result) Has(name string) bool {
	_, ok := r.Values[name]
	return ok
}

// Get returns the first value of name.
func (r *Result) Get(name string) (Value, bool) {
	vals := r.Values[name]
	if len(vals) == 0 {
		return Value{}, false
	}
	return vals[0], true
}

// All returns every value of name, one per matching row.
func (r *Result) All(name string) []Value {
	return r.Values[name]
}

// First maps each extracted name to its first value.
func (r *Result) First() map[string]Value {
	out := make(map[string]Value, len(r.Names))
	for _, name := range r.Names {
		out[name], _ = r.Get(name)
	}
	return out
}

// Many extracts several attributes. No names means every attribute, in
// schema order. Unknown names are logged and collected in Result.Skipped
// instead of failing the call; any other error is returned.
func (e *Extractor) Many(env *rma.Envelope, names []string) (*Result, error) {
	return e.many(env, names, false)
}

// Single is Many for entities that repeat across rows: only the first
// value of each attribute is kept.
func (e *Extractor) Single(env *rma.Envelope, names []string) (*Result, error) {
	return e.many(env, names, true)
}

func (e *Extractor) many(env *rma.Envelope, names []string, first bool) (*Result, error) {
	if len(names) == 0 {
		names = e.schema.Names()
	}

	res := &Result{
		Entity: e.schema.Entity,
		Values: make(map[string][]Value, len(names)),
	}
	for _, name := range names {
		if res.Has(name) {
			continue
		}
		values, err := e.Each(env, name)
		if errors.Is(err, rma.ErrUnknownAttribute) {
			e.logger.Warnw("skipping unknown attribute",
				logging.FieldEntity, e.schema.Entity,
				logging.FieldAttribute, name,
			)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err != nil {
			return nil, err
		}
		if first {
			values = values[:1]
		}
		res.Names = append(res.Names, name)
		res.Values[name] = values
	}
	return res, nil
}
