package extract

import (
	"github.com/cockroachdb/errors"

	"github.com/ppiankov/brainmap/internal/rma"
)

// Attribute is one enumerated field of an entity, with its path relative
// to a response row and its declared kind.
type Attribute struct {
	Name string
	Path string
	Kind Kind
}

// Schema is the fixed attribute set of one entity family
type Schema struct {
	Entity string
	attrs  []Attribute
	byName map[string]Attribute
}

// NewSchema indexes attrs. Order is kept as the master enumeration order.
func NewSchema(entity string, attrs ...Attribute) *Schema {
	s := &Schema{
		Entity: entity,
		attrs:  attrs,
		byName: make(map[string]Attribute, len(attrs)),
	}
	for _, a := range attrs {
		s.byName[a.Name] = a
	}
	return s
}

// Attribute resolves name, failing with ErrUnknownAttribute.
func (s *Schema) Attribute(name string) (Attribute, error) {
	a, ok := s.byName[name]
	if !ok {
		return Attribute{}, errors.Wrapf(rma.ErrUnknownAttribute, "there is no %s attribute called %q", s.Entity, name)
	}
	return a, nil
}

// Names returns attribute names in master order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		names[i] = a.Name
	}
	return names
}

// Attributes returns a copy of the enumeration.
func (s *Schema) Attributes() []Attribute {
	return append([]Attribute(nil), s.attrs...)
}

func field(prefix, name string, k Kind) Attribute {
	return Attribute{Name: name, Path: prefix + name, Kind: k}
}

// StructureSchema covers rows of Structure/query.xml.
// See http://api.brain-map.org/doc/Structure.html
var StructureSchema = NewSchema("structure",
	field("", "acronym", KindText),
	field("", "atlas-id", KindInt),
	field("", "color-hex-triplet", KindText),
	field("", "depth", KindInt),
	field("", "graph-id", KindInt),
	field("", "graph-order", KindInt),
	field("", "hemisphere-id", KindInt),
	field("", "id", KindInt),
	field("", "name", KindText),
	field("", "neuro-name-structure-id", KindInt),
	field("", "neuro-name-structure-id-path", KindText),
	field("", "ontology-id", KindInt),
	field("", "parent-structure-id", KindInt),
	field("", "safe-name", KindText),
	field("", "sphinx-id", KindInt),
	field("", "structure-id-path", KindText),
	field("", "weight", KindInt),
)

// GeneSchema covers genes nested in rows of SectionDataSet/query.xml.
var GeneSchema = NewSchema("gene",
	field("genes/gene/", "acronym", KindText),
	field("genes/gene/", "alias-tags", KindText),
	field("genes/gene/", "chromosome-id", KindInt),
	field("genes/gene/", "ensembl-id", KindInt),
	field("genes/gene/", "entrez-id", KindInt),
	field("genes/gene/", "genomic-reference-update-id", KindInt),
	field("genes/gene/", "homologene-id", KindInt),
	field("genes/gene/", "id", KindInt),
	field("genes/gene/", "legacy-ensembl-gene-id", KindText),
	field("genes/gene/", "name", KindText),
	field("genes/gene/", "organism-id", KindInt),
	field("genes/gene/", "original-name", KindText),
	field("genes/gene/", "original-symbol", KindText),
	field("genes/gene/", "reference-genome-id", KindInt),
	field("genes/gene/", "sphinx-id", KindInt),
	field("genes/gene/", "version-status", KindText),
)

// ExperimentSchema covers rows of SectionDataSet/query.json.
var ExperimentSchema = NewSchema("experiment",
	field("", "id", KindInt),
	Attribute{Name: "plane", Path: "plane-of-section/name", Kind: KindText},
)
