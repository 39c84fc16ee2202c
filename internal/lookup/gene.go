package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/extract"
	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/rma"
)

// Plane is a plane of section for ISH experiments
type Plane string

const (
	PlaneSagittal Plane = "sagittal"
	PlaneCoronal  Plane = "coronal"
)

// ParsePlane accepts "sagittal" or "coronal", case-insensitively.
func ParsePlane(s string) (Plane, error) {
	switch p := Plane(strings.ToLower(strings.TrimSpace(s))); p {
	case PlaneSagittal, PlaneCoronal:
		return p, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(rma.ErrInvalidInput, "unknown plane of section %q", s),
		"use sagittal or coronal")
}

// Genes looks up genes through the section data sets that reference them.
// Genes are unique per identifier, so attributes are single-valued.
type Genes struct {
	exec        Executor
	productID   int64
	extractor   *extract.Extractor
	experiments *extract.Extractor
	logger      *zap.SugaredLogger
}

// NewGenes creates a gene lookup restricted to productID data sets
// (1 = mouse brain ISH).
func NewGenes(exec Executor, productID int64, logger *zap.SugaredLogger) *Genes {
	logger = logging.Or(logger, "lookup.gene")
	return &Genes{
		exec:        exec,
		productID:   productID,
		extractor:   extract.NewExtractor(extract.GeneSchema, logger),
		experiments: extract.NewExtractor(extract.ExperimentSchema, logger),
		logger:      logger,
	}
}

func (g *Genes) criteria(fragment string) []string {
	return []string{
		fmt.Sprintf("products[id$eq%d]", g.productID),
		"genes" + fragment,
	}
}

func (g *Genes) query(fragment string) rma.Query {
	return rma.Query{
		Model:    "SectionDataSet",
		Format:   rma.FormatXML,
		Includes: []string{"genes", "plane_of_section"},
		Criteria: g.criteria(fragment),
	}
}

// CheckValidity reports whether any data set of the product references the
// gene.
func (g *Genes) CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error) {
	return validate(ctx, g.exec, g.logger, "gene", id, g.query)
}

// Info returns the requested attributes, or all of them when none are
// named, one value each. Unknown names are skipped and listed in
// Result.Skipped.
func (g *Genes) Info(ctx context.Context, id rma.Identifier, attributes ...string) (*extract.Result, error) {
	env, err := resolve(ctx, g, "gene", id)
	if err != nil {
		return nil, err
	}
	return g.extractor.Single(env, attributes)
}

// Attribute returns a single gene attribute.
func (g *Genes) Attribute(ctx context.Context, id rma.Identifier, name string) (extract.Value, error) {
	env, err := resolve(ctx, g, "gene", id)
	if err != nil {
		return extract.Value{}, err
	}
	return g.extractor.One(env, name)
}

// ExperimentIDs lists the ids of the gene's ISH data sets cut in plane, in
// response order. A gene without such experiments yields an empty slice.
func (g *Genes) ExperimentIDs(ctx context.Context, id rma.Identifier, plane Plane) ([]int64, error) {
	plane, err := ParsePlane(string(plane))
	if err != nil {
		return nil, err
	}

	ok, env, err := validate(ctx, g.exec, g.logger, "gene", id, func(fragment string) rma.Query {
		return rma.Query{
			Model:    "SectionDataSet",
			Format:   rma.FormatJSON,
			Includes: []string{"plane_of_section"},
			Criteria: g.criteria(fragment),
			Suffix:   "num_rows=all",
		}
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rma.NotFound("gene", id)
	}

	ids := []int64{}
	for _, row := range env.Rows {
		single := &rma.Envelope{Success: true, TotalRows: 1, Rows: []*rma.Node{row}}
		p, err := g.experiments.One(single, "plane")
		if errors.Is(err, rma.ErrUnknownAttribute) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if name, _ := p.Text(); Plane(name) != plane {
			continue
		}
		v, err := g.experiments.One(single, "id")
		if err != nil {
			return nil, err
		}
		if n, ok := v.Int(); ok {
			ids = append(ids, n)
		}
	}

	if len(ids) == 0 {
		g.logger.Infow("no experiments found",
			logging.FieldIdentifier, id.String(),
			"plane", string(plane),
		)
	}
	return ids, nil
}
