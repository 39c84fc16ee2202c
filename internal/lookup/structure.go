package lookup

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/extract"
	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/rma"
)

// Structures looks up brain structures across the configured atlas
// ontologies. Acronyms are not unique across ontologies, so attribute
// lookups return one value per matching structure.
type Structures struct {
	exec       Executor
	ontologies []int64
	extractor  *extract.Extractor
	logger     *zap.SugaredLogger
}

// NewStructures creates a structure lookup. ontologies restricts matches
// (1 = adult mouse atlas, 12 = developing mouse atlas); empty means any.
func NewStructures(exec Executor, ontologies []int64, logger *zap.SugaredLogger) *Structures {
	logger = logging.Or(logger, "lookup.structure")
	return &Structures{
		exec:       exec,
		ontologies: ontologies,
		extractor:  extract.NewExtractor(extract.StructureSchema, logger),
		logger:     logger,
	}
}

func (s *Structures) query(fragment string) rma.Query {
	criteria := []string{fragment}
	if len(s.ontologies) > 0 {
		// cannot fail: the identifier is non-empty
		ontology, _ := rma.BuildCriteria(rma.ByID(s.ontologies...))
		criteria = append(criteria, "ontology"+ontology)
	}
	return rma.Query{
		Model:    "Structure",
		Format:   rma.FormatXML,
		Includes: []string{"structure_centers"},
		Criteria: criteria,
		Suffix:   "num_rows=all",
	}
}

// CheckValidity reports whether id matches at least one structure. The
// envelope is returned either way.
func (s *Structures) CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error) {
	return validate(ctx, s.exec, s.logger, "structure", id, s.query)
}

// Info returns the requested attributes, or all of them when none are
// named. Unknown names are skipped and listed in Result.Skipped.
func (s *Structures) Info(ctx context.Context, id rma.Identifier, attributes ...string) (*extract.Result, error) {
	env, err := resolve(ctx, s, "structure", id)
	if err != nil {
		return nil, err
	}
	return s.extractor.Many(env, attributes)
}

// Attribute returns one value per matching structure for a single
// attribute, failing with ErrUnknownAttribute for names outside the schema.
func (s *Structures) Attribute(ctx context.Context, id rma.Identifier, name string) ([]extract.Value, error) {
	env, err := resolve(ctx, s, "structure", id)
	if err != nil {
		return nil, err
	}
	return s.extractor.Each(env, name)
}

// Coordinates returns structure centers grouped by hemisphere reference
// space (extract.ReferenceSpaceRight, extract.ReferenceSpaceLeft).
func (s *Structures) Coordinates(ctx context.Context, id rma.Identifier) (extract.Coordinates, error) {
	env, err := resolve(ctx, s, "structure", id)
	if err != nil {
		return nil, err
	}
	coords, err := extract.Centers(env)
	if err != nil {
		return nil, errors.Wrapf(err, "structure %s", id)
	}
	if len(coords) == 0 {
		s.logger.Infow("no coordinates found", logging.FieldIdentifier, id.String())
	}
	return coords, nil
}
