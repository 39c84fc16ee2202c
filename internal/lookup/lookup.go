// Package lookup answers structure and gene questions against the RMA
// service: does an identifier resolve, what are its attributes, where is it.
package lookup

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/rma"
)

// Executor runs a single RMA query
type Executor interface {
	Execute(ctx context.Context, q rma.Query) (*rma.Envelope, error)
}

// Validator is implemented by every entity family
type Validator interface {
	CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error)
}

// validate runs q built from id and reports whether any row came back.
// Only the highest-precedence identifying parameter is used; the rest are
// logged as discarded.
func validate(ctx context.Context, exec Executor, logger *zap.SugaredLogger, entity string, id rma.Identifier, build func(fragment string) rma.Query) (bool, *rma.Envelope, error) {
	fragment, err := rma.BuildCriteria(id)
	if err != nil {
		return false, nil, err
	}
	if discarded := id.Discarded(); len(discarded) > 0 {
		logger.Warnw("several identifiers given, using the first by precedence id > acronym > name",
			logging.FieldEntity, entity,
			logging.FieldIdentifier, id.String(),
			"discarded", discarded,
		)
	}

	env, err := exec.Execute(ctx, build(fragment))
	if err != nil {
		return false, nil, err
	}
	return env.TotalRows > 0, env, nil
}

// resolve is validate that turns an empty result into ErrEntityNotFound.
func resolve(ctx context.Context, v Validator, entity string, id rma.Identifier) (*rma.Envelope, error) {
	ok, env, err := v.CheckValidity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rma.NotFound(entity, id)
	}
	return env, nil
}
