package worker

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/rma"
)

// Validator checks whether an identifier resolves
type Validator interface {
	CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error)
}

// ValidateJob checks a single identifier
type ValidateJob struct {
	Identifier rma.Identifier
	Validator  Validator
}

// Execute runs the check
func (j *ValidateJob) Execute(ctx context.Context) Result {
	ok, env, err := j.Validator.CheckValidity(ctx, j.Identifier)
	res := &ValidationResult{Identifier: j.Identifier, Valid: ok, Error: err}
	if env != nil {
		res.Rows = env.TotalRows
	}
	return res
}

// ValidationResult is the outcome of one ValidateJob
type ValidationResult struct {
	Identifier rma.Identifier
	Valid      bool
	Rows       int
	Error      error
}

// GetError returns the error from the check
func (r *ValidationResult) GetError() error {
	return r.Error
}

// BatchProcessor validates many identifiers concurrently
type BatchProcessor struct {
	validator   Validator
	concurrency int
	logger      *zap.SugaredLogger
}

// NewBatchProcessor creates a batch processor. Request pacing is the
// validator's concern; concurrency only bounds in-flight checks.
func NewBatchProcessor(validator Validator, concurrency int, logger *zap.SugaredLogger) *BatchProcessor {
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
		logger:      logging.Or(logger, "batch"),
	}
}

// Process validates ids and returns one result per id, in input order.
func (b *BatchProcessor) Process(ctx context.Context, ids []rma.Identifier) []*ValidationResult {
	if len(ids) == 0 {
		return []*ValidationResult{}
	}

	start := time.Now()
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range ids {
		if !pool.Submit(&ValidateJob{Identifier: id, Validator: b.validator}) {
			break
		}
	}
	results := pool.Wait()

	out := make([]*ValidationResult, len(ids))
	valid, failed := 0, 0
	for i, id := range ids {
		var r *ValidationResult
		if i < len(results) && results[i] != nil {
			r = results[i].(*ValidationResult)
		} else {
			cause := context.Cause(ctx)
			if cause == nil {
				cause = context.Canceled
			}
			r = &ValidationResult{Identifier: id, Error: errors.Wrap(cause, "not checked")}
		}
		switch {
		case r.Error != nil:
			failed++
		case r.Valid:
			valid++
		}
		out[i] = r
	}

	b.logger.Infow("batch complete",
		"total", len(ids),
		"valid", valid,
		"invalid", len(ids)-valid-failed,
		"failed", failed,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return out
}

// ProcessFile reads identifiers from a file and validates them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ValidationResult, error) {
	ids, err := ReadIdentifiersFromFile(filePath)
	if err != nil {
		return nil, err
	}
	return b.Process(ctx, ids), nil
}

// ReadIdentifiersFromFile reads one identifier per line. Integer lines are
// ids, anything else is an acronym. Blank lines and # comments are
// skipped and repeats are dropped.
func ReadIdentifiersFromFile(filePath string) ([]rma.Identifier, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open identifier file")
	}
	defer func() { _ = file.Close() }()

	var ids []rma.Identifier
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		if n, err := strconv.ParseInt(line, 10, 64); err == nil {
			ids = append(ids, rma.ByID(n))
		} else {
			ids = append(ids, rma.ByAcronym(line))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan identifier file")
	}
	return ids, nil
}
