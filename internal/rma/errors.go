package rma

import "github.com/cockroachdb/errors"

// Sentinel errors. Concrete failures wrap or mark one of these, so callers
// classify them with errors.Is.
var (
	// ErrInvalidInput means no identifying parameter was supplied.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("transport error")

	// ErrQueryRejected means the service reported success=false: the query is malformed.
	ErrQueryRejected = errors.New("query rejected")

	// ErrDecode means the response body could not be decoded.
	ErrDecode = errors.New("decode response")

	// ErrEntityNotFound means the identifier resolved to zero rows.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrUnknownAttribute means the attribute is not part of the entity schema.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrMalformedValue means a field did not parse as its declared kind.
	ErrMalformedValue = errors.New("malformed value")
)

// NotFound returns an ErrEntityNotFound naming the identifier.
func NotFound(entity string, id Identifier) error {
	return errors.WithHintf(
		errors.Wrapf(ErrEntityNotFound, "%s %s", entity, id),
		"identifiers are case sensitive; try another %s", entity,
	)
}
