package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so the record service can translate them into domain errors:
//   - ErrNotFound: no record with the requested identifier
//   - ErrMalformed: data cannot be encoded to or decoded from a record line
//
// Validation failures (missing fields) use pkg/domain-errors directly.
var (
	ErrNotFound  = errors.New("not found")
	ErrMalformed = errors.New("malformed")
)
