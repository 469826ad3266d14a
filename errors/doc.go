/*
Package errors provides semantic error kinds for the commissaire storage core.

Each kind has a sentinel that can be checked with the standard errors.Is()
function or with the provided helper functions:

	var (
	    ErrNotFound      = errors.New("record not found")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrMalformed     = errors.New("malformed record")
	    ErrConfiguration = errors.New("configuration error")
	    ErrUnknownModel  = errors.New("unknown model type")
	    ErrNoHandler     = errors.New("no store handler")
	)

ErrNotFound is raised by store handlers when a backend has no such record and
callers may branch on it. ErrUnknownModel and ErrNoHandler are lookup failures
(see IsLookupFailure) and are never defaulted away. ErrInvalidInput,
ErrMalformed and ErrConfiguration are always fatal to the operation.

Usage:

	result, err := svc.Get(ctx, "Host", map[string]any{"address": "10.0.0.1"})
	if err != nil {
	    if errors.IsNotFound(err) {
	        // the backend has no such host
	    }
	    return err
	}

	err := errors.NewNotFoundError("Host", "10.0.0.1")
	err := errors.NewModelValidationError("Host", "address", "must not be empty")
	err := errors.NewConfigurationError("primary", "duplicate store handler name")
*/
package errors
