// Package errs holds the typed errors shared by the game core.
//
// Every error type wraps one sentinel (ErrValueIsInvalid, ErrObjectNotFound, ...)
// so callers branch with errors.Is while the message keeps the offending
// parameter and value. Validation failures in constructors are built from these
// types and joined with errors.Join.
package errs
