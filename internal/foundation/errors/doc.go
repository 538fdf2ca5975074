// Package errors provides the classified error primitives shared by every doctool command.
//
// A ClassifiedError carries a category, a severity and structured context. Packages wrap
// their own errors with fmt.Errorf and sentinels; the pipeline classifies them at stage
// boundaries, and the CLI adapter turns the category into an exit code.
//
// Example usage:
//
//	err := errors.ProcessError("clang exited with status 1").
//		WithContext("header", header).
//		WithCause(runErr).
//		Build()
package errors
