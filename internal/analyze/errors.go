package analyze

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when no file was supplied. The pipeline is not invoked.
var ErrNoInput = errors.New("no file supplied")

// ExternalKind classifies why the external analyzer produced no result.
type ExternalKind string

const (
	KindUnavailable ExternalKind = "unavailable"
	KindExit        ExternalKind = "exit"
	KindTimeout     ExternalKind = "timeout"
	KindMalformed   ExternalKind = "malformed"
	KindRejected    ExternalKind = "rejected" // circuit breaker open
)

// ExternalError is a failure of the external analyzer. The orchestrator
// absorbs it and falls back to the heuristic detector.
type ExternalError struct {
	Kind ExternalKind
	Err  error
}

func (e *ExternalError) Error() string {
	if e.Err == nil {
		return "external analyzer " + string(e.Kind)
	}
	return fmt.Sprintf("external analyzer %s: %v", e.Kind, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// PipelineError reports that neither analysis path produced a result.
type PipelineError struct {
	External  error
	Heuristic error
}

func (e *PipelineError) Error() string {
	if e.External == nil {
		return fmt.Sprintf("analysis failed: heuristic: %v", e.Heuristic)
	}
	return fmt.Sprintf("analysis failed: heuristic: %v (external: %v)", e.Heuristic, e.External)
}

func (e *PipelineError) Unwrap() []error {
	var errs []error
	if e.External != nil {
		errs = append(errs, e.External)
	}
	if e.Heuristic != nil {
		errs = append(errs, e.Heuristic)
	}
	return errs
}
