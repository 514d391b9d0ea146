package match

import "fmt"

// InfrastructureError covers engine-level failures outside any single
// participant: daemon unreachable, network create/remove failures.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure: %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// BuildError is a failed image build for one participant. It aborts the session.
type BuildError struct {
	Role string
	Name string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %q: %v", e.Role, e.Name, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// LaunchError is a failed container start for one participant. It aborts the
// session.
type LaunchError struct {
	Role string
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s %q: %v", e.Role, e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// SignalError means the start signal could not be delivered to the server.
// The match is considered never started.
type SignalError struct {
	Err error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal game start: %v", e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }

// TeardownError records one per-resource cleanup failure. Teardown never stops
// on these; they accumulate into the TeardownReport.
type TeardownError struct {
	Resource string
	Err      error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown %s: %v", e.Resource, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }
