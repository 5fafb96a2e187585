package port

import (
	"context"
	"imgbench/internal/core/domain"
)

// Job is one backend invocation. It lives for a single request.
type Job struct {
	Plan     domain.Plan
	Input    []byte
	InputExt string
	Format   domain.Format
	Quality  int
	Scratch  Scratch
}

type Backend interface {
	// Name returns the dispatch key the backend is registered under.
	Name() string
	// Supports reports whether the backend can write the given output format.
	Supports(format domain.Format) bool
	// Execute realises the job's plan on its input and returns the encoded output image.
	Execute(ctx context.Context, job *Job) ([]byte, error)
}

type BackendRegistry interface {
	// Register adds a backend under its Name.
	Register(backend Backend)
	// Get retrieves a backend by dispatch key or returns an error wrapping domain.ErrUnknownBackend.
	Get(name string) (Backend, error)
	// ListBackends returns all registered dispatch keys in sorted order.
	ListBackends() []string
}
