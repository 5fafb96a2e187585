package port

import (
	"context"
	"imgbench/internal/core/domain"
)

// ProcessRequest carries validated client input for one resize.
type ProcessRequest struct {
	Backend    string
	Input      []byte
	InputName  string
	Target     domain.Dimensions
	Mode       domain.ResizeMode
	Anchor     domain.Anchor
	Background domain.Background
	Kernel     domain.Kernel
	Format     domain.Format
	Quality    int
}

type ProcessResult struct {
	Output      []byte
	Plan        domain.Plan
	ContentType string
	Filename    string
}

type Processor interface {
	// Process plans and executes a resize with the requested backend.
	Process(ctx context.Context, req *ProcessRequest) (*ProcessResult, error)
	// Backends lists the dispatch keys the processor accepts.
	Backends() []string
}
