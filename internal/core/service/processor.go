package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"imgbench/internal/adapters/codec"
	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"
)

type ImageProcessor struct {
	backends port.BackendRegistry
	scratch  port.ScratchPool
	slots    *semaphore.Weighted
	timeout  time.Duration
	// maxPixels caps the source, scaled and canvas rasters of one request.
	maxPixels int64
}

func NewImageProcessor(backends port.BackendRegistry, scratch port.ScratchPool) (*ImageProcessor, error) {
	maxConcurrent := viper.GetInt64("process.max_concurrent")
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("invalid process.max_concurrent: %d", maxConcurrent)
	}

	timeout := viper.GetDuration("process.timeout")
	if timeout <= 0 {
		return nil, errors.New("process.timeout must be positive")
	}

	maxPixels := viper.GetInt64("process.max_pixels")
	if maxPixels <= 0 {
		return nil, fmt.Errorf("invalid process.max_pixels: %d", maxPixels)
	}

	return &ImageProcessor{
		backends:  backends,
		scratch:   scratch,
		slots:     semaphore.NewWeighted(maxConcurrent),
		timeout:   timeout,
		maxPixels: maxPixels,
	}, nil
}

func (p *ImageProcessor) Backends() []string {
	return p.backends.ListBackends()
}

func (p *ImageProcessor) Process(ctx context.Context, req *port.ProcessRequest) (*port.ProcessResult, error) {
	backend, err := p.backends.Get(req.Backend)
	if err != nil {
		return nil, err
	}

	if !backend.Supports(req.Format) {
		return nil, fmt.Errorf("%w: %s cannot write %s", domain.ErrUnsupportedFormat, backend.Name(), req.Format)
	}

	source, decoder, err := codec.DecodeConfig(req.Input)
	if err != nil {
		return nil, err
	}

	plan, err := domain.ComputePlan(source, req.Target, req.Mode, req.Anchor, req.Background, req.Kernel)
	if err != nil {
		return nil, err
	}

	if err := p.checkPixels(plan); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request id: %w", err)
	}

	l := log.With().
		Str("request", id.String()).
		Str("backend", backend.Name()).
		Str("decoder", decoder).
		Logger()

	l.Debug().
		Str("input", humanize.Bytes(uint64(len(req.Input)))).
		Str("plan", plan.String()).
		Msg("planned resize")

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: waiting for a worker: %w", domain.ErrBackendUnavailable, err)
	}
	defer p.slots.Release(1)

	scratch, err := p.scratch.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() {
		// leftovers are removed by the janitor
		if err := scratch.Close(); err != nil {
			l.Warn().Err(err).Msg("failed to remove workspace")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	output, err := backend.Execute(ctx, &port.Job{
		Plan:     plan,
		Input:    req.Input,
		InputExt: strings.ToLower(filepath.Ext(req.InputName)),
		Format:   req.Format,
		Quality:  req.Quality,
		Scratch:  scratch,
	})
	if err != nil {
		l.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("backend failed")
		return nil, err
	}

	l.Info().
		Dur("elapsed", time.Since(start)).
		Str("output", humanize.Bytes(uint64(len(output)))).
		Msg("processed image")

	return &port.ProcessResult{
		Output:      output,
		Plan:        plan,
		ContentType: mimetype.Detect(output).String(),
		Filename:    fmt.Sprintf("%s_output%s", id, req.Format.Ext()),
	}, nil
}

func (p *ImageProcessor) checkPixels(plan domain.Plan) error {
	for _, r := range []struct {
		name string
		size domain.Dimensions
	}{
		{"source", plan.Source},
		{"scaled", plan.ScaledSize},
		{"canvas", plan.CanvasSize},
	} {
		if r.size.Pixels() > p.maxPixels {
			return fmt.Errorf("%w: %s size %s exceeds %s pixels",
				domain.ErrImageTooLarge, r.name, r.size, humanize.Comma(p.maxPixels))
		}
	}

	return nil
}
