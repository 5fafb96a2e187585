package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/rs/zerolog/log"
)

const maxStderr = 2048

// tool is an external binary. The first candidate found on PATH wins; each
// candidate may carry a subcommand prefix such as {"gm", "convert"}.
type tool struct {
	candidates [][]string
	lookPath   func(string) (string, error)
}

func newTool(candidates ...[]string) tool {
	return tool{candidates: candidates, lookPath: exec.LookPath}
}

func (t tool) resolve() ([]string, error) {
	for _, c := range t.candidates {
		if _, err := t.lookPath(c[0]); err != nil {
			log.Debug().Strs("command", c).Msg("binary not found")
			continue
		}
		return slices.Clone(c), nil
	}

	return nil, fmt.Errorf("%w: none of %v found on PATH", domain.ErrBackendUnavailable, t.names())
}

func (t tool) names() []string {
	names := make([]string, 0, len(t.candidates))
	for _, c := range t.candidates {
		names = append(names, c[0])
	}
	return names
}

// run executes one tool invocation. The process is killed when ctx is done.
func run(ctx context.Context, backend string, argv []string) error {
	l := log.With().Str("backend", backend).Str("binary", argv[0]).Logger()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr

	l.Debug().Strs("args", argv[1:]).Msg("running tool")

	err := cmd.Run()
	if err == nil {
		l.Debug().Msg("tool finished")
		return nil
	}

	msg := strings.TrimSpace(stderr.String())
	if len(msg) > maxStderr {
		msg = msg[:maxStderr]
	}
	l.Error().Err(err).Str("stderr", msg).Msg("tool failed")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s interrupted: %w", domain.ErrBackendUnavailable, backend, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s exited with code %d", domain.ErrBackendUnavailable, backend, exitErr.ExitCode())
	}

	return fmt.Errorf("%w: %s could not start: %w", domain.ErrBackendUnavailable, backend, err)
}

// stage writes the job input into its workspace and returns input and output paths.
func stage(job *port.Job) (string, string, error) {
	if job.Scratch == nil {
		return "", "", fmt.Errorf("%w: no scratch workspace", domain.ErrBackendUnavailable)
	}

	ext := job.InputExt
	if ext == "" {
		ext = ".img"
	}

	in, err := job.Scratch.Write("input"+ext, job.Input)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	return in, job.Scratch.Path("output" + job.Format.Ext()), nil
}

// collect reads the tool's output file. A missing or empty file is an encode failure.
func collect(job *port.Job, out string) ([]byte, error) {
	data, err := job.Scratch.Read(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty output", domain.ErrEncode)
	}

	return data, nil
}

func formatSet(formats ...domain.Format) map[domain.Format]bool {
	m := make(map[domain.Format]bool, len(formats))
	for _, f := range formats {
		m[f] = true
	}
	return m
}

// translucentPad reports whether the plan pads with a background that keeps some
// transparency in the output.
func translucentPad(job *port.Job) bool {
	return job.Plan.Pads() && job.Plan.Background.Effective(job.Format).Alpha < 0xff
}
