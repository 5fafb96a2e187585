package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imgbench/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// Pool hands out request-scoped workspaces below a shared root directory.
type Pool struct {
	root string

	mu     sync.Mutex
	active map[string]struct{}
}

func NewPool(root string) (*Pool, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("error creating scratch root %w", err)
	}

	return &Pool{root: root, active: make(map[string]struct{})}, nil
}

func (p *Pool) Root() string {
	return p.root
}

// Acquire creates a new workspace named by a random UUID.
func (p *Pool) Acquire() (port.Scratch, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	// registered before the directory exists so Purge and Sweep never see it inactive
	p.mu.Lock()
	p.active[id.String()] = struct{}{}
	p.mu.Unlock()

	dir := filepath.Join(p.root, id.String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		p.release(id.String())
		err = fmt.Errorf("error creating workspace %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	log.Debug().Str("workspace", id.String()).Msg("acquired workspace")

	return &Workspace{pool: p, id: id.String(), dir: dir}, nil
}

func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Purge removes every entry under the root that is not an active workspace.
func (p *Pool) Purge() error {
	return p.remove(func(os.DirEntry) bool { return true })
}

// Sweep removes inactive entries last modified before maxAge ago.
func (p *Pool) Sweep(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	return p.remove(func(e os.DirEntry) bool {
		info, err := e.Info()
		if err != nil {
			return false
		}
		return info.ModTime().Before(cutoff)
	})
}

func (p *Pool) remove(match func(os.DirEntry) bool) error {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return fmt.Errorf("error listing scratch root %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	removed := 0
	for _, e := range entries {
		if _, ok := p.active[e.Name()]; ok || !match(e) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(p.root, e.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}

	log.Debug().Int("removed", removed).Str("root", p.root).Msg("removed scratch entries")

	return errs
}

func (p *Pool) release(id string) {
	p.mu.Lock()
	delete(p.active, id)
	p.mu.Unlock()
}

// Workspace is a directory owned by exactly one request.
type Workspace struct {
	pool *Pool
	id   string
	dir  string

	once sync.Once
	err  error
}

func (w *Workspace) ID() string {
	return w.id
}

func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Write saves bytes under name inside the workspace and returns the path.
func (w *Workspace) Write(name string, data []byte) (string, error) {
	path := w.Path(name)

	log.Debug().Int("bytes", len(data)).Str("path", path).Msg("creating scratch file")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		err = fmt.Errorf("error creating scratch file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	_, werr := f.Write(data)
	if err := multierr.Combine(werr, f.Close()); err != nil {
		err = fmt.Errorf("error writing scratch file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	return path, nil
}

func (w *Workspace) Read(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("error reading scratch file %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return buf, nil
}

// Close removes the workspace directory. It is safe to call more than once.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
		w.pool.release(w.id)
		if w.err != nil {
			log.Warn().Str("path", w.dir).Err(w.err).Msg("could not clean up workspace")
			return
		}
		log.Debug().Str("path", w.dir).Msg("cleaned up workspace")
	})

	return w.err
}
