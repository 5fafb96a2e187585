package backend

import (
	"fmt"
	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

type Registry struct {
	backends map[string]port.Backend
}

func (r *Registry) Register(backend port.Backend) {
	if r.backends == nil {
		r.backends = make(map[string]port.Backend)
	}

	log.Info().Str("backend", backend.Name()).Msg("adding backend to registry")
	r.backends[backend.Name()] = backend
}

func (r *Registry) Get(name string) (port.Backend, error) {
	log.Debug().Str("backend", name).Msg("fetching backend from registry")

	backend, ok := r.backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s. Available tools: %s", domain.ErrUnknownBackend, name,
			strings.Join(r.ListBackends(), ", "))
	}

	return backend, nil
}

func (r *Registry) ListBackends() []string {
	keys := make([]string, 0, len(r.backends))
	for k := range r.backends {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// NewDefaultRegistry registers every engine under its public dispatch key.
func NewDefaultRegistry() *Registry {
	r := &Registry{}

	r.Register(NewImageMagick())
	r.Register(NewGraphicsMagick())
	r.Register(NewFFmpeg())
	r.Register(NewVips())
	r.Register(NewNConvert())
	r.Register(NewGIMP())

	r.Register(NewNative("pillow", imagingScaler{}))
	r.Register(NewNative("opencv", giftScaler{}))
	r.Register(NewNative("imageio", xdrawScaler{}))
	r.Register(NewNative("skimage", bildScaler{}))
	r.Register(NewNative("pyvips", nfntScaler{}))

	return r
}
