package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// multipartMemory is the part of a multipart body kept in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

type HTTPOptions struct {
	MaxUploadBytes int64
	AllowedExts    []string
	Profile        domain.Profile
}

type HTTP struct {
	processor port.Processor
	scratch   port.ScratchPool
	opts      HTTPOptions
}

func NewHTTP(processor port.Processor, scratch port.ScratchPool, opts HTTPOptions) *HTTP {
	exts := make([]string, 0, len(opts.AllowedExts))
	for _, e := range opts.AllowedExts {
		exts = append(exts, strings.TrimPrefix(strings.ToLower(e), "."))
	}
	opts.AllowedExts = exts

	return &HTTP{processor: processor, scratch: scratch, opts: opts}
}

func (h *HTTP) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Get("/backends", h.ListBackends)
	r.Post("/process/{backend}", h.Process)
	r.Post("/cleanup", h.Cleanup)

	return r
}

func (h *HTTP) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HTTP) ListBackends(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"backends": h.processor.Backends()})
}

func (h *HTTP) Cleanup(w http.ResponseWriter, _ *http.Request) {
	if err := h.scratch.Purge(); err != nil {
		log.Error().Err(err).Msg("failed to purge scratch directory")
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleanup successful"})
}

func (h *HTTP) Process(w http.ResponseWriter, r *http.Request) {
	backend := strings.ToLower(chi.URLParam(r, "backend"))
	if !slices.Contains(h.processor.Backends(), backend) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid tool. Available tools: %s",
			strings.Join(h.processor.Backends(), ", ")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Maximum size is %s", humanize.IBytes(uint64(h.opts.MaxUploadBytes))))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	input, name, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.parseForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Backend = backend
	req.Input = input
	req.InputName = name

	result, err := h.processor.Process(r.Context(), req)
	if err != nil {
		if domain.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Error().Err(err).
			Str("backend", backend).
			Str("request", middleware.GetReqID(r.Context())).
			Msg("processing failed")

		msg := "Processing failed"
		if kind := domain.Kind(err); kind != nil {
			msg = fmt.Sprintf("Processing failed: %s", kind)
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Output)))
	w.Header().Set("X-Resize-Plan", result.Plan.String())
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Output); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func (h *HTTP) readUpload(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", fmt.Errorf("%w: no image file provided", domain.ErrUploadRejected)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, "", fmt.Errorf("%w: no selected file", domain.ErrUploadRejected)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !slices.Contains(h.opts.AllowedExts, ext) {
		return nil, "", fmt.Errorf("%w: file type not allowed, expected one of %s", domain.ErrUploadRejected,
			strings.Join(h.opts.AllowedExts, ", "))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrUploadRejected, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", domain.ErrUploadRejected)
	}

	return data, header.Filename, nil
}

// parseForm reads the resize options, falling back to the active profile.
func (h *HTTP) parseForm(r *http.Request) (*port.ProcessRequest, error) {
	p := h.opts.Profile
	req := &port.ProcessRequest{
		Target:  p.Target,
		Format:  p.Format,
		Kernel:  p.Kernel,
		Quality: p.Quality,
	}

	var err error
	if req.Target.Width, err = formInt(r, "width", p.Target.Width, domain.ErrInvalidDimensions); err != nil {
		return nil, err
	}
	if req.Target.Height, err = formInt(r, "height", p.Target.Height, domain.ErrInvalidDimensions); err != nil {
		return nil, err
	}
	if !req.Target.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDimensions, req.Target)
	}

	if v := r.FormValue("format"); v != "" {
		if req.Format, err = domain.ParseFormat(v); err != nil {
			return nil, fmt.Errorf("%w: format %q", domain.ErrInvalidOption, v)
		}
	}

	if req.Mode, err = domain.ParseResizeMode(formValue(r, "resize_mode", string(domain.Fit))); err != nil {
		return nil, err
	}

	keepRatio, err := strconv.ParseBool(formValue(r, "keep_ratio", "true"))
	if err != nil {
		return nil, fmt.Errorf("%w: keep_ratio %q", domain.ErrInvalidOption, r.FormValue("keep_ratio"))
	}
	if !keepRatio {
		req.Mode = domain.Stretch
	}

	if v := r.FormValue("resampling"); v != "" {
		if req.Kernel, err = domain.ParseKernel(v); err != nil {
			return nil, err
		}
	}

	if req.Anchor, err = domain.ParseAnchor(formValue(r, "crop_position", string(domain.Center))); err != nil {
		return nil, err
	}

	if req.Background, err = domain.ParseBackground(r.FormValue("bg_color"), r.FormValue("bg_alpha")); err != nil {
		return nil, err
	}

	if req.Quality, err = formInt(r, "quality", p.Quality, domain.ErrInvalidOption); err != nil {
		return nil, err
	}
	if req.Quality < 1 || req.Quality > 100 {
		return nil, fmt.Errorf("%w: quality %d, expected 1-100", domain.ErrInvalidOption, req.Quality)
	}

	return req, nil
}

func formValue(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return def
}

func formInt(r *http.Request, key string, def int, kind error) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", kind, key, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// accessLog writes one zerolog event per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.Info().
				Str("request", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("size", humanize.Bytes(uint64(ww.BytesWritten()))).
				Dur("elapsed", time.Since(start)).
				Msg("handled request")
		}()

		next.ServeHTTP(ww, r)
	})
}
