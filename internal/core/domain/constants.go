package domain

import "errors"

var (
	ErrInvalidDimensions  = errors.New("invalid dimensions")
	ErrInvalidOption      = errors.New("invalid option")
	ErrDecode             = errors.New("could not decode image")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrEncode             = errors.New("could not encode image")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrUnknownBackend     = errors.New("unknown backend")
	ErrUploadRejected     = errors.New("upload rejected")
	ErrImageTooLarge      = errors.New("image too large")
)

// IsClientError reports whether err was caused by the request itself and was
// detected before any backend ran.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDimensions) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrUnknownBackend) ||
		errors.Is(err, ErrUploadRejected) ||
		errors.Is(err, ErrImageTooLarge)
}

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrInvalidDimensions, ErrInvalidOption, ErrUnknownBackend, ErrUploadRejected, ErrImageTooLarge,
		ErrDecode, ErrBackendUnavailable, ErrEncode, ErrUnsupportedFormat,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
