package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
	"imgbench/internal/core/service"

	"github.com/rs/zerolog/log"
)

// Downloader fetches a file the bot API exposes by URL.
type Downloader func(ctx context.Context, url string) ([]byte, error)

type Resize struct {
	processor  port.Processor
	textSender port.TextSender
	fileSender port.FileSender
	auth       service.Authorizer
	limiter    service.Limiter
	download   Downloader
	profile    domain.Profile
	command    string
}

func NewResize(processor port.Processor, textSender port.TextSender, fileSender port.FileSender,
	auth service.Authorizer, limiter service.Limiter, download Downloader, profile domain.Profile,
	command string) *Resize {
	return &Resize{
		processor:  processor,
		textSender: textSender,
		fileSender: fileSender,
		auth:       auth,
		limiter:    limiter,
		download:   download,
		profile:    profile,
		command:    command,
	}
}

func (r *Resize) GetCommand() string {
	return r.command
}

const resizeUsage = "usage: %s <backend> [WxH] [fit|fill|stretch] [center|top|bottom|left|right] " +
	"[nearest|bilinear|bicubic|lanczos|hanning] [jpg|png|webp|...] on a photo or as a reply to one"

func (r *Resize) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", r.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	if !r.auth.IsAuthorized(ctx, message.ChatID) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := r.parseRequest(ParseCommandArgs(message.Text))
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, err, message)
	}

	if message.ImageURL == "" {
		_ = r.textSender.NotifyAndReturnError(ctx, errors.New("missing image"), message)
		return nil
	}

	if !r.limiter.Allow(ctx, message.ChatID) {
		return nil
	}

	go r.textSender.SendChatAction(ctx, message.ChatID, domain.UploadDocument)

	req.Input, err = r.download(ctx, message.ImageURL)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to download image: %w", err), message)
	}
	req.InputName = message.ImageName

	result, err := r.processor.Process(ctx, req)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to resize image: %w", err), message)
	}

	l.Debug().Str("plan", result.Plan.String()).Msg("sending resized image")

	err = r.fileSender.SendDocumentReply(ctx, message, result.Filename, result.Output)
	if err != nil {
		return r.textSender.NotifyAndReturnError(ctx, fmt.Errorf("failed to send resized image: %w", err), message)
	}

	return nil
}

// parseRequest reads the backend key followed by options in any order. Option
// values never overlap between kinds, so each word is matched by its value.
func (r *Resize) parseRequest(args []string) (*port.ProcessRequest, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf(resizeUsage, r.command)
	}

	req := &port.ProcessRequest{
		Backend:    strings.ToLower(args[0]),
		Target:     r.profile.Target,
		Mode:       domain.Fit,
		Anchor:     domain.Center,
		Background: domain.DefaultBackground,
		Kernel:     r.profile.Kernel,
		Format:     r.profile.Format,
		Quality:    r.profile.Quality,
	}

	for _, arg := range args[1:] {
		if arg[0] >= '0' && arg[0] <= '9' {
			d, err := domain.ParseDimensions(arg)
			if err != nil {
				return nil, err
			}
			req.Target = d
			continue
		}
		if m, err := domain.ParseResizeMode(arg); err == nil {
			req.Mode = m
			continue
		}
		if a, err := domain.ParseAnchor(arg); err == nil {
			req.Anchor = a
			continue
		}
		if k, err := domain.ParseKernel(arg); err == nil {
			req.Kernel = k
			continue
		}
		if f, err := domain.ParseFormat(arg); err == nil {
			req.Format = f
			continue
		}
		return nil, fmt.Errorf("%w: %q. "+resizeUsage, domain.ErrInvalidOption, arg, r.command)
	}

	return req, nil
}
