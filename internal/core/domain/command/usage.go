package command

import (
	"context"
	"fmt"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
	"imgbench/internal/core/service"
)

type Usage struct {
	limiter service.Limiter
	limit   int
	sender  port.TextSender
	command string
}

func NewUsage(limiter service.Limiter, limit int, ts port.TextSender, command string) *Usage {
	return &Usage{
		limiter: limiter,
		limit:   limit,
		sender:  ts,
		command: command,
	}
}

func (u *Usage) GetCommand() string {
	return u.command
}

const (
	usageMessage          = "Resize jobs today within ChatID %d: %d of %d."
	usageMessageUnlimited = "Resize jobs today within ChatID %d: %d."
)

func (u *Usage) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	text := fmt.Sprintf(usageMessage, message.ChatID, u.limiter.Used(message.ChatID), u.limit)
	if u.limit <= 0 {
		text = fmt.Sprintf(usageMessageUnlimited, message.ChatID, u.limiter.Used(message.ChatID))
	}

	if _, err := u.sender.SendMessageReply(ctx, message, text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
