package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

type Backends struct {
	processor port.Processor
	sender    port.TextSender
	command   string
}

func NewBackends(processor port.Processor, sender port.TextSender, command string) *Backends {
	return &Backends{processor: processor, sender: sender, command: command}
}

func (b *Backends) GetCommand() string {
	return b.command
}

func (b *Backends) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	_, err := b.sender.SendMessageReply(ctx, message,
		fmt.Sprintf("Available tools: %s", strings.Join(b.processor.Backends(), ", ")))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
