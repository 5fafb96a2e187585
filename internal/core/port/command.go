package port

import (
	"context"
	"imgbench/internal/core/domain"
	"time"
)

type Command interface {
	// Respond handles a bot message within the given timeout and replies to its chat.
	Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error
	// GetCommand returns the slash command the handler answers to.
	GetCommand() string
}

type CommandRegistry interface {
	Register(handler Command)
	// Get retrieves a registered Command or returns an error if not found.
	Get(command string) (Command, error)
	ListCommands() []string
}
