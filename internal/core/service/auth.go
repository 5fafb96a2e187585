package service

import (
	"context"
	"errors"
	"fmt"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, chatID int64) bool
}

// ChatAllowlist admits bot requests from configured chats only.
type ChatAllowlist struct {
	chats  map[int64]struct{}
	admin  string
	sender port.TextSender
}

func NewChatAllowlist(sender port.TextSender) (*ChatAllowlist, error) {
	var ids []int64
	if err := viper.UnmarshalKey("telegram.allowed_chat_ids", &ids); err != nil {
		return nil, errors.New("failed to load allowed chat IDs")
	}

	chats := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		chats[id] = struct{}{}
	}

	log.Debug().Int("chats", len(chats)).Msg("loaded chat allowlist")

	return &ChatAllowlist{
		chats:  chats,
		admin:  viper.GetString("telegram.admin_username"),
		sender: sender,
	}, nil
}

const forbidden = "This chat may not run resize jobs. Ask @%s to allow chat ID %d."

func (a *ChatAllowlist) IsAuthorized(ctx context.Context, chatID int64) bool {
	if _, ok := a.chats[chatID]; ok {
		return true
	}

	log.Info().Int64("chatID", chatID).Msg("rejected chat not on allowlist")

	_, err := a.sender.SendMessageReply(ctx, &domain.Message{ChatID: chatID}, fmt.Sprintf(forbidden, a.admin, chatID))
	if err != nil {
		log.Err(err).Msg("failed to send unauthorized warning")
	}

	return false
}
