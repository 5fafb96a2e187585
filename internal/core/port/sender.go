package port

import (
	"context"
	"imgbench/internal/core/domain"
)

type TextSender interface {
	// SendMessageReply replies to a message with text and returns the sent message ID.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendChatAction repeats a chat action (typing, uploading) until ctx is done.
	SendChatAction(ctx context.Context, chatID int64, action domain.Action)
	// NotifyAndReturnError replies with the error text and returns err.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}

type FileSender interface {
	// SendDocumentReply uploads a file as a reply to the message, without recompression.
	SendDocumentReply(ctx context.Context, message *domain.Message, filename string, file []byte) error
}
