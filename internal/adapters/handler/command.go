package handler

import (
	"context"
	"path"
	"strings"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/domain/command"
	"imgbench/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Command struct {
	commandRegistry port.CommandRegistry
	timeout         time.Duration
}

func NewCommand(commandRegistry port.CommandRegistry, timeout time.Duration) *Command {
	return &Command{commandRegistry: commandRegistry, timeout: timeout}
}

// fileLinker resolves a Telegram file ID to a download URL.
type fileLinker interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// Handle is registered as a bot.HandlerFunc for text and caption commands.
func (c *Command) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		log.Debug().Msg("update without message")
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	log.Debug().Str("message", text).Msg("received command")

	cmd := command.ParseCommand(text)
	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Err(err).Msg("no handler for command")
		return
	}

	message := &domain.Message{
		ID:               msg.ID,
		ChatID:           msg.Chat.ID,
		Text:             text,
		Username:         getUserNameFromMessage(msg.From),
		ReplyToMessageID: new(int),
	}

	if msg.ReplyToMessage != nil {
		*message.ReplyToMessageID = msg.ReplyToMessage.ID
	}

	if fileID, name := findImage(msg); fileID != "" {
		message.ImageURL, message.ImageName = resolveImage(ctx, b, fileID, name)
	}

	go func() {
		err := commandHandler.Respond(context.Background(), c.timeout, message)
		if err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

// findImage returns the file to resize: the message photo or image document,
// otherwise the one of the message it replies to.
func findImage(msg *models.Message) (string, string) {
	if id, name := imageOf(msg); id != "" {
		return id, name
	}

	if msg.ReplyToMessage != nil {
		return imageOf(msg.ReplyToMessage)
	}

	return "", ""
}

func imageOf(msg *models.Message) (string, string) {
	if len(msg.Photo) > 0 {
		return findLargestImage(msg.Photo), ""
	}

	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, msg.Document.FileName
	}

	return "", ""
}

func resolveImage(ctx context.Context, files fileLinker, fileID, name string) (string, string) {
	f, err := files.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		log.Error().Err(err).Msg("error getting file from telegram api")
		return "", ""
	}

	if name == "" {
		name = path.Base(f.FilePath)
	}

	return files.FileDownloadLink(f), name
}

// findLargestImage returns the highest resolution rendition.
func findLargestImage(photos []models.PhotoSize) string {
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}

	return best.FileID
}

func getUserNameFromMessage(user *models.User) string {
	if user == nil {
		return ""
	}

	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
