package sender

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"imgbench/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockBot) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockBot) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func TestTelegram_SendMessageReply(t *testing.T) {
	longText := strings.Repeat("x", TelegramMessageLimit+10)

	tests := []struct {
		name      string
		text      string
		wantCalls int
		wantID    int
		setupMock func(mb *MockBot)
		wantErr   bool
	}{
		{
			name:      "single message",
			text:      "hello",
			wantCalls: 1,
			wantID:    123,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return params.Text == "hello" && params.ReplyParameters.MessageID == 42
				})).
					Return(&models.Message{ID: 123}, nil).
					Once()
			},
		},
		{
			name:      "message chunked in two",
			text:      longText,
			wantCalls: 2,
			wantID:    456,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return len(params.Text) <= TelegramMessageLimit
				})).
					Return(&models.Message{ID: 456}, nil).
					Twice()
			},
		},
		{
			name:      "send fails on first",
			text:      "fail",
			wantCalls: 1,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("fail")).Once()
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb := new(MockBot)
			sender := NewTelegram(mb)

			tc.setupMock(mb)
			id, err := sender.SendMessageReply(t.Context(), &domain.Message{ID: 42, ChatID: 1001}, tc.text)

			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantID, id)
			}
			mb.AssertNumberOfCalls(t, "SendMessage", tc.wantCalls)
			mb.AssertExpectations(t)
		})
	}
}

func TestTelegram_SendMessageWithoutReply(t *testing.T) {
	mb := new(MockBot)
	sender := NewTelegram(mb)

	mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
		return params.ReplyParameters == nil && params.ChatID == int64(7)
	})).Return(&models.Message{ID: 1}, nil).Once()

	_, err := sender.SendMessageReply(t.Context(), &domain.Message{ChatID: 7}, "not allowed")
	require.NoError(t, err)
	mb.AssertExpectations(t)
}

func TestTelegram_SendDocumentReply(t *testing.T) {
	tests := []struct {
		name    string
		file    []byte
		retErr  error
		wantErr bool
		calls   int
	}{
		{name: "success", file: []byte("pngdata"), calls: 1},
		{name: "fail send", file: []byte("fake"), retErr: errors.New("fail"), wantErr: true, calls: 1},
		{name: "empty file", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb := new(MockBot)
			sender := NewTelegram(mb)

			mb.On("SendDocument", mock.Anything, mock.MatchedBy(func(params *bot.SendDocumentParams) bool {
				upload, ok := params.Document.(*models.InputFileUpload)
				return ok && upload.Filename == "abc_output.png" && params.DisableContentTypeDetection
			})).Return(&models.Message{}, tc.retErr).Maybe()

			err := sender.SendDocumentReply(t.Context(), &domain.Message{ID: 33, ChatID: 44}, "abc_output.png", tc.file)

			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			mb.AssertNumberOfCalls(t, "SendDocument", tc.calls)
		})
	}
}

func TestTelegram_NotifyAndReturnError(t *testing.T) {
	original := errors.New("original")

	t.Run("send ok", func(t *testing.T) {
		mb := new(MockBot)
		mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
			return params.Text == "Error: original"
		})).Return(&models.Message{ID: 101}, nil).Once()

		err := NewTelegram(mb).NotifyAndReturnError(t.Context(), original, &domain.Message{ID: 55, ChatID: 88})
		require.ErrorIs(t, err, original)
		mb.AssertExpectations(t)
	})

	t.Run("send fails", func(t *testing.T) {
		sendErr := errors.New("sendfail")
		mb := new(MockBot)
		mb.On("SendMessage", mock.Anything, mock.Anything).Return(nil, sendErr).Once()

		err := NewTelegram(mb).NotifyAndReturnError(t.Context(), original, &domain.Message{ID: 55, ChatID: 88})
		require.ErrorIs(t, err, original)
		require.ErrorIs(t, err, sendErr)
	})
}

func TestSendChatAction_StopsOnContextCancel(t *testing.T) {
	mb := new(MockBot)
	sender := NewTelegram(mb)

	ctx, cancel := context.WithCancel(t.Context())
	chatID := int64(12345)

	mb.On("SendChatAction", mock.Anything, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionUploadDocument,
	}).Return(true, nil)

	done := make(chan struct{})
	go func() {
		sender.SendChatAction(ctx, chatID, domain.UploadDocument)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chat action routine did not stop")
	}

	mb.AssertNumberOfCalls(t, "SendChatAction", 1)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"abc", "de"}, chunk("abcde", 3))
	assert.Equal(t, []string{"ab"}, chunk("ab", 3))
	// the two byte rune is not split
	assert.Equal(t, []string{"a", "é", "b"}, chunk("aéb", 2))
}
