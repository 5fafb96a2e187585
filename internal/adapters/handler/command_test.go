package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRegistry struct {
	mock.Mock
	cmd port.Command
}

func (m *MockRegistry) Get(cmd string) (port.Command, error) {
	args := m.Called(cmd)
	return m.cmd, args.Error(1)
}

func (m *MockRegistry) Register(handler port.Command) {
	m.cmd = handler
	m.Called(handler)
}

func (m *MockRegistry) ListCommands() []string {
	m.Called()
	return []string{"foo", "bar"}
}

type MockCmdHandler struct{ mock.Mock }

func (m *MockCmdHandler) Respond(ctx context.Context, timeout time.Duration, msg *domain.Message) error {
	args := m.Called(ctx, timeout, msg)
	return args.Error(0)
}

func (m *MockCmdHandler) GetCommand() string {
	m.Called()
	return ""
}

func makeUpdate(txt string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			Text: txt,
			Chat: models.Chat{ID: 100},
			From: &models.User{ID: 200, Username: "bob", FirstName: "bob"},
		},
	}
}

func TestCommandHandler_Handle(t *testing.T) {
	type testcase struct {
		name       string
		update     *models.Update
		mockSetup  func(r *MockRegistry, ch *MockCmdHandler)
		wantCalled bool
		wantMsg    *domain.Message
	}

	tests := []testcase{
		{
			name:   "no message in update",
			update: &models.Update{},
			mockSetup: func(_ *MockRegistry, _ *MockCmdHandler) {
				// No call
			},
			wantCalled: false,
			wantMsg:    nil,
		},
		{
			name:   "unknown command",
			update: makeUpdate("/unknown"),
			mockSetup: func(r *MockRegistry, _ *MockCmdHandler) {
				r.On("Get", "/unknown").Return(nil, errors.New("no handler"))
			},
			wantCalled: false,
			wantMsg:    nil,
		},
		{
			name:   "known command, Respond called successfully",
			update: makeUpdate("/hello"),
			mockSetup: func(r *MockRegistry, ch *MockCmdHandler) {
				r.On("Get", "/hello").Return(ch, nil)
				ch.On("Respond", mock.Anything, mock.Anything,
					mock.AnythingOfType("*domain.Message")).Return(nil)
			},
			wantCalled: true,
			wantMsg: &domain.Message{
				ID:               1,
				ChatID:           100,
				Username:         "@bob",
				ReplyToMessageID: new(int),
				Text:             "/hello",
			},
		},
		{
			name:   "known command, Respond returns error",
			update: makeUpdate("/fail"),
			mockSetup: func(r *MockRegistry, ch *MockCmdHandler) {
				r.On("Get", "/fail").Return(ch, nil)
				ch.On("Respond", mock.Anything, mock.Anything,
					mock.AnythingOfType("*domain.Message")).Return(errors.New("fail"))
			},
			wantCalled: true,
			wantMsg:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := new(MockRegistry)
			handler := new(MockCmdHandler)
			reg.cmd = handler
			// Prepare mocks for this test case
			tc.mockSetup(reg, handler)

			ch := NewCommand(reg, 3*time.Second)
			ch.Handle(t.Context(), nil, tc.update)

			// as the Respond() call is a goroutine, wait for finish
			time.Sleep(100 * time.Millisecond)

			reg.AssertExpectations(t)
			if tc.wantCalled {
				if tc.wantMsg != nil {
					handler.AssertCalled(t, "Respond",
						mock.Anything,
						mock.Anything,
						mock.MatchedBy(func(msg *domain.Message) bool {
							assert.Equal(t, tc.wantMsg, msg)
							return assert.ObjectsAreEqual(tc.wantMsg, msg)
						}),
					)
				} else {
					handler.AssertCalled(t, "Respond",
						mock.Anything,
						mock.Anything,
						mock.AnythingOfType("*domain.Message"),
					)
				}
			} else {
				assert.Empty(t, handler.Calls)
			}
		})
	}
}

func Test_findLargestImage(t *testing.T) {
	tests := []struct {
		name   string
		photos []models.PhotoSize
		want   string
	}{
		{
			name: "returns the largest rendition",
			photos: []models.PhotoSize{
				{FileID: "id1", Width: 90, Height: 60},
				{FileID: "id2", Width: 1280, Height: 853},
				{FileID: "id3", Width: 320, Height: 213},
			},
			want: "id2",
		},
		{
			name: "single photo",
			photos: []models.PhotoSize{
				{FileID: "only", Width: 10, Height: 10},
			},
			want: "only",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := findLargestImage(tc.photos)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_findImage(t *testing.T) {
	photo := []models.PhotoSize{{FileID: "photo", Width: 10, Height: 10}}
	doc := &models.Document{FileID: "doc", FileName: "scan.tiff", MimeType: "image/tiff"}

	tests := []struct {
		name     string
		msg      *models.Message
		wantID   string
		wantName string
	}{
		{name: "photo", msg: &models.Message{Photo: photo}, wantID: "photo"},
		{name: "image document", msg: &models.Message{Document: doc}, wantID: "doc", wantName: "scan.tiff"},
		{
			name: "other document ignored",
			msg:  &models.Message{Document: &models.Document{FileID: "pdf", MimeType: "application/pdf"}},
		},
		{name: "reply photo", msg: &models.Message{ReplyToMessage: &models.Message{Photo: photo}}, wantID: "photo"},
		{name: "nothing", msg: &models.Message{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, name := findImage(tc.msg)
			assert.Equal(t, tc.wantID, id)
			assert.Equal(t, tc.wantName, name)
		})
	}
}

type fakeFiles struct {
	err error
}

func (f *fakeFiles) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.File{FileID: params.FileID, FilePath: "photos/file_7.jpg"}, nil
}

func (f *fakeFiles) FileDownloadLink(file *models.File) string {
	return "https://api.telegram.org/file/botTOKEN/" + file.FilePath
}

func Test_resolveImage(t *testing.T) {
	url, name := resolveImage(t.Context(), &fakeFiles{}, "id", "")
	assert.Equal(t, "https://api.telegram.org/file/botTOKEN/photos/file_7.jpg", url)
	assert.Equal(t, "file_7.jpg", name)

	_, name = resolveImage(t.Context(), &fakeFiles{}, "id", "scan.tiff")
	assert.Equal(t, "scan.tiff", name)

	url, _ = resolveImage(t.Context(), &fakeFiles{err: errors.New("fail")}, "id", "")
	assert.Empty(t, url)
}

func Test_getUserNameFromMessage(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{
			name:     "username present",
			user:     &models.User{Username: "alice", FirstName: "Alice"},
			expected: "@alice",
		},
		{
			name:     "no sender",
			user:     nil,
			expected: "",
		},
		{
			name:     "empty username, fallback to first name",
			user:     &models.User{Username: "", FirstName: "Bob"},
			expected: "Bob",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, getUserNameFromMessage(tc.user))
		})
	}
}
