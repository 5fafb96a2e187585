package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewChatAllowlist(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		wantErr  bool
		expected map[int64]struct{}
	}{
		{
			name: "loads allowed chat IDs",
			setup: func() {
				viper.Set("telegram.allowed_chat_ids", []int64{1, 2, 3})
			},
			expected: map[int64]struct{}{1: {}, 2: {}, 3: {}},
		},
		{
			name: "invalid type returns error",
			setup: func() {
				viper.Set("telegram.allowed_chat_ids", "not a slice")
			},
			wantErr: true,
		},
		{
			name: "empty list is fine",
			setup: func() {
				viper.Set("telegram.allowed_chat_ids", []int64{})
			},
			expected: map[int64]struct{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setup()
			auth, err := NewChatAllowlist(&mockTextSender{})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, auth)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, auth)
				assert.Equal(t, tt.expected, auth.chats)
			}
		})
	}
}

func TestChatAllowlist_IsAuthorized(t *testing.T) {
	tests := []struct {
		name         string
		allowlist    []int64
		chatID       int64
		sendErr      error
		want         bool
		expectSend   bool
		expectedText string
	}{
		{
			name:      "chatID is allowed",
			allowlist: []int64{123, 456},
			chatID:    123,
			want:      true,
		},
		{
			name:         "chatID not allowed sends message",
			allowlist:    []int64{111, 222},
			chatID:       333,
			expectSend:   true,
			expectedText: "This chat may not run resize jobs. Ask @adminuser to allow chat ID 333.",
		},
		{
			name:         "send fails for unauthorized chatID",
			allowlist:    []int64{999},
			chatID:       888,
			expectSend:   true,
			sendErr:      errors.New("send failed"),
			expectedText: "This chat may not run resize jobs. Ask @adminuser to allow chat ID 888.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSender := &mockTextSender{sendError: tt.sendErr}
			a := &ChatAllowlist{chats: map[int64]struct{}{}, admin: "adminuser", sender: mockSender}
			for _, id := range tt.allowlist {
				a.chats[id] = struct{}{}
			}

			got := a.IsAuthorized(context.Background(), tt.chatID)

			assert.Equal(t, tt.want, got)
			if tt.expectSend {
				assert.True(t, mockSender.sendCalled, "SendMessageReply should have been called")
				assert.Equal(t, tt.expectedText, mockSender.sendReplies[0])
			} else {
				assert.False(t, mockSender.sendCalled, "SendMessageReply should not have been called")
			}
		})
	}
}
