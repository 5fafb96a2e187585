package command

import (
	"context"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendChatAction(_ context.Context, _ int64, _ domain.Action) {
	// mocked
}

func (m *MockSender) NotifyAndReturnError(_ context.Context, _ error, _ *domain.Message) error {
	// mocked
	return nil
}

func (m *MockSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	args := m.Called(ctx, message, text)
	return args.Int(0), args.Error(1)
}

type MockTextSender struct {
	err     error
	Message string
}

func (m *MockTextSender) SendMessageReply(_ context.Context, _ *domain.Message, message string) (int, error) {
	m.Message = message
	return 0, m.err
}

func (m *MockTextSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	m.Message = err.Error()
	if m.err != nil {
		return m.err
	}
	return err
}

func (m *MockTextSender) SendChatAction(_ context.Context, _ int64, _ domain.Action) {}

type MockFileSender struct {
	filename string
	file     []byte
	called   bool
	err      error
}

func (m *MockFileSender) SendDocumentReply(_ context.Context, _ *domain.Message, filename string, file []byte) error {
	m.called = true
	m.filename = filename
	m.file = file
	return m.err
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, req *port.ProcessRequest) (*port.ProcessResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*port.ProcessResult)
	return res, args.Error(1)
}

func (m *MockProcessor) Backends() []string {
	return []string{"imagemagick", "pillow"}
}

type MockScratchPool struct {
	active int
}

func (m *MockScratchPool) Acquire() (port.Scratch, error) {
	return nil, nil
}

func (m *MockScratchPool) Purge() error {
	return nil
}

func (m *MockScratchPool) Active() int {
	return m.active
}

type MockAuthorizer struct {
	allowed bool
}

func (m *MockAuthorizer) IsAuthorized(context.Context, int64) bool {
	return m.allowed
}

type MockLimiter struct {
	allowed bool
	used    int
}

func (m *MockLimiter) Allow(context.Context, int64) bool {
	if m.allowed {
		m.used++
	}
	return m.allowed
}

func (m *MockLimiter) Used(int64) int {
	return m.used
}
