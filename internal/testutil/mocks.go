package testutil

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/mock"

	"kapebot/internal/domain"
)

// MockPropertyRepository is a mock for repository.PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) All(ctx context.Context) ([]domain.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

// MockSender is a mock for transport.Sender that records sent bodies
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, recipientID, body string) error {
	args := m.Called(ctx, recipientID, body)
	return args.Error(0)
}

// RecordingSender collects outbound messages without a mock setup
type RecordingSender struct {
	Recipients []string
	Bodies     []string
}

func (s *RecordingSender) Send(_ context.Context, recipientID, body string) error {
	s.Recipients = append(s.Recipients, recipientID)
	s.Bodies = append(s.Bodies, body)
	return nil
}

// MockChatCompleter is a mock for service.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

// ChatReply builds a single-choice completion response
func ChatReply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}
