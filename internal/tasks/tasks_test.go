package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/tasks"
)

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg *email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// --- Tests ---

func TestHandleEmailDeliveryTask_Success(t *testing.T) {
	mockSender := new(MockEmailSender)
	p := tasks.NewTaskProcessor(&config.Config{}, mockSender, nil)

	payloadBytes, _ := json.Marshal(&email.Message{
		To:      []string{"owner@lab.example"},
		Subject: "New Quote Received - Vitro Supplies",
		HTML:    "<p>Hi</p>",
		Kind:    email.KindQuoteReceived,
	})
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)

	mockSender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
		return len(msg.To) == 1 && msg.To[0] == "owner@lab.example" && msg.Kind == email.KindQuoteReceived
	})).Return(nil)

	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.NoError(t, err)
	mockSender.AssertExpectations(t)
}

func TestHandleEmailDeliveryTask_SenderErrorIsRetryable(t *testing.T) {
	mockSender := new(MockEmailSender)
	p := tasks.NewTaskProcessor(&config.Config{}, mockSender, nil)

	payloadBytes, _ := json.Marshal(&email.Message{
		To:      []string{"owner@lab.example"},
		Subject: "s",
		Kind:    email.KindDeadlineReminder,
	})
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)

	sendErr := errors.New("smtp error: timeout")
	mockSender.On("Send", mock.Anything, mock.Anything).Return(sendErr)

	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.ErrorIs(t, err, sendErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleEmailDeliveryTask_BadPayloadSkipsRetry(t *testing.T) {
	p := tasks.NewTaskProcessor(&config.Config{}, new(MockEmailSender), nil)

	task := asynq.NewTask(tasks.TypeEmailDelivery, []byte("not json"))
	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleEmailDeliveryTask_NoRecipientsSkipsRetry(t *testing.T) {
	p := tasks.NewTaskProcessor(&config.Config{}, new(MockEmailSender), nil)

	payloadBytes, _ := json.Marshal(&email.Message{Subject: "s"})
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)
	err := p.HandleEmailDeliveryTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
