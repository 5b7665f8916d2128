package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"classroom/models"
)

// FallbackReply is sent instead of a completion whenever the completion
// service fails.
const FallbackReply = "Sorry, I'm having trouble processing your request. Please try again later."

// ChatService runs one conversational exchange per call.
type ChatService struct {
	store     ConversationStore
	completer Completer
	locks     *keyedMutex
	now       func() time.Time
	logger    *slog.Logger
}

func NewChatService(store ConversationStore, completer Completer, logger *slog.Logger) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("chat service: store must not be nil")
	}
	if completer == nil {
		return nil, errors.New("chat service: completer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		store:     store,
		completer: completer,
		locks:     newKeyedMutex(),
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Send records message for colID, asks the completer for a reply and records
// that reply too. A completion failure is replaced by FallbackReply; only
// store failures are returned as errors.
func (s *ChatService) Send(ctx context.Context, colID models.ColID, message string) (string, error) {
	key := colID.Key()
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return "", fmt.Errorf("wait for conversation: %w", err)
	}
	defer unlock()

	history, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	turns := BuildContext(history, message)

	if err := s.store.Append(ctx, key, s.message(message, models.SenderUser)); err != nil {
		return "", fmt.Errorf("save user message: %w", err)
	}

	reply, err := s.completer.Complete(ctx, turns)
	if err != nil {
		s.logger.Error("completion failed", "colid", key, "turns", len(turns), "error", err)
		reply = FallbackReply
	}

	if err := s.store.Append(ctx, key, s.message(reply, models.SenderBot)); err != nil {
		return "", fmt.Errorf("save bot reply: %w", err)
	}

	s.logger.Debug("chat reply sent", "colid", key, "history_len", len(history)+2)
	return reply, nil
}

func (s *ChatService) History(ctx context.Context, colID models.ColID) ([]models.Message, error) {
	messages, err := s.store.Get(ctx, colID.Key())
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return messages, nil
}

func (s *ChatService) Clear(ctx context.Context, colID models.ColID) error {
	key := colID.Key()
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("wait for conversation: %w", err)
	}
	defer unlock()

	if err := s.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *ChatService) message(text, sender string) models.Message {
	return models.Message{
		Text:      text,
		Sender:    sender,
		Timestamp: FormatTimestamp(s.now()),
	}
}
