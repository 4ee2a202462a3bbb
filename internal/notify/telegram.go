package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramSender posts notifications to one admin chat.
type TelegramSender struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramSender{bot: b, chatID: chatID}, nil
}

func (s *TelegramSender) Send(ctx context.Context, n Notification) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   n.Subject + "\n\n" + n.Body,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
