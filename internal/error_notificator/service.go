package error_notificator

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// лимит телеграма на сообщение — 4096 символов
const maxMessageRunes = 4000

type Service struct {
	sender  Sender
	chatID  int64
	service string
	log     *zap.SugaredLogger
}

func NewService(sender Sender, chatID int64, service string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{sender: sender, chatID: chatID, service: service, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка в сервисе (%s)\n\nОшибка: %v\n\nДетали: %s",
		s.service,
		err,
		details,
	)
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes]) + "…"
	}

	if sendErr := s.sender.Send(ctx, s.chatID, text); sendErr != nil {
		s.log.Warnw("[error_notificator] send fail", "chat", s.chatID, "error", sendErr)
		return sendErr
	}
	return nil
}
