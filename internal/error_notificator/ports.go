package error_notificator

import "context"

// Sender — отправка текста в чат админа.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}
