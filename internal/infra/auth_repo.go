package infra

import (
	"context"
	"database/sql"
	"errors"
)

type AuthRepo struct {
	db *sql.DB
}

func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// GetPassword — действующий пароль оператора API (последний вставленный);
// смена пароля = новая строка. Пустая строка, если не задан.
func (r *AuthRepo) GetPassword(ctx context.Context) (string, error) {
	var password string
	err := r.db.QueryRowContext(
		ctx,
		`SELECT password FROM api_auth ORDER BY created_at DESC LIMIT 1`,
	).Scan(&password)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return password, err
}
