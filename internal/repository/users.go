package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/spasuite/sms-inbound/internal/model"
)

// UsersRepository looks up application users for preference updates. The
// user table itself is owned by the main application; this service only
// flips the SMS notification flags.
type UsersRepository interface {
	// GetByPhone returns nil, nil when no user has the exact phone value.
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	// ListAll returns every user ordered by ascending id. The stable order is
	// a contract: fuzzy phone matching picks the first hit in this order.
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateSMSFlags(ctx context.Context, userID int64, enabled bool) error
}

type UsersRepositoryImpl struct {
	db *sqlx.DB
}

func NewUsersRepository(db *sqlx.DB) *UsersRepositoryImpl {
	return &UsersRepositoryImpl{db: db}
}

var _ UsersRepository = (*UsersRepositoryImpl)(nil)

const userColumns = `id, first_name, last_name, email, phone,
	sms_account_management, sms_appointment_reminders, sms_promotions,
	created_at, updated_at`

func (r *UsersRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		  FROM users
		 WHERE phone = ? LIMIT 1
	`, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepositoryImpl) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		  FROM users
		 ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UsersRepositoryImpl) UpdateSMSFlags(ctx context.Context, userID int64, enabled bool) error {
	const q = `
		UPDATE users
		   SET sms_account_management = ?,
		       sms_appointment_reminders = ?,
		       sms_promotions = ?,
		       updated_at = NOW()
		 WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, q, enabled, enabled, enabled, userID)
	return err
}
