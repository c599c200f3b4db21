package model

import "time"

// User is the application user entity. Only the SMS notification flags are
// mutated by this service; the rest of the row is owned by the main app.
type User struct {
	ID                      int64     `db:"id"`
	FirstName               string    `db:"first_name"`
	LastName                string    `db:"last_name"`
	Email                   string    `db:"email"`
	Phone                   string    `db:"phone"`
	SMSAccountManagement    bool      `db:"sms_account_management"`
	SMSAppointmentReminders bool      `db:"sms_appointment_reminders"`
	SMSPromotions           bool      `db:"sms_promotions"`
	CreatedAt               time.Time `db:"created_at"`
	UpdatedAt               time.Time `db:"updated_at"`
}
