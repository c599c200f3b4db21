package model

import "time"

// CategoryOptOut is the system_config category for SMS opt-out rows.
const CategoryOptOut = "sms_opt_out"

// OptOutKeyPrefix namespaces opt-out rows inside the shared config table.
const OptOutKeyPrefix = "sms_opt_out:"

// SystemConfig is a row in the shared key-value configuration table.
type SystemConfig struct {
	Key         string    `db:"config_key"`
	Value       string    `db:"config_value"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	IsEncrypted bool      `db:"is_encrypted"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// OptOutRecord is the JSON value stored under sms_opt_out:<phone> keys.
// At most one record exists per normalized phone; absence means "not opted out".
type OptOutRecord struct {
	OptedOut bool   `json:"optedOut"`
	At       string `json:"at"` // RFC3339
}
