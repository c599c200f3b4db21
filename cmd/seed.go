package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/spasuite/sms-inbound/internal/config"
	"github.com/spasuite/sms-inbound/internal/db"
	"github.com/spasuite/sms-inbound/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo users...")

		if err := seedUsers(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedUsers inserts deterministic demo users (idempotent on email).
func seedUsers(dbx *sqlx.DB) error {
	users := []model.User{
		{
			FirstName:               "Ava",
			LastName:                "Nguyen",
			Email:                   "ava.nguyen@example.com",
			Phone:                   "+19185551234",
			SMSAccountManagement:    true,
			SMSAppointmentReminders: true,
			SMSPromotions:           true,
		},
		{
			FirstName:               "Marcus",
			LastName:                "Bell",
			Email:                   "marcus.bell@example.com",
			Phone:                   "(918) 555-0144",
			SMSAccountManagement:    true,
			SMSAppointmentReminders: true,
			SMSPromotions:           false,
		},
		{
			FirstName:               "Priya",
			LastName:                "Shah",
			Email:                   "priya.shah@example.com",
			Phone:                   "9185550199",
			SMSAccountManagement:    false,
			SMSAppointmentReminders: true,
			SMSPromotions:           true,
		},
	}

	const q = `
INSERT INTO users
    (first_name, last_name, email, phone,
     sms_account_management, sms_appointment_reminders, sms_promotions,
     created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    first_name = VALUES(first_name),
    last_name  = VALUES(last_name),
    phone      = VALUES(phone),
    updated_at = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, u := range users {
		if _, err := tx.Exec(q,
			u.FirstName, u.LastName, u.Email, u.Phone,
			u.SMSAccountManagement, u.SMSAppointmentReminders, u.SMSPromotions,
			now, now,
		); err != nil {
			return fmt.Errorf("insert user %q: %w", u.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit users: %w", err)
	}
	return nil
}
