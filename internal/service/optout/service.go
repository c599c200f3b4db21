package optout

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/metrics"
	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/repository"
	"github.com/spasuite/sms-inbound/internal/util"
)

const (
	optOutDescription = "Client opted out via STOP keyword"
)

// Service owns the opt-out records in the shared config table and the user
// SMS preference flags. Every write is best-effort: a persistence failure is
// logged and reported as Applied=false, but never propagated, because the
// webhook must acknowledge the provider no matter what.
type Service struct {
	cfg   repository.SystemConfigRepository
	users repository.UsersRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewService(cfg repository.SystemConfigRepository, users repository.UsersRepository, log *zap.Logger) *Service {
	return &Service{
		cfg:   cfg,
		users: users,
		log:   log,
		now:   time.Now,
	}
}

// Key returns the namespaced config key for a raw phone string.
func Key(phone string) string {
	return model.OptOutKeyPrefix + util.NormalizePhoneKey(phone)
}

// SetOptOut records an opt-out for the phone. Idempotent: a second STOP
// overwrites the record with a fresh timestamp, leaving one row per key.
func (s *Service) SetOptOut(ctx context.Context, phone string) (applied bool) {
	key := Key(phone)

	rec := model.OptOutRecord{
		OptedOut: true,
		At:       s.now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn("opt-out: marshal record", zap.String("key", key), zap.Error(err))
		metrics.OptOutWritesTotal.WithLabelValues("set", "error").Inc()
		return false
	}

	existing, err := s.cfg.Get(ctx, key)
	if err != nil {
		s.log.Warn("opt-out: lookup failed", zap.String("key", key), zap.Error(err))
		metrics.OptOutWritesTotal.WithLabelValues("set", "error").Inc()
		return false
	}

	if existing != nil {
		err = s.cfg.UpdateValue(ctx, key, string(value), optOutDescription)
	} else {
		err = s.cfg.Insert(ctx, model.SystemConfig{
			Key:         key,
			Value:       string(value),
			Description: optOutDescription,
			Category:    model.CategoryOptOut,
			IsEncrypted: false,
			IsActive:    true,
		})
	}
	if err != nil {
		s.log.Warn("opt-out: write failed", zap.String("key", key), zap.Error(err))
		metrics.OptOutWritesTotal.WithLabelValues("set", "error").Inc()
		return false
	}

	metrics.OptOutWritesTotal.WithLabelValues("set", "ok").Inc()
	return true
}

// ClearOptOut deletes the opt-out record outright. Absence of the key means
// "not opted out", so no opted-back-in row is retained. Deleting an absent
// key is a no-op success.
func (s *Service) ClearOptOut(ctx context.Context, phone string) (applied bool) {
	key := Key(phone)

	if err := s.cfg.Delete(ctx, key); err != nil {
		s.log.Warn("opt-out: delete failed", zap.String("key", key), zap.Error(err))
		metrics.OptOutWritesTotal.WithLabelValues("clear", "error").Inc()
		return false
	}

	metrics.OptOutWritesTotal.WithLabelValues("clear", "ok").Inc()
	return true
}

// IsOptedOut reports whether the phone currently has an opt-out record.
func (s *Service) IsOptedOut(ctx context.Context, phone string) (bool, error) {
	sc, err := s.cfg.Get(ctx, Key(phone))
	if err != nil {
		return false, err
	}
	if sc == nil {
		return false, nil
	}

	var rec model.OptOutRecord
	if err := json.Unmarshal([]byte(sc.Value), &rec); err != nil {
		return false, err
	}
	return rec.OptedOut, nil
}

// UpdateUserSMSFlags resolves the user for a raw phone string and sets all
// three SMS preference flags to enabled. Lookup order is the contract: exact
// phone match first, then the first last-10-digit match scanning users in
// ascending id order. No resolved user is a silent no-op, and every failure
// is swallowed after logging.
func (s *Service) UpdateUserSMSFlags(ctx context.Context, phone string, enabled bool) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		s.log.Warn("prefs: user lookup failed", zap.Error(err))
		return
	}

	if user == nil {
		last10 := util.Last10(phone)
		if last10 == "" {
			return
		}
		all, err := s.users.ListAll(ctx)
		if err != nil {
			s.log.Warn("prefs: user scan failed", zap.Error(err))
			return
		}
		for i := range all {
			if util.Last10(all[i].Phone) == last10 {
				user = &all[i]
				break
			}
		}
	}

	if user == nil {
		return
	}

	if err := s.users.UpdateSMSFlags(ctx, user.ID, enabled); err != nil {
		s.log.Warn("prefs: flag update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}
