package optout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/model"
)

type fakeConfigRepo struct {
	rows    map[string]model.SystemConfig
	failAll bool
	inserts int
	updates int
	deletes int
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{rows: map[string]model.SystemConfig{}}
}

func (f *fakeConfigRepo) Get(_ context.Context, key string) (*model.SystemConfig, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	sc, ok := f.rows[key]
	if !ok {
		return nil, nil
	}
	return &sc, nil
}

func (f *fakeConfigRepo) Insert(_ context.Context, sc model.SystemConfig) error {
	if f.failAll {
		return errors.New("db down")
	}
	f.inserts++
	f.rows[sc.Key] = sc
	return nil
}

func (f *fakeConfigRepo) UpdateValue(_ context.Context, key, value, description string) error {
	if f.failAll {
		return errors.New("db down")
	}
	f.updates++
	sc := f.rows[key]
	sc.Key = key
	sc.Value = value
	sc.Description = description
	f.rows[key] = sc
	return nil
}

func (f *fakeConfigRepo) Delete(_ context.Context, key string) error {
	if f.failAll {
		return errors.New("db down")
	}
	f.deletes++
	delete(f.rows, key)
	return nil
}

func (f *fakeConfigRepo) ListByCategory(_ context.Context, category string) ([]model.SystemConfig, error) {
	var out []model.SystemConfig
	for _, sc := range f.rows {
		if sc.Category == category {
			out = append(out, sc)
		}
	}
	return out, nil
}

type fakeUsersRepo struct {
	byPhone map[string]model.User
	all     []model.User
	updated map[int64]bool
	failAll bool
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byPhone: map[string]model.User{}, updated: map[int64]bool{}}
}

func (f *fakeUsersRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	u, ok := f.byPhone[phone]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsersRepo) ListAll(_ context.Context) ([]model.User, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	return f.all, nil
}

func (f *fakeUsersRepo) UpdateSMSFlags(_ context.Context, userID int64, enabled bool) error {
	if f.failAll {
		return errors.New("db down")
	}
	f.updated[userID] = enabled
	return nil
}

func newTestService(cfg *fakeConfigRepo, users *fakeUsersRepo) *Service {
	return NewService(cfg, users, zap.NewNop())
}

func TestSetOptOutCreatesRecord(t *testing.T) {
	cfg := newFakeConfigRepo()
	svc := newTestService(cfg, newFakeUsersRepo())

	applied := svc.SetOptOut(context.Background(), "9185551234")
	require.True(t, applied)

	sc, ok := cfg.rows["sms_opt_out:+19185551234"]
	require.True(t, ok)
	assert.Equal(t, model.CategoryOptOut, sc.Category)
	assert.True(t, sc.IsActive)

	var rec model.OptOutRecord
	require.NoError(t, json.Unmarshal([]byte(sc.Value), &rec))
	assert.True(t, rec.OptedOut)
	assert.NotEmpty(t, rec.At)
}

func TestSetOptOutIdempotent(t *testing.T) {
	cfg := newFakeConfigRepo()
	svc := newTestService(cfg, newFakeUsersRepo())

	require.True(t, svc.SetOptOut(context.Background(), "+19185551234"))
	require.True(t, svc.SetOptOut(context.Background(), "+19185551234"))

	assert.Len(t, cfg.rows, 1)
	assert.Equal(t, 1, cfg.inserts)
	assert.Equal(t, 1, cfg.updates)

	optedOut, err := svc.IsOptedOut(context.Background(), "+19185551234")
	require.NoError(t, err)
	assert.True(t, optedOut)
}

func TestSetThenClearLeavesNoRecord(t *testing.T) {
	cfg := newFakeConfigRepo()
	svc := newTestService(cfg, newFakeUsersRepo())

	require.True(t, svc.SetOptOut(context.Background(), "9185551234"))
	require.True(t, svc.ClearOptOut(context.Background(), "(918) 555-1234"))

	assert.Empty(t, cfg.rows, "opt-in must delete the record, not flip a flag")

	optedOut, err := svc.IsOptedOut(context.Background(), "9185551234")
	require.NoError(t, err)
	assert.False(t, optedOut)
}

func TestClearOptOutAbsentKeyIsNoOp(t *testing.T) {
	cfg := newFakeConfigRepo()
	svc := newTestService(cfg, newFakeUsersRepo())

	assert.True(t, svc.ClearOptOut(context.Background(), "+19180000000"))
}

func TestSetOptOutSwallowsPersistenceErrors(t *testing.T) {
	cfg := newFakeConfigRepo()
	cfg.failAll = true
	svc := newTestService(cfg, newFakeUsersRepo())

	assert.False(t, svc.SetOptOut(context.Background(), "9185551234"))
	assert.False(t, svc.ClearOptOut(context.Background(), "9185551234"))
}

func TestUpdateUserSMSFlagsExactMatch(t *testing.T) {
	users := newFakeUsersRepo()
	users.byPhone["+19185551234"] = model.User{ID: 7, Phone: "+19185551234"}
	svc := newTestService(newFakeConfigRepo(), users)

	svc.UpdateUserSMSFlags(context.Background(), "+19185551234", false)

	enabled, ok := users.updated[7]
	require.True(t, ok)
	assert.False(t, enabled)
}

func TestUpdateUserSMSFlagsLast10Fallback(t *testing.T) {
	users := newFakeUsersRepo()
	users.all = []model.User{
		{ID: 1, Phone: "+15550001111"},
		{ID: 2, Phone: "(918) 555-1234"},
		{ID: 3, Phone: "19185551234"}, // same last 10 digits as ID 2; first match wins
	}
	svc := newTestService(newFakeConfigRepo(), users)

	svc.UpdateUserSMSFlags(context.Background(), "+1 918-555-1234", true)

	enabled, ok := users.updated[2]
	require.True(t, ok)
	assert.True(t, enabled)
	_, touchedThird := users.updated[3]
	assert.False(t, touchedThird)
}

func TestUpdateUserSMSFlagsNoMatchIsNoOp(t *testing.T) {
	users := newFakeUsersRepo()
	users.all = []model.User{{ID: 1, Phone: "+15550001111"}}
	svc := newTestService(newFakeConfigRepo(), users)

	svc.UpdateUserSMSFlags(context.Background(), "9185551234", false)

	assert.Empty(t, users.updated)
}

func TestUpdateUserSMSFlagsSwallowsErrors(t *testing.T) {
	users := newFakeUsersRepo()
	users.failAll = true
	svc := newTestService(newFakeConfigRepo(), users)

	// must not panic or propagate
	svc.UpdateUserSMSFlags(context.Background(), "9185551234", false)
}
