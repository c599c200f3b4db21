package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/logger"
	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/service/autorespond"
	"github.com/spasuite/sms-inbound/internal/service/inbound"
	"github.com/spasuite/sms-inbound/internal/service/optout"
)

type memConfigRepo struct {
	rows map[string]model.SystemConfig
}

func newMemConfigRepo() *memConfigRepo {
	return &memConfigRepo{rows: map[string]model.SystemConfig{}}
}

func (m *memConfigRepo) Get(_ context.Context, key string) (*model.SystemConfig, error) {
	sc, ok := m.rows[key]
	if !ok {
		return nil, nil
	}
	return &sc, nil
}

func (m *memConfigRepo) Insert(_ context.Context, sc model.SystemConfig) error {
	m.rows[sc.Key] = sc
	return nil
}

func (m *memConfigRepo) UpdateValue(_ context.Context, key, value, description string) error {
	sc := m.rows[key]
	sc.Key = key
	sc.Value = value
	sc.Description = description
	m.rows[key] = sc
	return nil
}

func (m *memConfigRepo) Delete(_ context.Context, key string) error {
	delete(m.rows, key)
	return nil
}

func (m *memConfigRepo) ListByCategory(_ context.Context, _ string) ([]model.SystemConfig, error) {
	return nil, nil
}

type memUsersRepo struct {
	users   []model.User
	updated map[int64]bool
}

func newMemUsersRepo(users ...model.User) *memUsersRepo {
	return &memUsersRepo{users: users, updated: map[int64]bool{}}
}

func (m *memUsersRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	for i := range m.users {
		if m.users[i].Phone == phone {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *memUsersRepo) ListAll(_ context.Context) ([]model.User, error) {
	return m.users, nil
}

func (m *memUsersRepo) UpdateSMSFlags(_ context.Context, userID int64, enabled bool) error {
	m.updated[userID] = enabled
	return nil
}

type recordingForwarder struct {
	forwarded []model.InboundMessage
}

func (r *recordingForwarder) Forward(_ context.Context, msg model.InboundMessage) error {
	r.forwarded = append(r.forwarded, msg)
	return nil
}

type webhookFixture struct {
	e       *echo.Echo
	cfgRepo *memConfigRepo
	users   *memUsersRepo
	fw      *recordingForwarder
}

func newWebhookFixture(t *testing.T, users ...model.User) *webhookFixture {
	t.Helper()
	logger.Log = zap.NewNop()

	cfgRepo := newMemConfigRepo()
	usersRepo := newMemUsersRepo(users...)
	fw := &recordingForwarder{}

	optSvc := optout.NewService(cfgRepo, usersRepo, zap.NewNop())
	autoSvc := autorespond.NewService(
		model.AutoRespondConfig{Enabled: true},
		nil, nil, nil, zap.NewNop(),
	)
	pipeline := inbound.NewPipeline(optSvc, autoSvc, fw, nil, zap.NewNop())

	e := echo.New()
	registerWebhookRoutes(e, pipeline)
	e.POST("/api/sms-auto-respond/test", testHandler(pipeline))

	return &webhookFixture{e: e, cfgRepo: cfgRepo, users: usersRepo, fw: fw}
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookStopKeyword(t *testing.T) {
	fx := newWebhookFixture(t, model.User{ID: 3, Phone: "+19185551234", SMSPromotions: true})

	rec := postForm(fx.e, "/api/sms-auto-respond/webhook", url.Values{
		"From": {"+19185551234"},
		"To":   {"+19180009999"},
		"Body": {"STOP"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/xml")
	assert.Equal(t,
		"<Response><Message>You are unsubscribed. Reply START to re-subscribe.</Message></Response>",
		rec.Body.String(),
	)

	sc, ok := fx.cfgRepo.rows["sms_opt_out:+19185551234"]
	require.True(t, ok, "opt-out record must exist")
	var optRec model.OptOutRecord
	require.NoError(t, json.Unmarshal([]byte(sc.Value), &optRec))
	assert.True(t, optRec.OptedOut)

	enabled, ok := fx.users.updated[3]
	require.True(t, ok, "user SMS flags must be updated")
	assert.False(t, enabled)

	assert.Empty(t, fx.fw.forwarded, "compliance messages are not delegated")
}

func TestWebhookStartKeywordClearsRecord(t *testing.T) {
	fx := newWebhookFixture(t)
	fx.cfgRepo.rows["sms_opt_out:+19185551234"] = model.SystemConfig{
		Key:      "sms_opt_out:+19185551234",
		Value:    `{"optedOut":true,"at":"2026-08-30T00:00:00Z"}`,
		Category: model.CategoryOptOut,
	}

	rec := postForm(fx.e, "/api/sms-auto-respond/webhook", url.Values{
		"From": {"9185551234"},
		"To":   {"+19180009999"},
		"Body": {"START"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"<Response><Message>You have been re-subscribed.</Message></Response>",
		rec.Body.String(),
	)
	assert.Empty(t, fx.cfgRepo.rows, "opt-in deletes the record entirely")
}

func TestWebhookDelegatesNonComplianceMessages(t *testing.T) {
	fx := newWebhookFixture(t)

	rec := postForm(fx.e, "/api/sms-auto-respond/webhook", url.Values{
		"From": {"9185551234"},
		"To":   {"x"},
		"Body": {"book an appointment"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"<Response><Message>Thanks! We&apos;ll text you shortly.</Message></Response>",
		rec.Body.String(),
	)
	require.Len(t, fx.fw.forwarded, 1)
	assert.Equal(t, "book an appointment", fx.fw.forwarded[0].Body)
	assert.Empty(t, fx.cfgRepo.rows, "no opt-out record created or altered")
}

func TestWebhookMissingBodyRejected(t *testing.T) {
	fx := newWebhookFixture(t)

	rec := postForm(fx.e, "/api/sms-auto-respond/webhook", url.Values{
		"From": {"+19185551234"},
		"To":   {"+19180009999"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "<Response></Response>", rec.Body.String())
	assert.Empty(t, fx.cfgRepo.rows, "no persistence on rejected requests")
	assert.Empty(t, fx.fw.forwarded)
}

func TestWebhookLowercaseFieldFallback(t *testing.T) {
	fx := newWebhookFixture(t)

	rec := postForm(fx.e, "/sms/webhook", url.Values{
		"from": {"+19185551234"},
		"to":   {"+19180009999"},
		"body": {"STOP"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := fx.cfgRepo.rows["sms_opt_out:+19185551234"]
	assert.True(t, ok)
}

func TestWebhookAliasesShareBehavior(t *testing.T) {
	for _, alias := range webhookAliases {
		t.Run(alias, func(t *testing.T) {
			fx := newWebhookFixture(t)
			rec := postForm(fx.e, alias, url.Values{
				"From": {"+19185551234"},
				"To":   {"+19180009999"},
				"Body": {"STOP"},
			})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t,
				"<Response><Message>You are unsubscribed. Reply START to re-subscribe.</Message></Response>",
				rec.Body.String(),
			)
		})
	}
}

func TestWebhookProbe(t *testing.T) {
	fx := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sms-auto-respond/webhook", nil)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SMS webhook ready", rec.Body.String())
}

func TestTestEndpoint(t *testing.T) {
	fx := newWebhookFixture(t)

	payload := `{"from":"+19185551234","to":"+19180009999","body":"what are your hours?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sms-auto-respond/test", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res model.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, model.OutcomeDelegated, res.Outcome)
}

func TestTestEndpointRejectsMissingFields(t *testing.T) {
	fx := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sms-auto-respond/test", strings.NewReader(`{"from":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
