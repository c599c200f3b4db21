package http

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/compliance"
	"github.com/spasuite/sms-inbound/internal/logger"
	"github.com/spasuite/sms-inbound/internal/metrics"
	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/service/inbound"
	"github.com/spasuite/sms-inbound/internal/util"
)

const xmlContentType = "text/xml"

// webhookAliases are historically-configured provider callback URLs. All of
// them behave exactly like the primary path.
var webhookAliases = []string{
	"/sms",
	"/sms/webhook",
	"/api/sms/webhook",
	"/api/webhook/incoming-sms",
	"/incoming-sms",
	"/message",
	"/messages",
	"/sms/incoming",
	"/webhooks/sms",
	"/api/twilio/sms",
	"/api/twilio/inbound",
}

// formField reads a provider form field, falling back to its lowercase name.
func formField(c echo.Context, name, alt string) string {
	if v := c.FormValue(name); v != "" {
		return v
	}
	return c.FormValue(alt)
}

// webhookHandler accepts provider-formatted inbound SMS callbacks. The
// provider must never see a raw error: every failure path still returns a
// well-formed XML envelope.
func webhookHandler(pipeline *inbound.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("webhook panic", zap.Any("panic", r))
				metrics.WebhookMessagesTotal.WithLabelValues("error").Inc()
				err = c.Blob(http.StatusInternalServerError, xmlContentType, []byte(compliance.EmptyEnvelope))
			}
		}()

		from := formField(c, "From", "from")
		to := formField(c, "To", "to")
		body := formField(c, "Body", "body")
		messageID := formField(c, "MessageSid", "messageId")
		if messageID == "" {
			messageID = "sid_" + util.NewID()
		}

		if from == "" || to == "" || body == "" {
			metrics.WebhookMessagesTotal.WithLabelValues("rejected").Inc()
			return c.Blob(http.StatusBadRequest, xmlContentType, []byte(compliance.EmptyEnvelope))
		}

		logger.Log.Info("incoming sms webhook",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("message_id", messageID),
			zap.Int("body_len", len(body)),
		)

		res := pipeline.Process(c.Request().Context(), model.InboundMessage{
			From:      from,
			To:        to,
			Body:      body,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			MessageID: messageID,
		})

		metrics.WebhookMessagesTotal.WithLabelValues(res.Outcome.String()).Inc()
		return c.Blob(http.StatusOK, xmlContentType, []byte(compliance.Envelope(res.Reply)))
	}
}

// webhookProbeHandler lets operators verify the callback URL from the
// provider console.
func webhookProbeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "SMS webhook ready")
	}
}

type testReq struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// testHandler runs the same pipeline synchronously and returns the outcome as
// JSON, for operator-driven simulation.
func testHandler(pipeline *inbound.Pipeline) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req testReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "bad request"})
		}
		if req.From == "" || req.To == "" || req.Body == "" {
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "from, to and body are required"})
		}

		res := pipeline.Process(c.Request().Context(), model.InboundMessage{
			From:      req.From,
			To:        req.To,
			Body:      req.Body,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			MessageID: "test_" + util.NewID(),
		})
		return c.JSON(http.StatusOK, res)
	}
}
