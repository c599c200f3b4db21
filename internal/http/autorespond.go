package http

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/service/autorespond"
	"github.com/spasuite/sms-inbound/internal/service/optout"
)

func healthHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := svc.Health(c.Request().Context())
		code := http.StatusOK
		if h.Status != "healthy" {
			code = http.StatusInternalServerError
		}
		return c.JSON(code, h)
	}
}

func getConfigHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, svc.GetConfig())
	}
}

func updateConfigHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch autorespond.ConfigPatch
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		cfg, err := svc.UpdateConfig(patch)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, cfg)
	}
}

func updatePhoneNumbersHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			PhoneNumbers []string `json:"phoneNumbers"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		for _, n := range req.PhoneNumbers {
			if len(n) < 3 {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "phone number too short"})
			}
		}
		svc.UpdatePhoneNumbers(req.PhoneNumbers)
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

func statsHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := svc.Stats(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("stats query failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, stats)
	}
}

// ---- Conversation flows ----

func listFlowsHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		flows, err := svc.ListFlows(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("list flows failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, flows)
	}
}

func createFlowHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var flow model.ConversationFlow
		if err := c.Bind(&flow); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if flow.Name == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
		}
		saved, err := svc.SaveFlow(c.Request().Context(), flow)
		if err != nil {
			c.Logger().Errorf("save flow failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "save failed"})
		}
		return c.JSON(http.StatusCreated, saved)
	}
}

func updateFlowHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var flow model.ConversationFlow
		if err := c.Bind(&flow); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if flow.ID == "" || flow.Name == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "id and name are required"})
		}
		updated, err := svc.UpdateFlow(c.Request().Context(), flow)
		if errors.Is(err, autorespond.ErrFlowNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "flow not found"})
		}
		if err != nil {
			c.Logger().Errorf("update flow failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteFlowHandler(svc *autorespond.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		err := svc.DeleteFlow(c.Request().Context(), id)
		if errors.Is(err, autorespond.ErrFlowNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "flow not found"})
		}
		if err != nil {
			c.Logger().Errorf("delete flow failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
		}
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

// optOutStatusHandler reports whether a phone number currently has an
// opt-out record, for the client dashboard.
func optOutStatusHandler(svc *optout.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		phone := c.Param("phone")
		if phone == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "phone is required"})
		}
		optedOut, err := svc.IsOptedOut(c.Request().Context(), phone)
		if err != nil {
			c.Logger().Errorf("opt-out lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"phone":    phone,
			"optedOut": optedOut,
		})
	}
}
