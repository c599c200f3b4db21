package autorespond

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spasuite/sms-inbound/internal/model"
	"github.com/spasuite/sms-inbound/internal/util"
)

var ErrFlowNotFound = errors.New("flow not found")

// StatsSource aggregates the auto-response log.
type StatsSource interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// Service holds the runtime auto-respond configuration and the management
// surface around it (flows, stats, health). Config mutations come from the
// HTTP API and are process-local, seeded from the YAML config at startup.
type Service struct {
	mu  sync.RWMutex
	cfg model.AutoRespondConfig

	flows FlowStore
	stats StatsSource
	ping  func(ctx context.Context) error
	log   *zap.Logger
}

func NewService(cfg model.AutoRespondConfig, flows FlowStore, stats StatsSource, ping func(ctx context.Context) error, log *zap.Logger) *Service {
	return &Service{
		cfg:   cfg,
		flows: flows,
		stats: stats,
		ping:  ping,
		log:   log,
	}
}

// GetConfig returns a copy; slices are cloned so callers cannot mutate state.
func (s *Service) GetConfig() model.AutoRespondConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.cfg
	out.ExcludedKeywords = append([]string(nil), s.cfg.ExcludedKeywords...)
	out.ExcludedPhoneNumbers = append([]string(nil), s.cfg.ExcludedPhoneNumbers...)
	out.AutoRespondPhoneNumbers = append([]string(nil), s.cfg.AutoRespondPhoneNumbers...)
	return out
}

// BusinessHoursPatch is a partial business-hours update.
type BusinessHoursPatch struct {
	Start    *string `json:"start"`
	End      *string `json:"end"`
	Timezone *string `json:"timezone"`
}

// ConfigPatch is a partial config update; nil fields keep the current value.
type ConfigPatch struct {
	Enabled              *bool               `json:"enabled"`
	ConfidenceThreshold  *float64            `json:"confidenceThreshold"`
	MaxResponseLength    *int                `json:"maxResponseLength"`
	BusinessHoursOnly    *bool               `json:"businessHoursOnly"`
	BusinessHours        *BusinessHoursPatch `json:"businessHours"`
	ExcludedKeywords     *[]string           `json:"excludedKeywords"`
	ExcludedPhoneNumbers *[]string           `json:"excludedPhoneNumbers"`
}

// UpdateConfig merges a patch after validating its bounds.
func (s *Service) UpdateConfig(patch ConfigPatch) (model.AutoRespondConfig, error) {
	if patch.ConfidenceThreshold != nil {
		if v := *patch.ConfidenceThreshold; v < 0 || v > 1 {
			return model.AutoRespondConfig{}, fmt.Errorf("confidenceThreshold must be within [0,1], got %v", v)
		}
	}
	if patch.MaxResponseLength != nil {
		if v := *patch.MaxResponseLength; v < 50 || v > 500 {
			return model.AutoRespondConfig{}, fmt.Errorf("maxResponseLength must be within [50,500], got %d", v)
		}
	}
	if patch.BusinessHours != nil && patch.BusinessHours.Timezone != nil {
		if _, err := time.LoadLocation(*patch.BusinessHours.Timezone); err != nil {
			return model.AutoRespondConfig{}, fmt.Errorf("unknown timezone %q", *patch.BusinessHours.Timezone)
		}
	}

	s.mu.Lock()
	if patch.Enabled != nil {
		s.cfg.Enabled = *patch.Enabled
	}
	if patch.ConfidenceThreshold != nil {
		s.cfg.ConfidenceThreshold = *patch.ConfidenceThreshold
	}
	if patch.MaxResponseLength != nil {
		s.cfg.MaxResponseLength = *patch.MaxResponseLength
	}
	if patch.BusinessHoursOnly != nil {
		s.cfg.BusinessHoursOnly = *patch.BusinessHoursOnly
	}
	if patch.BusinessHours != nil {
		if patch.BusinessHours.Start != nil {
			s.cfg.BusinessHours.Start = *patch.BusinessHours.Start
		}
		if patch.BusinessHours.End != nil {
			s.cfg.BusinessHours.End = *patch.BusinessHours.End
		}
		if patch.BusinessHours.Timezone != nil {
			s.cfg.BusinessHours.Timezone = *patch.BusinessHours.Timezone
		}
	}
	if patch.ExcludedKeywords != nil {
		s.cfg.ExcludedKeywords = append([]string(nil), (*patch.ExcludedKeywords)...)
	}
	if patch.ExcludedPhoneNumbers != nil {
		s.cfg.ExcludedPhoneNumbers = append([]string(nil), (*patch.ExcludedPhoneNumbers)...)
	}
	s.mu.Unlock()

	s.log.Info("auto-respond config updated")
	return s.GetConfig(), nil
}

// UpdatePhoneNumbers replaces the list of numbers the responder answers for.
func (s *Service) UpdatePhoneNumbers(numbers []string) {
	s.mu.Lock()
	s.cfg.AutoRespondPhoneNumbers = append([]string(nil), numbers...)
	s.mu.Unlock()

	s.log.Info("auto-respond phone numbers updated", zap.Int("count", len(numbers)))
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	return s.stats.Stats(ctx)
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status           string   `json:"status"` // healthy|unhealthy
	ConfigLoaded     bool     `json:"configLoaded"`
	StorageConnected bool     `json:"storageConnected"`
	Issues           []string `json:"issues"`
}

func (s *Service) Health(ctx context.Context) HealthStatus {
	issues := []string{}

	storageOK := true
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			storageOK = false
			issues = append(issues, "storage connection failed")
		}
	}

	status := "healthy"
	if len(issues) > 0 {
		status = "unhealthy"
	}
	return HealthStatus{
		Status:           status,
		ConfigLoaded:     true,
		StorageConnected: storageOK,
		Issues:           issues,
	}
}

// ---- Conversation flows ----

func (s *Service) ListFlows(ctx context.Context) ([]model.ConversationFlow, error) {
	return s.flows.List(ctx)
}

// SaveFlow creates a flow, generating an ID when the client did not pick one.
func (s *Service) SaveFlow(ctx context.Context, flow model.ConversationFlow) (model.ConversationFlow, error) {
	if flow.ID == "" {
		flow.ID = "cf-" + util.NewID()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	flow.CreatedAt = now
	flow.UpdatedAt = now

	if err := s.flows.Put(ctx, flow); err != nil {
		return model.ConversationFlow{}, err
	}
	return flow, nil
}

// UpdateFlow replaces an existing flow; unknown IDs fail with ErrFlowNotFound.
func (s *Service) UpdateFlow(ctx context.Context, flow model.ConversationFlow) (model.ConversationFlow, error) {
	existing, err := s.flows.Get(ctx, flow.ID)
	if err != nil {
		return model.ConversationFlow{}, err
	}
	if existing == nil {
		return model.ConversationFlow{}, ErrFlowNotFound
	}

	flow.CreatedAt = existing.CreatedAt
	flow.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.flows.Put(ctx, flow); err != nil {
		return model.ConversationFlow{}, err
	}
	return flow, nil
}

func (s *Service) DeleteFlow(ctx context.Context, id string) error {
	existed, err := s.flows.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return ErrFlowNotFound
	}
	return nil
}
