package autorespond

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/spasuite/sms-inbound/internal/model"
)

const flowsHashKey = "autorespond:flows"

// FlowStore persists operator-defined conversation flows. The original
// implementation kept these in a process-global map; an injected store keeps
// flows across restarts and makes handlers testable.
type FlowStore interface {
	List(ctx context.Context) ([]model.ConversationFlow, error)
	Get(ctx context.Context, id string) (*model.ConversationFlow, error)
	Put(ctx context.Context, flow model.ConversationFlow) error
	// Delete reports whether the flow existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// RedisFlowStore keeps each flow as a JSON field of one hash.
type RedisFlowStore struct {
	rds *redis.Client
}

func NewRedisFlowStore(rds *redis.Client) *RedisFlowStore {
	return &RedisFlowStore{rds: rds}
}

var _ FlowStore = (*RedisFlowStore)(nil)

func (s *RedisFlowStore) List(ctx context.Context) ([]model.ConversationFlow, error) {
	raw, err := s.rds.HGetAll(ctx, flowsHashKey).Result()
	if err != nil {
		return nil, err
	}

	flows := make([]model.ConversationFlow, 0, len(raw))
	for _, v := range raw {
		var f model.ConversationFlow
		if err := json.Unmarshal([]byte(v), &f); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	// HGETALL order is unspecified; keep the listing stable for clients.
	sort.Slice(flows, func(i, j int) bool { return flows[i].ID < flows[j].ID })
	return flows, nil
}

func (s *RedisFlowStore) Get(ctx context.Context, id string) (*model.ConversationFlow, error) {
	v, err := s.rds.HGet(ctx, flowsHashKey, id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f model.ConversationFlow
	if err := json.Unmarshal([]byte(v), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *RedisFlowStore) Put(ctx context.Context, flow model.ConversationFlow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return err
	}
	return s.rds.HSet(ctx, flowsHashKey, flow.ID, payload).Err()
}

func (s *RedisFlowStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.rds.HDel(ctx, flowsHashKey, id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
