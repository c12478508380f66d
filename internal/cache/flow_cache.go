package cache

import (
	"archetypes/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// flowTTL bounds how long an unfinished character walk survives.
const flowTTL = 2 * time.Hour

// FlowCache holds the per-session, per-character question walk state.
type FlowCache interface {
	Set(ctx context.Context, state *model.FlowState) error
	Get(ctx context.Context, sessionID string, characterID int) (*model.FlowState, error)
	Delete(ctx context.Context, sessionID string, characterID int) error
}

type flowCache struct {
	client *redis.Client
}

func NewFlowCache(client *redis.Client) FlowCache {
	return &flowCache{
		client: client,
	}
}

func flowKey(sessionID string, characterID int) string {
	return fmt.Sprintf("flow:%s:%d", sessionID, characterID)
}

func (c *flowCache) Set(ctx context.Context, state *model.FlowState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flowKey(state.SessionID, state.CharacterID), data, flowTTL).Err()
}

func (c *flowCache) Get(ctx context.Context, sessionID string, characterID int) (*model.FlowState, error) {
	data, err := c.client.Get(ctx, flowKey(sessionID, characterID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.FlowState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *flowCache) Delete(ctx context.Context, sessionID string, characterID int) error {
	return c.client.Del(ctx, flowKey(sessionID, characterID)).Err()
}
