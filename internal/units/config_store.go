// Package units loads the data an availability evaluation runs on: unit reservation
// configuration from redis and opening hours, bookings and blackouts from postgres.
package units

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/unit-availability/internal/snapshot"
)

// ErrUnitNotFound is returned when no configuration is stored for a unit.
var ErrUnitNotFound = errors.New("units: unit not found")

// ConfigStore persists unit reservation configuration.
type ConfigStore struct {
	redis *redis.Client
}

// NewConfigStore creates a redis backed configuration store.
func NewConfigStore(redisClient *redis.Client) *ConfigStore {
	if redisClient == nil {
		panic("units: redis client required")
	}
	return &ConfigStore{redis: redisClient}
}

func (s *ConfigStore) key(unitID string) string {
	return fmt.Sprintf("unit:config:%s", unitID)
}

// Get returns the stored configuration or ErrUnitNotFound.
func (s *ConfigStore) Get(ctx context.Context, unitID string) (*snapshot.RawUnitConfig, error) {
	data, err := s.redis.Get(ctx, s.key(unitID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("units: get config: %w", err)
	}

	var cfg snapshot.RawUnitConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("units: unmarshal config: %w", err)
	}
	cfg.ID = unitID
	return &cfg, nil
}

// Set validates and saves cfg under cfg.ID.
func (s *ConfigStore) Set(ctx context.Context, cfg *snapshot.RawUnitConfig) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("units: set config: unit id required")
	}
	if _, err := snapshot.DecodeUnit(*cfg); err != nil {
		return fmt.Errorf("units: set config: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("units: marshal config: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(cfg.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("units: set config: %w", err)
	}
	return nil
}

// Delete removes the configuration of a unit. Deleting a missing unit is not an error.
func (s *ConfigStore) Delete(ctx context.Context, unitID string) error {
	if err := s.redis.Del(ctx, s.key(unitID)).Err(); err != nil {
		return fmt.Errorf("units: delete config: %w", err)
	}
	return nil
}
