package config

import (
	"context"
	"fmt"
	"os"
)

// SecretStore resolves secret values at startup. The environment-backed
// implementation is the default; a vault-backed one can be swapped in without
// touching callers.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, fallback string) string
}

// EnvironmentSecretStore reads secrets from process environment variables.
type EnvironmentSecretStore struct{}

func NewEnvironmentSecretStore() *EnvironmentSecretStore {
	return &EnvironmentSecretStore{}
}

func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("secret %s not set", key)
	}
	return value, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(ctx context.Context, key, fallback string) string {
	value, err := s.Get(ctx, key)
	if err != nil {
		return fallback
	}
	return value
}
