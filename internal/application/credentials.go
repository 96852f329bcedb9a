package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
)

// InsightAPIKeyRef is the secret store key holding the AI gateway key.
const InsightAPIKeyRef = "insights-api-key"

var ErrEmptySecret = errors.New("secret value is empty")

type CredentialService struct {
	store ports.SecretStore
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store}
}

func (s *CredentialService) SetAPIKey(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptySecret
	}

	previous, err := s.store.Get(ctx, InsightAPIKeyRef)
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("read current api key: %w", err)
	}

	if err := s.store.Put(ctx, InsightAPIKeyRef, value); err != nil {
		if previous == "" {
			return fmt.Errorf("store api key: %w", err)
		}
		if restoreErr := s.store.Put(ctx, InsightAPIKeyRef, previous); restoreErr != nil {
			return fmt.Errorf("store api key and restore previous key: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("store api key: %w", err)
	}

	return nil
}

func (s *CredentialService) RemoveAPIKey(ctx context.Context) error {
	if err := s.store.Delete(ctx, InsightAPIKeyRef); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}

	return nil
}

// APIKey returns the stored key, or domain.ErrSecretNotFound.
func (s *CredentialService) APIKey(ctx context.Context) (string, error) {
	value, err := s.store.Get(ctx, InsightAPIKeyRef)
	if err != nil {
		return "", fmt.Errorf("get api key: %w", err)
	}

	return value, nil
}

// ResolveAPIKey prefers an explicitly configured key and falls back to the
// secret store. An empty result with a nil error means no key is set.
func (s *CredentialService) ResolveAPIKey(ctx context.Context, configured string) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, nil
	}

	key, err := s.APIKey(ctx)
	if errors.Is(err, domain.ErrSecretNotFound) {
		return "", nil
	}

	return key, err
}
