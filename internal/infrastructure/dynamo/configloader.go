package dynamo

import (
	"context"

	"github.com/vanity-address-api/internal/domain"
)

// ConfigLoader bundles the two configuration tables behind the bulk-read
// interface the origin cache expects.
type ConfigLoader struct {
	origins *OriginRepo
	keys    *APIKeyRepo
}

func NewConfigLoader(origins *OriginRepo, keys *APIKeyRepo) *ConfigLoader {
	return &ConfigLoader{origins: origins, keys: keys}
}

func (l *ConfigLoader) AllOrigins(ctx context.Context) ([]domain.OriginConfig, error) {
	return l.origins.All(ctx)
}

func (l *ConfigLoader) AllApplicationKeys(ctx context.Context) ([]domain.ApplicationKey, error) {
	return l.keys.All(ctx)
}
