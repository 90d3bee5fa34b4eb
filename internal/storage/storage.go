package storage

import (
	"context"
	"time"

	"pathprobe/internal/storage/models"
)

// Storage defines the interface for data persistence: the geolocation cache
// (so repeated runs don't re-query the rate-limited remote API) and the
// application settings table. Measurement results are deliberately not
// stored here; CSV snapshots per run are the only durable measurement
// artifact.
type Storage interface {
	// Location cache operations
	GetLocation(ctx context.Context, address string) (*models.Location, error)
	PutLocation(ctx context.Context, loc *models.Location) error
	PruneLocations(ctx context.Context, olderThan time.Duration) (int64, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetAllSettings(ctx context.Context) (map[string]string, error)

	// Close closes the storage connection
	Close() error
}
