package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pathprobe/internal/storage/models"
	pkgerrors "pathprobe/pkg/errors"
)

// DB implements the Storage interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &DB{db: db}

	if err := runMigrations(storage); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// ─── Location cache operations ──────────────────────────────────────────────

func (d *DB) GetLocation(ctx context.Context, address string) (*models.Location, error) {
	query := `
		SELECT address, country, region, city, lat, lon, fetched_at
		FROM locations WHERE address = ?
	`
	loc := &models.Location{}
	err := d.db.QueryRowContext(ctx, query, address).Scan(
		&loc.Address, &loc.Country, &loc.Region, &loc.City,
		&loc.Lat, &loc.Lon, &loc.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

func (d *DB) PutLocation(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (address, country, region, city, lat, lon, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			country = excluded.country,
			region = excluded.region,
			city = excluded.city,
			lat = excluded.lat,
			lon = excluded.lon,
			fetched_at = excluded.fetched_at
	`
	if loc.FetchedAt.IsZero() {
		loc.FetchedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx, query,
		loc.Address, loc.Country, loc.Region, loc.City,
		loc.Lat, loc.Lon, loc.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	return nil
}

func (d *DB) PruneLocations(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := d.db.ExecContext(ctx, `DELETE FROM locations WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune locations: %w", err)
	}
	return result.RowsAffected()
}

// ─── Settings operations ────────────────────────────────────────────────────

func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", pkgerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := d.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

func (d *DB) GetAllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
