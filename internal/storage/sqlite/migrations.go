package sqlite

const schema = `
-- Geolocation cache: one row per looked-up address
CREATE TABLE IF NOT EXISTS locations (
    address TEXT PRIMARY KEY,
    country TEXT,
    region TEXT,
    city TEXT,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Application settings
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Defaults used when flags are not given
INSERT OR IGNORE INTO settings (key, value) VALUES ('ping_count', '10');
INSERT OR IGNORE INTO settings (key, value) VALUES ('trace_destinations', '5');
`

func runMigrations(d *DB) error {
	_, err := d.db.Exec(schema)
	return err
}
