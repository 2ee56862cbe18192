package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS fan_telemetry (
            timestamp INTEGER PRIMARY KEY,
            host TEXT,
            temperature REAL,
            desired_duty INTEGER,
            last_duty INTEGER,
            actuated INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
