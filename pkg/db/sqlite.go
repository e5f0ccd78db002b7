package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// OpenLegacyCatalog opens the embedded catalog database file read-only.
// The file is produced by the old storefront and is never written here.
func OpenLegacyCatalog(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("legacy catalog path cannot be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy catalog file not accessible: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy catalog: %w", err)
	}

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("legacy catalog ping failed: %w", err)
	}

	return db, nil
}
