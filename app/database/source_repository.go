package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

// SourceRepositoryImpl handles database operations for discovery sources
type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

func (r *SourceRepositoryImpl) UpsertSource(name, url string) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (name, url)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = NOW()
	`, name, url)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

func (r *SourceRepositoryImpl) GetSource(name string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT name, url, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = $1
	`, name).Scan(
		&source.Name, &source.URL, &source.LastFetchedAt, &source.NextFetchAt,
		&source.CreatedAt, &source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func (r *SourceRepositoryImpl) UpdateNextFetch(name string, lastFetched, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = $2, next_fetch_at = $3, updated_at = NOW()
		WHERE name = $1
	`, name, lastFetched, nextFetch)

	if err != nil {
		return fmt.Errorf("failed to update next fetch time: %w", err)
	}

	return nil
}
