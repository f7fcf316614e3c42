package database

import (
	"fmt"
)

var _ StatsRepository = (*StatsRepositoryImpl)(nil)

// StatsRepositoryImpl serves the read-only analytics queries. A post counts
// as a recorded session when its URL matches session-<digits>; journal and
// blog tagged posts are kept out of the audio-runtime numbers.
type StatsRepositoryImpl struct {
	db *DB
}

func NewStatsRepository(db *DB) *StatsRepositoryImpl {
	return &StatsRepositoryImpl{db: db}
}

func (r *StatsRepositoryImpl) GetSummary() (*StatsSummary, error) {
	var summary StatsSummary
	err := r.db.QueryRow(`
		WITH excluded AS (
		  SELECT url
		  FROM posts
		  WHERE EXISTS (
		    SELECT 1
		    FROM unnest(COALESCE(tags, ARRAY[]::text[])) t(tag)
		    WHERE LOWER(t.tag) IN ('journal', 'journals', 'blog', 'blogs')
		  )
		)
		SELECT
		  COUNT(*)::int AS total_posts,

		  COUNT(*) FILTER (
		    WHERE url NOT IN (SELECT url FROM excluded)
		      AND duration_seconds IS NOT NULL
		  )::int AS with_duration,

		  COUNT(*) FILTER (
		    WHERE url NOT IN (SELECT url FROM excluded)
		      AND duration_seconds IS NULL
		  )::int AS missing_duration,

		  COALESCE(SUM(duration_seconds) FILTER (
		    WHERE url NOT IN (SELECT url FROM excluded)
		  ), 0)::bigint AS total_seconds_all,

		  COALESCE(SUM(duration_seconds) FILTER (
		    WHERE url ~* 'session-[0-9]+'
		  ), 0)::bigint AS total_seconds_sessions,

		  COALESCE(SUM(duration_seconds) FILTER (
		    WHERE url NOT IN (SELECT url FROM excluded)
		  ) / 3600.0, 0)::float AS total_hours_all,

		  COALESCE(SUM(duration_seconds) FILTER (
		    WHERE url ~* 'session-[0-9]+'
		  ) / 3600.0, 0)::float AS total_hours_sessions
		FROM posts
	`).Scan(
		&summary.TotalPosts, &summary.WithDuration, &summary.MissingDuration,
		&summary.TotalSecondsAll, &summary.TotalSecondsSessions,
		&summary.TotalHoursAll, &summary.TotalHoursSessions,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &summary, nil
}

func (r *StatsRepositoryImpl) TopGroupsByHours(limit int) ([]GroupHours, error) {
	rows, err := r.db.Query(`
		SELECT
		  COALESCE(group_name, '(unknown)') AS group_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		GROUP BY 1
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top groups: %w", err)
	}
	defer rows.Close()

	var results []GroupHours
	for rows.Next() {
		var row GroupHours
		if err := rows.Scan(&row.GroupName, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) TopAuthorsByHours(limit int) ([]AuthorHours, error) {
	rows, err := r.db.Query(`
		SELECT
		  COALESCE(author, '(unknown)') AS author,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		GROUP BY 1
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top authors: %w", err)
	}
	defer rows.Close()

	var results []AuthorHours
	for rows.Next() {
		var row AuthorHours
		if err := rows.Scan(&row.Author, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) TopSystemsByHours(limit int) ([]SystemHours, error) {
	return r.querySystems(`
		SELECT
		  COALESCE(system_name, '(unknown)') AS system_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		GROUP BY 1
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
}

func (r *StatsRepositoryImpl) TopSystemsByCount(limit int) ([]SystemHours, error) {
	return r.querySystems(`
		SELECT
		  COALESCE(system_name, '(unknown)') AS system_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		GROUP BY 1
		ORDER BY sessions DESC
		LIMIT $1
	`, limit)
}

func (r *StatsRepositoryImpl) querySystems(query string, limit int) ([]SystemHours, error) {
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top systems: %w", err)
	}
	defer rows.Close()

	var results []SystemHours
	for rows.Next() {
		var row SystemHours
		if err := rows.Scan(&row.SystemName, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan system row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) TopCampaignsByHours(limit int) ([]CampaignHours, error) {
	rows, err := r.db.Query(`
		SELECT
		  campaign_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		  AND campaign_name IS NOT NULL
		  AND campaign_name <> ''
		GROUP BY 1
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top campaigns: %w", err)
	}
	defer rows.Close()

	var results []CampaignHours
	for rows.Next() {
		var row CampaignHours
		if err := rows.Scan(&row.CampaignName, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) TopGroupSystemPairs(limit int) ([]GroupSystemHours, error) {
	rows, err := r.db.Query(`
		SELECT
		  COALESCE(group_name, '(unknown)') AS group_name,
		  COALESCE(system_name, '(unknown)') AS system_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		GROUP BY 1, 2
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get group/system pairs: %w", err)
	}
	defer rows.Close()

	var results []GroupSystemHours
	for rows.Next() {
		var row GroupSystemHours
		if err := rows.Scan(&row.GroupName, &row.SystemName, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan group/system row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group/system rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) TopGroupCampaignPairs(limit int) ([]GroupCampaignHours, error) {
	rows, err := r.db.Query(`
		SELECT
		  COALESCE(group_name, '(unknown)') AS group_name,
		  campaign_name,
		  (SUM(duration_seconds) / 3600.0)::float AS hours,
		  COUNT(*)::int AS sessions
		FROM posts
		WHERE duration_seconds IS NOT NULL
		  AND url ~* 'session-[0-9]+'
		  AND campaign_name IS NOT NULL
		  AND campaign_name <> ''
		GROUP BY 1, 2
		ORDER BY hours DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get group/campaign pairs: %w", err)
	}
	defer rows.Close()

	var results []GroupCampaignHours
	for rows.Next() {
		var row GroupCampaignHours
		if err := rows.Scan(&row.GroupName, &row.CampaignName, &row.Hours, &row.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan group/campaign row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group/campaign rows: %w", err)
	}

	return results, nil
}

func (r *StatsRepositoryImpl) MissingDurationPosts(limit int) ([]MissingDurationPost, error) {
	rows, err := r.db.Query(`
		SELECT url, COALESCE(title, ''), COALESCE(group_name, '')
		FROM posts
		WHERE duration_seconds IS NULL
		  AND url ~* 'session-[0-9]+'
		ORDER BY lastmod DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get missing duration posts: %w", err)
	}
	defer rows.Close()

	var results []MissingDurationPost
	for rows.Next() {
		var row MissingDurationPost
		if err := rows.Scan(&row.URL, &row.Title, &row.GroupName); err != nil {
			return nil, fmt.Errorf("failed to scan missing duration row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing duration rows: %w", err)
	}

	return results, nil
}
