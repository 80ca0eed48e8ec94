package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spacesedan/subsight/internal/models"
)

// StorePattern appends a learned pattern and returns its new id. Confidence
// doubles as the utility score, matching the stored-row shape the
// recommendation engine reads.
func (s *Store) StorePattern(ctx context.Context, subreddit, patternType string, data models.PatternData, confidence float64) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("[Store] Failed to encode pattern data: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO learned_patterns (
			subreddit, pattern_type, pattern_data, confidence,
			utility_score, last_updated
		) VALUES (?, ?, ?, ?, ?, ?)`,
		subreddit, patternType, string(payload), confidence, confidence, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("[Store] Failed to store pattern for r/%s: %w", subreddit, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("[Store] Failed to read pattern id: %w", err)
	}
	return id, nil
}

// GetPatterns returns a subreddit's learned patterns ordered by confidence
// descending; ties keep insertion order.
func (s *Store) GetPatterns(ctx context.Context, subreddit string) ([]models.LearnedPattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_id, pattern_type, pattern_data, confidence,
		       utility_score, last_updated
		FROM learned_patterns
		WHERE subreddit = ?
		ORDER BY confidence DESC, pattern_id ASC`, subreddit)
	if err != nil {
		return nil, fmt.Errorf("[Store] Failed to query patterns for r/%s: %w", subreddit, err)
	}
	defer rows.Close()

	patterns := []models.LearnedPattern{}
	for rows.Next() {
		var (
			p       models.LearnedPattern
			payload string
			updated int64
		)
		if err := rows.Scan(&p.PatternID, &p.PatternType, &payload, &p.Confidence, &p.Utility, &updated); err != nil {
			return nil, fmt.Errorf("[Store] Failed to scan pattern row: %w", err)
		}
		p.Subreddit = subreddit
		p.LastUpdated = time.Unix(updated, 0)
		if err := json.Unmarshal([]byte(payload), &p.Data); err != nil {
			return nil, fmt.Errorf("[Store] Failed to decode pattern data: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Store] Pattern iteration failed: %w", err)
	}

	return patterns, nil
}
