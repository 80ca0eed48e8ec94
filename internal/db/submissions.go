package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spacesedan/subsight/internal/models"
)

// HasProcessed reports whether a submission id is already stored. Primary
// key lookup, so this stays O(1) regardless of table size.
func (s *Store) HasProcessed(ctx context.Context, submissionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM submissions WHERE submission_id = ?", submissionID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("[Store] Dedup lookup failed: %w", err)
	}
	return true, nil
}

// StoreSubmission inserts the record if the id is unseen. The conflict
// clause makes check-and-insert atomic: under concurrent writers exactly one
// caller gets inserted=true and the table never holds two rows for one id.
func (s *Store) StoreSubmission(ctx context.Context, rec models.SubmissionRecord) (bool, error) {
	topics, err := json.Marshal(rec.Topics)
	if err != nil {
		return false, fmt.Errorf("[Store] Failed to encode topics: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			submission_id, title, content, author, subreddit,
			created_utc, processed_at, sentiment, topics,
			engagement_score, utility_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(submission_id) DO NOTHING`,
		rec.SubmissionID, rec.Title, rec.Content, rec.Author, rec.Subreddit,
		rec.CreatedUTC, rec.ProcessedAt.Unix(), rec.Sentiment, string(topics),
		rec.Engagement, rec.Utility,
	)
	if err != nil {
		return false, fmt.Errorf("[Store] Failed to store submission %s: %w", rec.SubmissionID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("[Store] Failed to read insert result: %w", err)
	}
	return rows > 0, nil
}
