package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/telemetry"
)

// ArchiveEntry is one record of a pre-fetched tweet export. Only the id is
// read; the full record is re-fetched from the feed at ingest time.
type ArchiveEntry struct {
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// LoadArchive reads an ordered tweet export from disk
func LoadArchive(path string) ([]ArchiveEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	var entries []ArchiveEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse archive: %w", err)
	}
	return entries, nil
}

// SyncAuthorFromArchive ingests an ordered offline export with the same
// merge semantics as a live sync. When the store already has tweets for the
// author, entries are skipped up to and including the one matching the last
// stored id; everything after it is ingested in archive order. If that id
// never appears, nothing is ingested rather than guessing a resume point.
func (e *Engine) SyncAuthorFromArchive(ctx context.Context, username string, entries []ArchiveEntry) error {
	ctx, span := telemetry.StartSpan(ctx, "scraper.sync_author_from_archive")
	defer span.End()

	last, err := e.repo.LastForAuthor(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load resume cursor for %s: %w", username, err)
	}

	skipping := last != nil
	inserted := 0

	for _, entry := range entries {
		id := entry.Data.ID.String()

		if skipping {
			if id == last.TweetID {
				skipping = false
			}
			continue
		}

		tweet, err := e.composeTweet(ctx, id)
		if err != nil {
			return fmt.Errorf("archive sync of %s stopped after %d tweets: %w", username, inserted, err)
		}
		if err := e.repo.Insert(ctx, tweet); err != nil {
			return fmt.Errorf("archive sync of %s stopped after %d tweets: %w", username, inserted, err)
		}
		inserted++
	}

	if skipping {
		e.logger.Warn("Last stored tweet id not found in archive, nothing ingested",
			zap.String("username", username),
			zap.String("last_tweet_id", last.TweetID),
			zap.Int("archive_entries", len(entries)))
	}

	e.logger.Info("Archive synced",
		zap.String("username", username),
		zap.Int("inserted", inserted))
	return nil
}
