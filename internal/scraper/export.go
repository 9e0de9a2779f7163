package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/db"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/models"
)

// ExportDocument is the JSON dump shape
type ExportDocument struct {
	Metadata ExportMetadata `json:"metadata"`
	Tweets   []models.View  `json:"tweets"`
}

// ExportMetadata describes the dump
type ExportMetadata struct {
	Entries int `json:"entries"`
}

// BuildExport scans the whole store into the export document
func BuildExport(ctx context.Context, repo *db.TweetRepository) (*ExportDocument, error) {
	tweets, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan store: %w", err)
	}

	views := make([]models.View, 0, len(tweets))
	for i := range tweets {
		views = append(views, tweets[i].View())
	}

	return &ExportDocument{
		Metadata: ExportMetadata{Entries: len(views)},
		Tweets:   views,
	}, nil
}

// Export writes the full store as an indented JSON document
func Export(ctx context.Context, repo *db.TweetRepository, w io.Writer) error {
	doc, err := BuildExport(ctx, repo)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(doc)
}

// ExportToFile writes the JSON dump to path, creating parent directories
func ExportToFile(ctx context.Context, repo *db.TweetRepository, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	return Export(ctx, repo, f)
}
