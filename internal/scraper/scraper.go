package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/cache"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/classifier"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/db"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/media"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/models"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/twitter"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/config"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/logging"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/telemetry"
)

// Feed is the remote tweet source
type Feed interface {
	LookupUser(ctx context.Context, handle string) (string, error)
	GetTweet(ctx context.Context, id string) (*twitter.TweetDetail, error)
	UserTweets(ctx context.Context, userID, sinceID string, yield func(id string) error) error
}

// Engine merges remote tweets through the classifier and media resolver
// into the store
type Engine struct {
	feed       Feed
	repo       *db.TweetRepository
	classifier *classifier.Classifier
	cache      *cache.Cache
	maxTweets  int
	logger     *zap.Logger
}

// New creates a new sync engine
func New(feed Feed, repo *db.TweetRepository, cls *classifier.Classifier, userCache *cache.Cache, cfg *config.TwitterConfig) *Engine {
	return &Engine{
		feed:       feed,
		repo:       repo,
		classifier: cls,
		cache:      userCache,
		maxTweets:  cfg.MaxTweets,
		logger:     logging.WithComponent("scraper"),
	}
}

// SyncAuthor pulls everything newer than the author's last stored tweet.
// Each tweet is composed and inserted immediately, so a failure partway
// through keeps all prior inserts and the next run resumes after them.
// An empty feed is a clean no-op.
func (e *Engine) SyncAuthor(ctx context.Context, username string) error {
	ctx, span := telemetry.StartSpan(ctx, "scraper.sync_author")
	defer span.End()

	userID, err := e.lookupUser(ctx, username)
	if err != nil {
		return err
	}

	last, err := e.repo.LastForAuthor(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load resume cursor for %s: %w", username, err)
	}
	sinceID := ""
	if last != nil {
		sinceID = last.TweetID
	}

	e.logger.Info("Syncing author",
		zap.String("username", username),
		zap.String("since_id", sinceID))

	inserted := 0
	err = e.feed.UserTweets(ctx, userID, sinceID, func(id string) error {
		if inserted >= e.maxTweets {
			return twitter.ErrStopPagination
		}

		tweet, err := e.composeTweet(ctx, id)
		if err != nil {
			return err
		}
		if err := e.repo.Insert(ctx, tweet); err != nil {
			return err
		}
		inserted++
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync of %s stopped after %d tweets: %w", username, inserted, err)
	}

	e.logger.Info("Author synced",
		zap.String("username", username),
		zap.Int("inserted", inserted))
	return nil
}

// SyncAll runs SyncAuthor for every username in order. One author's failure
// is logged and the rest of the list still runs, but when every author fails
// the whole sync is reported as failed.
func (e *Engine) SyncAll(ctx context.Context, usernames []string) error {
	ctx, span := telemetry.StartSpan(ctx, "scraper.sync_all")
	defer span.End()

	failed := 0
	for _, username := range usernames {
		if err := e.SyncAuthor(ctx, username); err != nil {
			e.logger.Error("Author sync failed",
				zap.String("username", username),
				zap.Error(err))
			failed++
		}
	}

	if failed > 0 && failed == len(usernames) {
		return fmt.Errorf("all %d author syncs failed", failed)
	}
	return nil
}

// RefreshAll re-fetches every stored tweet and rewrites its media and
// category in place. Failures are isolated per tweet so one dead link or
// deleted tweet cannot abort the rest of a long batch.
func (e *Engine) RefreshAll(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "scraper.refresh_all")
	defer span.End()

	tweets, err := e.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan store: %w", err)
	}

	refreshed, skipped := 0, 0
	for _, stored := range tweets {
		if err := e.refreshOne(ctx, stored.TweetID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			e.logger.Warn("Skipping tweet during refresh",
				zap.String("tweet_id", stored.TweetID),
				zap.Error(err))
			skipped++
			continue
		}
		refreshed++
	}

	e.logger.Info("Refresh complete",
		zap.Int("refreshed", refreshed),
		zap.Int("skipped", skipped))
	return nil
}

func (e *Engine) refreshOne(ctx context.Context, tweetID string) error {
	detail, err := e.feed.GetTweet(ctx, tweetID)
	if err != nil {
		return err
	}

	category, err := e.classifier.Classify(detail.Author, detail.Text)
	if err != nil {
		return err
	}

	mediaJSON, err := models.EncodeMediaURLs(media.Resolve(detail.Attachments))
	if err != nil {
		return err
	}

	return e.repo.UpdateMediaCategory(ctx, tweetID, mediaJSON, category)
}

// composeTweet builds the full stored record for one tweet id: remote
// detail, resolved media, category
func (e *Engine) composeTweet(ctx context.Context, id string) (*models.Tweet, error) {
	detail, err := e.feed.GetTweet(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := e.classifier.Classify(detail.Author, detail.Text)
	if err != nil {
		return nil, err
	}

	tweet := &models.Tweet{
		Author:         detail.Author,
		TweetID:        detail.ID,
		Text:           detail.Text,
		ConversationID: detail.ConversationID,
		Category:       category,
		CreatedAt:      detail.CreatedAt,
	}
	if err := tweet.SetMediaURLs(media.Resolve(detail.Attachments)); err != nil {
		return nil, err
	}
	return tweet, nil
}

// lookupUser resolves a handle through the cache when enabled
func (e *Engine) lookupUser(ctx context.Context, username string) (string, error) {
	if id, err := e.cache.GetUserID(ctx, username); err == nil && id != "" {
		return id, nil
	}

	id, err := e.feed.LookupUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %s: %w", username, err)
	}

	if err := e.cache.SetUserID(ctx, username, id); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		e.logger.Warn("Failed to cache user id", zap.String("username", username), zap.Error(err))
	}
	return id, nil
}
