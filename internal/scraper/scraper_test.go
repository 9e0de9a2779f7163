package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/classifier"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/db"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/media"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/models"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/twitter"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/config"
)

const testWatchlist = `techguru:
  - category_regex: "golang|\\bgo\\b"
    category_name: "Go"
  - category_regex: "database"
    category_name: "Databases"
`

// fakeFeed serves canned tweets. Timeline ids are yielded in slice order;
// sinceID filters to strictly newer ids by string comparison, matching how
// the real feed treats the cursor.
type fakeFeed struct {
	users    map[string]string
	tweets   map[string]*twitter.TweetDetail
	timeline []string
	failIDs  map[string]bool
}

func (f *fakeFeed) LookupUser(ctx context.Context, handle string) (string, error) {
	id, ok := f.users[handle]
	if !ok {
		return "", fmt.Errorf("%w: no such user", twitter.ErrRemoteUnavailable)
	}
	return id, nil
}

func (f *fakeFeed) GetTweet(ctx context.Context, id string) (*twitter.TweetDetail, error) {
	if f.failIDs[id] {
		return nil, fmt.Errorf("%w: fetch failed", twitter.ErrRemoteUnavailable)
	}
	detail, ok := f.tweets[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such tweet", twitter.ErrRemoteUnavailable)
	}
	return detail, nil
}

func (f *fakeFeed) UserTweets(ctx context.Context, userID, sinceID string, yield func(id string) error) error {
	for _, id := range f.timeline {
		if sinceID != "" && id <= sinceID {
			continue
		}
		if err := yield(id); err != nil {
			if errors.Is(err, twitter.ErrStopPagination) {
				return nil
			}
			return err
		}
	}
	return nil
}

func tweetDetail(id, author, text string) *twitter.TweetDetail {
	return &twitter.TweetDetail{
		ID:             id,
		Author:         author,
		Text:           text,
		ConversationID: "c" + id,
		CreatedAt:      "2023-01-15T10:00:00.000Z",
	}
}

func testEngine(t *testing.T, feed Feed) (*Engine, *db.TweetRepository) {
	t.Helper()

	database, err := db.New(&config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "tweets.db"),
	}, "ERROR")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cls, err := classifier.Parse([]byte(testWatchlist))
	if err != nil {
		t.Fatalf("Failed to parse watchlist: %v", err)
	}

	repo := db.NewTweetRepository(database.DB)
	engine := New(feed, repo, cls, nil, &config.TwitterConfig{PageSize: 100, MaxTweets: 3200})
	return engine, repo
}

func TestSyncAuthorBootstrap(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"5": tweetDetail("5", "techguru", "learning golang"),
			"6": tweetDetail("6", "techguru", "database indexes explained"),
			"7": tweetDetail("7", "techguru", "coffee time"),
		},
		timeline: []string{"5", "6", "7"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("SyncAuthor failed: %v", err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 tweets, got %d", len(all))
	}

	categories := map[string]string{}
	for _, tweet := range all {
		categories[tweet.TweetID] = tweet.Category
	}
	if categories["5"] != "Go" || categories["6"] != "Databases" || categories["7"] != "Others" {
		t.Errorf("Unexpected categories: %v", categories)
	}
}

func TestSyncAuthorResume(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"6": tweetDetail("6", "techguru", "old"),
			"7": tweetDetail("7", "techguru", "old"),
			"8": tweetDetail("8", "techguru", "fresh golang tips"),
		},
		timeline: []string{"6", "7", "8"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	// Store already holds 5, 6, 7
	for _, id := range []string{"5", "6", "7"} {
		tweet := &models.Tweet{
			Author:         "techguru",
			TweetID:        id,
			Text:           "old",
			Media:          `[]`,
			ConversationID: "c" + id,
			Category:       "Others",
			CreatedAt:      "2023-01-01T00:00:00.000Z",
		}
		if err := repo.Insert(ctx, tweet); err != nil {
			t.Fatalf("Seed insert failed: %v", err)
		}
	}

	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("SyncAuthor failed: %v", err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 tweets after resume, got %d", len(all))
	}

	last, err := repo.LastForAuthor(ctx, "techguru")
	if err != nil {
		t.Fatalf("LastForAuthor failed: %v", err)
	}
	if last.TweetID != "8" || last.Category != "Go" {
		t.Errorf("Unexpected last tweet: %+v", last)
	}
}

func TestSyncAuthorNoNewTweets(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"5": tweetDetail("5", "techguru", "golang"),
		},
		timeline: []string{"5"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}
	// Second run finds nothing newer and must complete as a no-op
	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("No-op sync failed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tweet, got %d", count)
	}
}

func TestSyncAuthorUnknownAuthorAborts(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"5": tweetDetail("5", "techguru", "golang"),
			"6": tweetDetail("6", "stranger", "not configured"),
		},
		timeline: []string{"5", "6"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	err := engine.SyncAuthor(ctx, "techguru")
	if !errors.Is(err, classifier.ErrUnknownAuthor) {
		t.Fatalf("Expected ErrUnknownAuthor, got: %v", err)
	}

	// The insert before the failure must be preserved
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tweet preserved, got %d", count)
	}
}

func TestSyncAuthorCap(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"1": tweetDetail("1", "techguru", "a"),
			"2": tweetDetail("2", "techguru", "b"),
			"3": tweetDetail("3", "techguru", "c"),
		},
		timeline: []string{"1", "2", "3"},
	}
	engine, repo := testEngine(t, feed)
	engine.maxTweets = 2
	ctx := context.Background()

	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("SyncAuthor failed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected cap of 2 tweets, got %d", count)
	}
}

func TestSyncAllContinuesAfterFailure(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"5": tweetDetail("5", "techguru", "golang tips"),
		},
		timeline: []string{"5"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	// "ghost" cannot be resolved; "techguru" after it must still sync
	if err := engine.SyncAll(ctx, []string{"ghost", "techguru"}); err != nil {
		t.Fatalf("SyncAll must succeed when at least one author syncs: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tweet from the surviving author, got %d", count)
	}
}

func TestSyncAllFailsWhenNothingSucceeds(t *testing.T) {
	feed := &fakeFeed{users: map[string]string{}}
	engine, _ := testEngine(t, feed)

	err := engine.SyncAll(context.Background(), []string{"ghost", "phantom"})
	if err == nil {
		t.Fatal("Expected an error when every author sync fails")
	}
}

func TestSyncAllEmptyList(t *testing.T) {
	feed := &fakeFeed{users: map[string]string{}}
	engine, _ := testEngine(t, feed)

	if err := engine.SyncAll(context.Background(), nil); err != nil {
		t.Fatalf("SyncAll on an empty list must be a no-op: %v", err)
	}
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	feed := &fakeFeed{
		users: map[string]string{"techguru": "1000"},
		tweets: map[string]*twitter.TweetDetail{
			"5": tweetDetail("5", "techguru", "now about golang"),
			"7": tweetDetail("7", "techguru", "now about database tuning"),
		},
		failIDs: map[string]bool{"6": true},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	for _, id := range []string{"5", "6", "7"} {
		tweet := &models.Tweet{
			Author:         "techguru",
			TweetID:        id,
			Text:           "old",
			Media:          `[]`,
			ConversationID: "c" + id,
			Category:       "Others",
			CreatedAt:      "2023-01-01T00:00:00.000Z",
		}
		if err := repo.Insert(ctx, tweet); err != nil {
			t.Fatalf("Seed insert failed: %v", err)
		}
	}

	if err := engine.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll must not fail on per-item errors: %v", err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	categories := map[string]string{}
	for _, tweet := range all {
		categories[tweet.TweetID] = tweet.Category
	}
	if categories["5"] != "Go" {
		t.Errorf("Tweet 5 should be refreshed to Go, got %s", categories["5"])
	}
	if categories["6"] != "Others" {
		t.Errorf("Tweet 6 should be untouched, got %s", categories["6"])
	}
	if categories["7"] != "Databases" {
		t.Errorf("Tweet 7 should be refreshed to Databases, got %s", categories["7"])
	}
}

func TestSyncAuthorMediaResolution(t *testing.T) {
	detail := tweetDetail("5", "techguru", "golang demo")
	detail.Attachments = []media.Attachment{
		{Type: "photo", URL: "https://example.com/p1.jpg"},
		{Type: "video", Variants: []media.Variant{
			{BitRate: 100, URL: "low.mp4"},
			{BitRate: 900, URL: "high.mp4"},
		}},
	}
	feed := &fakeFeed{
		users:    map[string]string{"techguru": "1000"},
		tweets:   map[string]*twitter.TweetDetail{"5": detail},
		timeline: []string{"5"},
	}
	engine, repo := testEngine(t, feed)
	ctx := context.Background()

	if err := engine.SyncAuthor(ctx, "techguru"); err != nil {
		t.Fatalf("SyncAuthor failed: %v", err)
	}

	last, err := repo.LastForAuthor(ctx, "techguru")
	if err != nil {
		t.Fatalf("LastForAuthor failed: %v", err)
	}
	urls := last.MediaURLs()
	if len(urls) != 2 || urls[0] != "https://example.com/p1.jpg" || urls[1] != "high.mp4" {
		t.Errorf("Unexpected resolved media: %v", urls)
	}
}
