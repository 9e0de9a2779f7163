package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/config"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/logging"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/telemetry"
)

var (
	// ErrRemoteUnavailable wraps feed and network failures
	ErrRemoteUnavailable = errors.New("remote feed unavailable")

	// ErrStopPagination signals a clean early stop from a timeline yield
	// callback; UserTweets swallows it and returns nil
	ErrStopPagination = errors.New("stop pagination")
)

// Client talks to the Twitter API v2. Rate limits are honored by blocking
// until the window resets rather than failing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bearer     string
	pageSize   int
	maxTweets  int
	logger     *zap.Logger
}

// New creates a new Twitter client
func New(cfg *config.TwitterConfig) (*Client, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token is required")
	}

	logger := logging.WithComponent("twitter-client")
	logger.Info("Twitter client initialized", zap.String("url", cfg.BaseURL))

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		bearer:     cfg.BearerToken,
		pageSize:   cfg.PageSize,
		maxTweets:  cfg.MaxTweets,
		logger:     logger,
	}, nil
}

// LookupUser resolves a handle to the feed's numeric user id
func (c *Client) LookupUser(ctx context.Context, handle string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.lookup_user")
	defer span.End()

	body, err := c.get(ctx, "/2/users/by/username/"+url.PathEscape(handle), nil)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", handle, err)
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal user response: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("%w: user %s not found: %s", ErrRemoteUnavailable, handle, firstError(resp.Errors))
	}

	return resp.Data.ID, nil
}

// GetTweet fetches the current remote state of one tweet, including its
// author handle and media attachments
func (c *Client) GetTweet(ctx context.Context, id string) (*TweetDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.get_tweet")
	defer span.End()

	params := url.Values{}
	params.Set("tweet.fields", "conversation_id,created_at,attachments")
	params.Set("expansions", "attachments.media_keys,author_id")
	params.Set("media.fields", "url,variants")
	params.Set("user.fields", "username")

	body, err := c.get(ctx, "/2/tweets/"+url.PathEscape(id), params)
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet %s: %w", id, err)
	}

	var resp tweetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tweet response: %w", err)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("%w: tweet %s not found: %s", ErrRemoteUnavailable, id, firstError(resp.Errors))
	}
	if len(resp.Includes.Users) == 0 {
		return nil, fmt.Errorf("%w: tweet %s has no author expansion", ErrRemoteUnavailable, id)
	}

	return &TweetDetail{
		ID:             resp.Data.ID,
		Author:         resp.Includes.Users[0].Username,
		Text:           resp.Data.Text,
		ConversationID: resp.Data.ConversationID,
		CreatedAt:      resp.Data.CreatedAt,
		Attachments:    resp.Includes.Media,
	}, nil
}

// UserTweets pages through a user's timeline, excluding replies and
// retweets, and yields tweet ids in the order the feed returns them. When
// sinceID is non-empty only newer tweets are requested. Pagination stops at
// the feed's 3200-tweet ceiling, on an exhausted feed, or when yield returns
// an error (ErrStopPagination stops cleanly).
func (c *Client) UserTweets(ctx context.Context, userID, sinceID string, yield func(id string) error) error {
	ctx, span := telemetry.StartSpan(ctx, "twitter.user_tweets")
	defer span.End()

	yielded := 0
	nextToken := ""

	for {
		params := url.Values{}
		params.Set("max_results", strconv.Itoa(c.pageSize))
		params.Set("exclude", "replies,retweets")
		if sinceID != "" {
			params.Set("since_id", sinceID)
		}
		if nextToken != "" {
			params.Set("pagination_token", nextToken)
		}

		body, err := c.get(ctx, "/2/users/"+url.PathEscape(userID)+"/tweets", params)
		if err != nil {
			return fmt.Errorf("failed to get timeline page: %w", err)
		}

		var resp timelineResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to unmarshal timeline response: %w", err)
		}

		for _, tweet := range resp.Data {
			if err := yield(tweet.ID); err != nil {
				if errors.Is(err, ErrStopPagination) {
					return nil
				}
				return err
			}
			yielded++
			if yielded >= c.maxTweets {
				c.logger.Info("Timeline cap reached", zap.Int("tweets", yielded))
				return nil
			}
		}

		if resp.Meta.NextToken == "" {
			return nil
		}
		nextToken = resp.Meta.NextToken
	}
}

// get performs an authenticated GET, blocking through rate-limit windows
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.bearer)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			reset := resp.Header.Get("x-rate-limit-reset")
			resp.Body.Close()
			if err := c.waitForReset(ctx, reset); err != nil {
				return nil, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteUnavailable, resp.StatusCode, string(body))
		}

		return body, nil
	}
}

// waitForReset blocks until the rate-limit window given by the reset header
// (unix seconds) has passed. A missing or malformed header falls back to a
// one-minute wait.
func (c *Client) waitForReset(ctx context.Context, resetHeader string) error {
	delay := time.Minute
	if epoch, err := strconv.ParseInt(resetHeader, 10, 64); err == nil {
		until := time.Until(time.Unix(epoch, 0)) + time.Second
		if until > 0 {
			delay = until
		} else {
			delay = time.Second
		}
	}

	c.logger.Warn("Rate limited, waiting for reset", zap.Duration("delay", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func firstError(errs []apiError) string {
	if len(errs) == 0 {
		return "no detail"
	}
	return errs[0].Title + ": " + errs[0].Detail
}
