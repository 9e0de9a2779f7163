package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/models"
)

// TweetRepository provides tweet-related database operations
type TweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

// Insert persists a new tweet, assigning the next sequence id inside one
// transaction. Duplicate tweet ids surface as ErrDuplicateKey via the unique
// key constraint, not a pre-check.
func (r *TweetRepository) Insert(ctx context.Context, tweet *models.Tweet) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq sql.NullInt64
		if err := tx.Model(&models.Tweet{}).Select("MAX(id)").Scan(&maxSeq).Error; err != nil {
			return err
		}
		tweet.SequenceID = maxSeq.Int64 + 1
		return tx.Create(tweet).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, tweet.TweetID)
		}
		return err
	}
	return nil
}

// LastForAuthor retrieves the tweet with the maximum tweet id for an author.
// Tweet ids are compared as text, matching how the feed issues them; returns
// (nil, nil) when the author has no tweets.
func (r *TweetRepository) LastForAuthor(ctx context.Context, author string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).
		Where("username = ?", author).
		Order("tweet_id DESC").
		First(&tweet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tweet, nil
}

// All retrieves every tweet in storage order
func (r *TweetRepository) All(ctx context.Context) ([]models.Tweet, error) {
	var tweets []models.Tweet
	if err := r.db.WithContext(ctx).Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

// Count returns the number of stored tweets
func (r *TweetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tweet{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RandomThread picks one conversation id uniformly at random from the
// distinct ids present and returns all tweets sharing it. The two-step shape
// weights every thread equally regardless of its size.
func (r *TweetRepository) RandomThread(ctx context.Context) ([]models.Tweet, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Distinct().
		Pluck("tweet_conversation_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrEmptyStore
	}

	conversationID := ids[rand.Intn(len(ids))]

	var tweets []models.Tweet
	if err := r.db.WithContext(ctx).
		Where("tweet_conversation_id = ?", conversationID).
		Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

// UpdateMediaCategory mutates exactly the media and category fields of the
// row matching tweetID
func (r *TweetRepository) UpdateMediaCategory(ctx context.Context, tweetID, media, category string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where("tweet_id = ?", tweetID).
		Updates(map[string]interface{}{
			"tweet_media": media,
			"tweet_type":  category,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, tweetID)
	}
	return nil
}
