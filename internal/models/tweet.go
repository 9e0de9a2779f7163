package models

import "encoding/json"

// Tweet represents one persisted tweet
type Tweet struct {
	SequenceID     int64  `gorm:"column:id;not null"`
	Author         string `gorm:"type:varchar(32);not null;index;column:username"`
	TweetID        string `gorm:"primaryKey;column:tweet_id"`
	Text           string `gorm:"column:tweet_text"`
	Media          string `gorm:"column:tweet_media"` // JSON-encoded list of resolved URLs
	ConversationID string `gorm:"index;column:tweet_conversation_id"`
	Category       string `gorm:"column:tweet_type"`
	CreatedAt      string `gorm:"column:created_at"` // ISO-8601 as supplied by the feed
}

// TableName specifies the table name for Tweet
func (Tweet) TableName() string {
	return "tweets"
}

// MediaURLs decodes the serialized media column
func (t *Tweet) MediaURLs() []string {
	if t.Media == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(t.Media), &urls); err != nil {
		return nil
	}
	return urls
}

// SetMediaURLs serializes media URLs into the media column
func (t *Tweet) SetMediaURLs(urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	t.Media = string(data)
	return nil
}

// EncodeMediaURLs serializes a URL list the way the media column stores it
func EncodeMediaURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// View is the JSON shape served by the export dump and the HTTP API
type View struct {
	SequenceID int64    `json:"sequence_id"`
	Author     string   `json:"author"`
	PostID     string   `json:"post_id"`
	Text       string   `json:"text"`
	Media      []string `json:"media"`
	ThreadID   string   `json:"thread_id"`
	Category   string   `json:"category"`
	CreatedAt  string   `json:"created_at"`
}

// View converts a stored tweet into its serving shape
func (t *Tweet) View() View {
	media := t.MediaURLs()
	if media == nil {
		media = []string{}
	}
	return View{
		SequenceID: t.SequenceID,
		Author:     t.Author,
		PostID:     t.TweetID,
		Text:       t.Text,
		Media:      media,
		ThreadID:   t.ConversationID,
		Category:   t.Category,
		CreatedAt:  t.CreatedAt,
	}
}
