package twitter

import (
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/media"
)

// TweetDetail is the fully hydrated remote state of one tweet
type TweetDetail struct {
	ID             string
	Author         string
	Text           string
	ConversationID string
	CreatedAt      string
	Attachments    []media.Attachment
}

// userResponse is the /2/users/by/username/:handle payload
type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

// tweetResponse is the /2/tweets/:id payload with media and author expansions
type tweetResponse struct {
	Data struct {
		ID             string `json:"id"`
		Text           string `json:"text"`
		ConversationID string `json:"conversation_id"`
		CreatedAt      string `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Media []media.Attachment `json:"media"`
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Errors []apiError `json:"errors"`
}

// timelineResponse is one /2/users/:id/tweets page
type timelineResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
