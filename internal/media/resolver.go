package media

import "sort"

// Attachment types as tagged by the feed
const (
	TypePhoto       = "photo"
	TypeVideo       = "video"
	TypeAnimatedGIF = "animated_gif"
)

// Variant is one encoding of a video or gif attachment
type Variant struct {
	BitRate int64  `json:"bit_rate"`
	URL     string `json:"url"`
}

// Attachment is one media descriptor attached to a tweet
type Attachment struct {
	Type     string    `json:"type"`
	URL      string    `json:"url"`
	Variants []Variant `json:"variants"`
}

// Resolve extracts one best URL per attachment: the direct URL for photos,
// the highest-bitrate variant for videos and gifs. Unknown types are skipped
// so new attachment kinds pass through harmlessly. Output order follows
// input order.
func Resolve(attachments []Attachment) []string {
	urls := make([]string, 0, len(attachments))

	for _, attachment := range attachments {
		switch attachment.Type {
		case TypePhoto:
			urls = append(urls, attachment.URL)
		case TypeVideo, TypeAnimatedGIF:
			if url, ok := bestVariant(attachment.Variants); ok {
				urls = append(urls, url)
			}
		}
	}

	return urls
}

// bestVariant returns the URL of the highest-bitrate variant. The sort is
// stable and ascending, so among equal bitrates the last original entry
// wins, matching how the feed orders fallback encodings.
func bestVariant(variants []Variant) (string, bool) {
	if len(variants) == 0 {
		return "", false
	}

	sorted := make([]Variant, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BitRate < sorted[j].BitRate
	})

	return sorted[len(sorted)-1].URL, true
}
