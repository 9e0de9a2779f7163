package media

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		attachments []Attachment
		expected    []string
	}{
		{
			name:        "empty input",
			attachments: nil,
			expected:    []string{},
		},
		{
			name: "photo direct url",
			attachments: []Attachment{
				{Type: "photo", URL: "https://example.com/p1.jpg"},
			},
			expected: []string{"https://example.com/p1.jpg"},
		},
		{
			name: "video highest bitrate, equal bitrates keep last",
			attachments: []Attachment{
				{Type: "video", Variants: []Variant{
					{BitRate: 100, URL: "u1"},
					{BitRate: 500, URL: "u2"},
					{BitRate: 500, URL: "u3"},
				}},
			},
			expected: []string{"u3"},
		},
		{
			name: "missing bitrate treated as zero",
			attachments: []Attachment{
				{Type: "video", Variants: []Variant{
					{URL: "playlist.m3u8"},
					{BitRate: 832000, URL: "high.mp4"},
				}},
			},
			expected: []string{"high.mp4"},
		},
		{
			name: "animated gif uses variants",
			attachments: []Attachment{
				{Type: "animated_gif", Variants: []Variant{
					{BitRate: 0, URL: "gif.mp4"},
				}},
			},
			expected: []string{"gif.mp4"},
		},
		{
			name: "output preserves input order",
			attachments: []Attachment{
				{Type: "photo", URL: "p1"},
				{Type: "video", Variants: []Variant{{BitRate: 1, URL: "v1"}}},
			},
			expected: []string{"p1", "v1"},
		},
		{
			name: "unknown type skipped",
			attachments: []Attachment{
				{Type: "photo", URL: "p1"},
				{Type: "hologram", URL: "h1"},
				{Type: "photo", URL: "p2"},
			},
			expected: []string{"p1", "p2"},
		},
		{
			name: "video with no variants emits nothing",
			attachments: []Attachment{
				{Type: "video"},
			},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.attachments)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Resolve() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	variants := []Variant{
		{BitRate: 500, URL: "u2"},
		{BitRate: 100, URL: "u1"},
	}
	Resolve([]Attachment{{Type: "video", Variants: variants}})

	if variants[0].URL != "u2" || variants[1].URL != "u1" {
		t.Errorf("Input variants were reordered: %v", variants)
	}
}
