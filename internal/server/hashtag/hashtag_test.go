package hashtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"strips extension", "song.mp3", "song"},
		{"special characters become spaces", "artist-track_(official)!.mp3", "artist-track_ official"},
		{"collapses whitespace", "too   many    spaces.flac", "too many spaces"},
		{"keeps hyphens and underscores", "a-b_c.mp3", "a-b_c"},
		{"empty input", "", ""},
		{"only punctuation", "!!!.mp3", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.filename))
		})
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     []string
	}{
		{
			name:     "tags significant words",
			filename: "Midnight City Drive.mp3",
			want:     []string{"#midnight", "#city", "#drive"},
		},
		{
			name:     "drops stop words",
			filename: "The Sound of Silence (Official Video).mp3",
			want:     []string{"#sound", "#silence"},
		},
		{
			name:     "empty filename yields nothing",
			filename: "",
			want:     nil,
		},
		{
			name:     "all stop words yields nothing",
			filename: "the and or.mp3",
			want:     nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Generate(tc.filename))
		})
	}
}
