package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		input    string
		expected MediaType
		wantErr  bool
	}{
		{"photo", MediaPhoto, false},
		{"Photo", MediaPhoto, false},
		{"фото", MediaPhoto, false},
		{"video", MediaVideo, false},
		{"Видео", MediaVideo, false},
		{"all", MediaAll, false},
		{"Все", MediaAll, false},
		{"", MediaAll, false},
		{" all ", MediaAll, false},
		{"audio", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMediaType(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMediaType_Matches(t *testing.T) {
	tests := []struct {
		name  string
		media MediaType
		file  string
		want  bool
	}{
		{"photo jpg", MediaPhoto, "a.jpg", true},
		{"photo upper case", MediaPhoto, "A.JPEG", true},
		{"photo gif", MediaPhoto, "a.gif", true},
		{"photo rejects video", MediaPhoto, "a.mp4", false},
		{"video mkv", MediaVideo, "clip.mkv", true},
		{"video rejects png", MediaVideo, "a.png", false},
		{"all accepts photo", MediaAll, "a.png", true},
		{"all accepts video", MediaAll, "a.mov", true},
		{"all rejects text", MediaAll, "notes.txt", false},
		{"no extension", MediaAll, "README", false},
		{"unknown type", MediaType("x"), "a.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.media.Matches(tt.file))
		})
	}
}

func TestMediaItem_SentKey(t *testing.T) {
	item := MediaItem{FolderID: "f1", MediaType: MediaPhoto, Name: "img.jpg"}
	assert.Equal(t, "f1_photo_img.jpg", item.SentKey())
	assert.Equal(t, item.SentKey(), SentKey("f1", MediaPhoto, "img.jpg"))
	assert.NotEqual(t, item.SentKey(), SentKey("f1", MediaAll, "img.jpg"))
}
