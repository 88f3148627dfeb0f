package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType selects which files a folder syncs.
type MediaType string

// Supported media types.
const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaAll   MediaType = "all"
)

var (
	photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	videoExtensions = map[string]bool{".mp4": true, ".avi": true, ".mkv": true, ".mov": true}
)

// ParseMediaType normalises a user supplied media type.
// Russian labels are accepted for compatibility with older settings files.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "фото":
		return MediaPhoto, nil
	case "video", "видео":
		return MediaVideo, nil
	case "all", "все", "":
		return MediaAll, nil
	default:
		return "", ErrInvalidInput
	}
}

// IsValid returns true if the media type is recognised.
func (m MediaType) IsValid() bool {
	switch m {
	case MediaPhoto, MediaVideo, MediaAll:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// Matches reports whether a file name has an extension of this media type.
func (m MediaType) Matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch m {
	case MediaPhoto:
		return photoExtensions[ext]
	case MediaVideo:
		return videoExtensions[ext]
	case MediaAll:
		return photoExtensions[ext] || videoExtensions[ext]
	default:
		return false
	}
}

// MediaItem is one file queued for upload.
type MediaItem struct {
	// FolderID is the folder the file belongs to.
	FolderID string

	// MediaType is the folder's media type at scan time.
	MediaType MediaType

	// Path is the absolute file path.
	Path string

	// Name is the base file name.
	Name string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file modification time.
	ModTime time.Time
}

// SentKey returns the ledger key for the item.
// A file counts as sent per folder and media type, so changing a folder's
// media type makes previously skipped files eligible again.
func (i MediaItem) SentKey() string {
	return SentKey(i.FolderID, i.MediaType, i.Name)
}

// SentKey builds a sent ledger key.
func SentKey(folderID string, mediaType MediaType, name string) string {
	return folderID + "_" + string(mediaType) + "_" + name
}

// UploadStep is the result of one uploader sub-step.
// Exactly one of Item and Done is set.
type UploadStep struct {
	Item *MediaItem
	Done bool
}
