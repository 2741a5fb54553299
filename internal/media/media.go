// Package media extracts optional audio/video tag metadata from a
// leading byte range of an object, used by `scan --extract-metadata`
// (spec.md §1/§3/§7).
package media

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/dhowden/tag"

	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/store"
)

// RangeBytes is the size of the leading byte range fetched for tag
// extraction — large enough for ID3v2/Vorbis/MP4 atom headers without
// downloading the whole object.
const RangeBytes = 256 * 1024

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".m4a": true,
	".aac": true, ".wma": true, ".opus": true, ".wav": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true, ".webm": true,
}

// IsMediaFile reports whether key's extension is a recognized audio or
// video format.
func IsMediaFile(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	return audioExtensions[ext] || videoExtensions[ext]
}

// ExtractMetadata downloads the first RangeBytes of key via a ranged GET
// and reads its tags. Any failure — the GET, or an unparseable tag
// header — is swallowed into a MediaMetadata with every optional field
// nil, per spec.md §7's decoding-error policy; this function never
// returns an error.
func ExtractMetadata(ctx context.Context, client objectstore.Client, bucket, key string) store.MediaMetadata {
	result := store.MediaMetadata{Key: key}

	data, err := client.GetObjectRange(ctx, bucket, key, 0, RangeBytes-1)
	if err != nil {
		return result
	}

	meta, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return result
	}

	if artist := firstNonEmpty(meta.Artist(), meta.AlbumArtist()); artist != "" {
		result.Artist = &artist
	}

	if album := meta.Album(); album != "" {
		result.Album = &album
	}

	if title := meta.Title(); title != "" {
		result.Title = &title
	}

	if codec := strings.ToLower(string(meta.FileType())); codec != "" {
		result.Codec = &codec
	}

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
