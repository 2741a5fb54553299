// Package store provides the durable, ETag-keyed local index of remote
// object-store objects used by the scanner, fingerprint passes, and the
// report/script emitters.
package store

import "time"

// Object is one indexed record for a remote key.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	IsMultipart  bool
	SHA256       string // empty when unresolved
	LastModified time.Time
	ScannedAt    time.Time
}

// BucketConfig records the endpoint a bucket was last scanned through, so
// later script generation can recover it without a fresh --endpoint-url flag.
type BucketConfig struct {
	Bucket      string
	EndpointURL string
	UpdatedAt   time.Time
}

// MediaMetadata is the optional media-tag record for a key. Fields are nil
// when not extracted or not present in the source tags.
type MediaMetadata struct {
	Key       string
	Artist    *string
	Album     *string
	Title     *string
	DurationS *float64
	Codec     *string
	Bitrate   *int
}

// DuplicateGroup is a derived, non-persisted grouping of objects sharing a
// trusted fingerprint (a single-part ETag or a SHA-256).
type DuplicateGroup struct {
	Fingerprint string
	Size        int64
	Objects     []Object
}

// WastedBytes is the space reclaimable by keeping exactly one copy.
func (g DuplicateGroup) WastedBytes() int64 {
	if len(g.Objects) == 0 {
		return 0
	}

	return g.Size * int64(len(g.Objects)-1)
}

// Stats summarizes the whole index.
type Stats struct {
	TotalObjects     int64
	TotalSize        int64
	DuplicateGroups  int
	DuplicateObjects int
	WastedBytes      int64
}

// SuspectNameGroup is a set of keys sharing a normalized basename but
// disagreeing on ETag — likely the same logical file uploaded with drifted
// content.
type SuspectNameGroup struct {
	Normalized string
	Files      []Object
}

// SameWorkGroup joins object records to media metadata sharing
// (artist, title).
type SameWorkGroup struct {
	Artist string
	Title  string
	Files  []SameWorkFile
}

// SameWorkFile is one member of a SameWorkGroup.
type SameWorkFile struct {
	Key     string
	Size    int64
	Codec   string
	Bitrate int
}
