package media_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/calvinalkan/s3dedup/internal/media"
	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/store"
)

type fakeClient struct {
	rangeData []byte
	rangeErr  error
}

func (f *fakeClient) ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[objectstore.ListedObject, error] {
	return func(yield func(objectstore.ListedObject, error) bool) {}
}

func (f *fakeClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeClient) GetObjectRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	return f.rangeData, f.rangeErr
}

func Test_IsMediaFile_Recognizes_Audio_And_Video_Extensions(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"song.mp3":        true,
		"song.FLAC":       true,
		"movie.mkv":       true,
		"document.pdf":    false,
		"no-extension":    false,
		"archive.tar.gz":  false,
	}

	for key, want := range cases {
		if got := media.IsMediaFile(key); got != want {
			t.Errorf("IsMediaFile(%q) = %v, want %v", key, got, want)
		}
	}
}

func Test_ExtractMetadata_Returns_AllNil_When_GetObjectRange_Fails(t *testing.T) {
	t.Parallel()

	client := &fakeClient{rangeErr: errors.New("network error")}

	got := media.ExtractMetadata(context.Background(), client, "bucket", "song.mp3")

	if got.Key != "song.mp3" {
		t.Fatalf("key = %q, want song.mp3", got.Key)
	}

	assertAllNil(t, got)
}

func Test_ExtractMetadata_Returns_AllNil_When_Data_Is_Not_A_Media_File(t *testing.T) {
	t.Parallel()

	client := &fakeClient{rangeData: []byte("not a media file, just plain bytes")}

	got := media.ExtractMetadata(context.Background(), client, "bucket", "song.mp3")

	assertAllNil(t, got)
}

func assertAllNil(t *testing.T, m store.MediaMetadata) {
	t.Helper()

	if m.Artist != nil || m.Album != nil || m.Title != nil || m.DurationS != nil || m.Codec != nil || m.Bitrate != nil {
		t.Fatalf("metadata = %+v, want every optional field nil", m)
	}
}
