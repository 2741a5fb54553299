package dedupe_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"testing"

	"github.com/calvinalkan/s3dedup/internal/dedupe"
	"github.com/calvinalkan/s3dedup/internal/objectstore"
	"github.com/calvinalkan/s3dedup/internal/store"
)

type fakeIndex struct {
	groups  []store.DuplicateGroup
	updated map[string]string
}

func (f *fakeIndex) FindMultipartCandidates(ctx context.Context) ([]store.DuplicateGroup, error) {
	return f.groups, nil
}

func (f *fakeIndex) UpdateSHA256(ctx context.Context, key, digest string) error {
	if f.updated == nil {
		f.updated = make(map[string]string)
	}

	f.updated[key] = digest

	return nil
}

type fakeClient struct {
	bodies map[string]string
	err    error
}

func (f *fakeClient) ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[objectstore.ListedObject, error] {
	return func(yield func(objectstore.ListedObject, error) bool) {}
}

func (f *fakeClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}

	body, ok := f.bodies[key]
	if !ok {
		return nil, 0, errors.New("not found")
	}

	return io.NopCloser(strings.NewReader(body)), int64(len(body)), nil
}

func (f *fakeClient) GetObjectRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func Test_ResolveDuplicates_Hashes_Only_Unresolved_Members(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{
		groups: []store.DuplicateGroup{
			{
				Size: 10,
				Objects: []store.Object{
					{Key: "a", Size: 10},
					{Key: "b", Size: 10, SHA256: "already-resolved"},
				},
			},
		},
	}

	client := &fakeClient{bodies: map[string]string{"a": "hello"}}

	n, err := dedupe.ResolveDuplicates(context.Background(), idx, client, "bucket", nil)
	if err != nil {
		t.Fatalf("resolve duplicates: %v", err)
	}

	if n != 1 {
		t.Fatalf("hashed = %d, want 1", n)
	}

	if _, ok := idx.updated["a"]; !ok {
		t.Fatal("expected key a to be hashed")
	}

	if _, ok := idx.updated["b"]; ok {
		t.Fatal("expected already-resolved key b to be skipped")
	}
}

func Test_ResolveDuplicates_Reports_Progress_In_Stable_Key_Order(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{
		groups: []store.DuplicateGroup{
			{Size: 1, Objects: []store.Object{{Key: "zzz"}, {Key: "aaa"}}},
		},
	}

	client := &fakeClient{bodies: map[string]string{"zzz": "z", "aaa": "a"}}

	var order []string

	_, err := dedupe.ResolveDuplicates(context.Background(), idx, client, "bucket", func(done, total int, key string) {
		order = append(order, key)

		if total != 2 {
			t.Fatalf("total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("resolve duplicates: %v", err)
	}

	if len(order) != 2 || order[0] != "aaa" || order[1] != "zzz" {
		t.Fatalf("order = %v, want [aaa zzz]", order)
	}
}

func Test_ResolveDuplicates_Stops_And_Keeps_Prior_Hashes_When_GET_Fails(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{
		groups: []store.DuplicateGroup{
			{Size: 1, Objects: []store.Object{{Key: "aaa"}, {Key: "zzz"}}},
		},
	}

	client := &fakeClient{bodies: map[string]string{"aaa": "a"}}

	n, err := dedupe.ResolveDuplicates(context.Background(), idx, client, "bucket", nil)
	if err == nil {
		t.Fatal("expected error for missing key zzz")
	}

	if n != 1 {
		t.Fatalf("hashed = %d, want 1 (aaa committed before the failure)", n)
	}

	if _, ok := idx.updated["aaa"]; !ok {
		t.Fatal("expected aaa to remain committed")
	}
}

func Test_ResolveDuplicates_Returns_Zero_When_No_Candidates(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{}
	client := &fakeClient{}

	n, err := dedupe.ResolveDuplicates(context.Background(), idx, client, "bucket", nil)
	if err != nil {
		t.Fatalf("resolve duplicates: %v", err)
	}

	if n != 0 {
		t.Fatalf("hashed = %d, want 0", n)
	}
}
