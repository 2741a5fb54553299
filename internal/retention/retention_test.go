package retention_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/s3dedup/internal/retention"
	"github.com/calvinalkan/s3dedup/internal/store"
)

func Test_ParseKeep_Splits_And_Trims(t *testing.T) {
	t.Parallel()

	criteria, err := retention.ParseKeep("shortest, oldest")
	if err != nil {
		t.Fatalf("parse keep: %v", err)
	}

	if len(criteria) != 2 || criteria[0] != "shortest" || criteria[1] != "oldest" {
		t.Fatalf("criteria = %v, want [shortest oldest]", criteria)
	}
}

func Test_ParseKeep_Returns_Error_For_Unknown_Criterion(t *testing.T) {
	t.Parallel()

	_, err := retention.ParseKeep("shortest,bogus")
	if err == nil {
		t.Fatal("expected error for unknown criterion")
	}
}

func Test_SelectKeeper_Picks_Shortest_Basename(t *testing.T) {
	t.Parallel()

	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "a/very-long-name.txt"},
		{Key: "b/short.txt"},
	}}

	keeper, toDelete, err := retention.SelectKeeper(group, []string{"shortest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if keeper.Key != "b/short.txt" {
		t.Fatalf("keeper = %s, want b/short.txt", keeper.Key)
	}

	if len(toDelete) != 1 || toDelete[0].Key != "a/very-long-name.txt" {
		t.Fatalf("to delete = %+v", toDelete)
	}
}

func Test_SelectKeeper_Picks_Oldest(t *testing.T) {
	t.Parallel()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "new.txt", LastModified: newer},
		{Key: "old.txt", LastModified: older},
	}}

	keeper, _, err := retention.SelectKeeper(group, []string{"oldest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if keeper.Key != "old.txt" {
		t.Fatalf("keeper = %s, want old.txt", keeper.Key)
	}
}

func Test_SelectKeeper_Picks_Newest(t *testing.T) {
	t.Parallel()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "old.txt", LastModified: older},
		{Key: "new.txt", LastModified: newer},
	}}

	keeper, _, err := retention.SelectKeeper(group, []string{"newest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if keeper.Key != "new.txt" {
		t.Fatalf("keeper = %s, want new.txt", keeper.Key)
	}
}

func Test_SelectKeeper_Picks_Cleanest_Name(t *testing.T) {
	t.Parallel()

	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "track (1).mp3"},
		{Key: "track.mp3"},
	}}

	keeper, _, err := retention.SelectKeeper(group, []string{"cleanest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if keeper.Key != "track.mp3" {
		t.Fatalf("keeper = %s, want track.mp3", keeper.Key)
	}
}

func Test_SelectKeeper_Breaks_Ties_With_Second_Criterion(t *testing.T) {
	t.Parallel()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Both basenames are the same length, so "shortest" alone ties;
	// "oldest" as the tiebreaker must pick the older one.
	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "bbb.txt", LastModified: newer},
		{Key: "aaa.txt", LastModified: older},
	}}

	keeper, _, err := retention.SelectKeeper(group, []string{"shortest", "oldest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if keeper.Key != "aaa.txt" {
		t.Fatalf("keeper = %s, want aaa.txt", keeper.Key)
	}
}

func Test_SelectKeeper_Returns_Error_For_Empty_Group(t *testing.T) {
	t.Parallel()

	_, _, err := retention.SelectKeeper(store.DuplicateGroup{}, []string{"shortest"})
	if err == nil {
		t.Fatal("expected error for empty group")
	}
}

func Test_SelectKeeper_Returns_Error_For_Invalid_Criterion(t *testing.T) {
	t.Parallel()

	group := store.DuplicateGroup{Objects: []store.Object{{Key: "a"}}}

	_, _, err := retention.SelectKeeper(group, []string{"bogus"})
	if err == nil {
		t.Fatal("expected error for invalid criterion")
	}
}

// Retention totality: for any non-empty group and valid criteria, exactly
// one keeper is chosen and every other member is a deletion candidate.
func Test_SelectKeeper_Is_Total(t *testing.T) {
	t.Parallel()

	group := store.DuplicateGroup{Objects: []store.Object{
		{Key: "a.txt"}, {Key: "b.txt"}, {Key: "c.txt"}, {Key: "d.txt"},
	}}

	keeper, toDelete, err := retention.SelectKeeper(group, []string{"shortest", "oldest"})
	if err != nil {
		t.Fatalf("select keeper: %v", err)
	}

	if len(toDelete) != len(group.Objects)-1 {
		t.Fatalf("to delete = %d, want %d", len(toDelete), len(group.Objects)-1)
	}

	for _, o := range toDelete {
		if o.Key == keeper.Key {
			t.Fatalf("keeper %s also appears in to-delete list", keeper.Key)
		}
	}
}
