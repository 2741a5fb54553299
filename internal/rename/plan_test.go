package rename_test

import (
	"testing"

	"github.com/calvinalkan/s3dedup/internal/rename"
)

func Test_Plan_Leaves_Clean_Keys_Untouched(t *testing.T) {
	t.Parallel()

	keys := []string{"music/track.mp3", "photos/img.jpg"}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	if len(result.Renames) != 0 {
		t.Fatalf("renames = %+v, want none", result.Renames)
	}

	if result.Stats.RenameCount != 0 {
		t.Fatalf("rename count = %d, want 0", result.Stats.RenameCount)
	}
}

func Test_Plan_Strips_Spaces_From_Segments(t *testing.T) {
	t.Parallel()

	keys := []string{"music / track .mp3"}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	if len(result.Renames) != 1 {
		t.Fatalf("renames = %+v, want 1 entry", result.Renames)
	}

	r := result.Renames[0]
	if r.Source != "music / track .mp3" || r.Target != "music/track .mp3" {
		t.Fatalf("rename = %+v, want music / track .mp3 -> music/track .mp3", r)
	}

	if result.Stats.PerRule["strip-spaces"] != 1 {
		t.Fatalf("per-rule count = %d, want 1", result.Stats.PerRule["strip-spaces"])
	}
}

func Test_Plan_Suffixes_Colliding_Targets_By_Source_Order(t *testing.T) {
	t.Parallel()

	keys := []string{"a.txt ", " a.txt"}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	byTarget := make(map[string]string, len(result.Renames))
	for _, r := range result.Renames {
		byTarget[r.Source] = r.Target
	}

	// Both sources trim to the same target "a.txt". " a.txt" sorts before
	// "a.txt " (a space sorts before 'a'), so it keeps the plain target and
	// the other source is suffixed.
	if byTarget[" a.txt"] != "a.txt" {
		t.Fatalf("\" a.txt\" -> %s, want a.txt", byTarget[" a.txt"])
	}

	if byTarget["a.txt "] != "a_2.txt" {
		t.Fatalf("\"a.txt \" -> %s, want a_2.txt", byTarget["a.txt "])
	}
}

func Test_Plan_Does_Not_Clash_With_An_Unrenamed_Existing_Key(t *testing.T) {
	t.Parallel()

	keys := []string{"a.txt", "a.txt "}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	if len(result.Renames) != 1 {
		t.Fatalf("renames = %+v, want 1 entry", result.Renames)
	}

	r := result.Renames[0]
	if r.Source != "a.txt " || r.Target != "a_2.txt" {
		t.Fatalf("rename = %+v, want \"a.txt \" -> a_2.txt", r)
	}
}

func Test_Plan_Chains_Suffixes_Past_Multiple_Collisions(t *testing.T) {
	t.Parallel()

	keys := []string{"a.txt", "a_2.txt", "a.txt "}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	if len(result.Renames) != 1 {
		t.Fatalf("renames = %+v, want 1 entry", result.Renames)
	}

	r := result.Renames[0]
	if r.Target != "a_3.txt" {
		t.Fatalf("target = %s, want a_3.txt", r.Target)
	}
}

func Test_Plan_Preserves_Extension_When_Suffixing(t *testing.T) {
	t.Parallel()

	keys := []string{"a.tar.gz ", " a.tar.gz"}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	byTarget := make(map[string]string, len(result.Renames))
	for _, r := range result.Renames {
		byTarget[r.Source] = r.Target
	}

	// The suffix goes before the last dot, so ".gz" is kept.
	if byTarget["a.tar.gz "] != "a.tar_2.gz" {
		t.Fatalf("\"a.tar.gz \" -> %s, want a.tar_2.gz", byTarget["a.tar.gz "])
	}
}

func Test_Plan_No_Rules_Is_A_No_Op(t *testing.T) {
	t.Parallel()

	result := rename.Plan(nil, []string{" a.txt"})

	if len(result.Renames) != 0 {
		t.Fatalf("renames = %+v, want none", result.Renames)
	}
}

// Rename plan totality: every source that changes under the rule chain
// receives exactly one target, all targets are pairwise distinct, and no
// target collides with a key that exists and is not itself renamed.
func Test_Plan_Is_Total(t *testing.T) {
	t.Parallel()

	keys := []string{
		"a.txt ", " a.txt", "a.txt  ", "untouched.txt",
		"dir / nested.mp3", "dir/nested.mp3",
	}

	result := rename.Plan([]rename.Rule{rename.StripSpacesRule{}}, keys)

	assertTotalAndCollisionFree(t, keys, result)
}

func assertTotalAndCollisionFree(t *testing.T, keys []string, result rename.Result) {
	t.Helper()

	renamed := make(map[string]bool, len(result.Renames))
	targets := make(map[string]string, len(result.Renames))

	for _, r := range result.Renames {
		if renamed[r.Source] {
			t.Fatalf("source %q renamed more than once", r.Source)
		}

		renamed[r.Source] = true

		if other, ok := targets[r.Target]; ok {
			t.Fatalf("target %q claimed by both %q and %q", r.Target, other, r.Source)
		}

		targets[r.Target] = r.Source
	}

	for _, key := range keys {
		if renamed[key] {
			continue
		}

		if src, ok := targets[key]; ok {
			t.Fatalf("target %q (from rename of %q) clashes with untouched key %q", key, src, key)
		}
	}
}
