package normalize_test

import (
	"testing"

	"github.com/calvinalkan/s3dedup/internal/normalize"
)

// FuzzNormalize_Idempotent checks testable property 5: normalize(normalize(k)) == normalize(k).
func FuzzNormalize_Idempotent(f *testing.F) {
	seeds := []string{
		"Café - Copie (3)_2.MP3",
		"a/b/c/file (1).txt",
		"  spaced  .txt",
		"report - Copy.pdf",
		"",
		".bashrc",
		"archive.tar.gz",
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, key string) {
		once := normalize.Normalize(key)
		twice := normalize.Normalize(once)

		if once != twice {
			t.Fatalf("Normalize(%q) = %q, Normalize(that) = %q, want equal", key, once, twice)
		}
	})
}

// FuzzQualityScore_Monotonic checks testable property 6:
// quality_score(normalize(k)) <= quality_score(k).
func FuzzQualityScore_Monotonic(f *testing.F) {
	seeds := []string{
		"Café - Copie (3)_2.MP3",
		"  track (1).mp3",
		"tra  ck_copy.wav",
		"cafÃ© - Copy.mp3",
		"",
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, key string) {
		before := normalize.QualityScore(key)
		after := normalize.QualityScore(normalize.Normalize(key))

		if after > before {
			t.Fatalf("QualityScore(Normalize(%q)) = %d, want <= QualityScore(%q) = %d", key, after, key, before)
		}
	})
}
