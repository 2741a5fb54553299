// Package rename plans key renames for the `clean` command: it applies a
// chain of cleanup rules to every indexed key, then resolves any target
// collisions deterministically before the caller emits a script
// (spec.md §4.G).
package rename

import (
	"sort"
	"strconv"
	"strings"
)

// Stats summarizes a planning run.
type Stats struct {
	TotalKeys   int
	RenameCount int
	PerRule     map[string]int
}

// Rename is one planned source → target move. OriginalTarget differs from
// Target only when a collision forced a numeric suffix.
type Rename struct {
	Source         string
	Target         string
	OriginalTarget string
}

// Result is the full output of Plan.
type Result struct {
	Stats   Stats
	Renames []Rename // ordered by Source
}

// Plan runs rules, in order, over every key in keys and returns the
// resulting renames with collisions resolved.
//
// Totality: every key that any rule changes receives exactly one target;
// all targets are pairwise distinct; and no target collides with a key
// that exists and is not itself being renamed.
func Plan(rules []Rule, keys []string) Result {
	existing := make(map[string]bool, len(keys))
	for _, k := range keys {
		existing[k] = true
	}

	stats := Stats{TotalKeys: len(keys), PerRule: make(map[string]int)}

	renames := make(map[string]string)

	for _, key := range keys {
		cleaned := key

		for _, rule := range rules {
			result, changed := rule.Apply(cleaned)
			if changed {
				cleaned = result
				stats.PerRule[rule.Name()]++
			}
		}

		if cleaned != key {
			renames[key] = cleaned
		}
	}

	stats.RenameCount = len(renames)

	resolved := resolveConflicts(renames, existing)

	sources := make([]string, 0, len(resolved))
	for src := range resolved {
		sources = append(sources, src)
	}

	sort.Strings(sources)

	out := make([]Rename, 0, len(sources))

	for _, src := range sources {
		out = append(out, Rename{
			Source:         src,
			Target:         resolved[src],
			OriginalTarget: renames[src],
		})
	}

	return Result{Stats: stats, Renames: out}
}

// resolveConflicts assigns every rename source a unique target. Existing
// keys not themselves being renamed are never overwritten. When two or
// more sources land on the same target, the lexicographically smallest
// source keeps the plain target and the rest get a numeric suffix.
func resolveConflicts(renames map[string]string, existing map[string]bool) map[string]string {
	taken := make(map[string]bool, len(existing))

	for k := range existing {
		if !hasRename(renames, k) {
			taken[k] = true
		}
	}

	targetSources := make(map[string][]string)

	for src, tgt := range renames {
		targetSources[tgt] = append(targetSources[tgt], src)
	}

	targets := make([]string, 0, len(targetSources))
	for t := range targetSources {
		targets = append(targets, t)
	}

	sort.Strings(targets)

	result := make(map[string]string, len(renames))

	for _, target := range targets {
		sources := targetSources[target]
		sort.Strings(sources)

		for i, src := range sources {
			candidate := target
			if i > 0 || taken[candidate] {
				candidate = suffixed(target, taken)
			}

			taken[candidate] = true
			result[src] = candidate
		}
	}

	return result
}

func hasRename(renames map[string]string, key string) bool {
	_, ok := renames[key]
	return ok
}

// suffixed appends _2, _3, ... before the extension until it finds a
// candidate not already taken.
func suffixed(target string, taken map[string]bool) string {
	root, ext := splitExt(target)

	for n := 2; ; n++ {
		candidate := root + "_" + strconv.Itoa(n) + ext
		if !taken[candidate] {
			return candidate
		}
	}
}

func splitExt(key string) (stem, ext string) {
	lastDot := strings.LastIndex(key, ".")
	lastSlash := strings.LastIndex(key, "/")

	if lastDot <= lastSlash+1 || lastDot < 0 {
		return key, ""
	}

	return key[:lastDot], key[lastDot:]
}

