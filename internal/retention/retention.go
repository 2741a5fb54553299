// Package retention implements the keeper-selection policy used to turn a
// duplicate group into one keeper and N deletion candidates (spec.md
// §4.F).
package retention

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/calvinalkan/s3dedup/internal/normalize"
	"github.com/calvinalkan/s3dedup/internal/store"
)

// ErrInvalidCriteria reports an empty or unrecognized criteria list.
var ErrInvalidCriteria = errors.New("invalid retention criteria")

// ErrEmptyGroup reports a SelectKeeper call against a group with no members.
var ErrEmptyGroup = errors.New("duplicate group has no members")

// DefaultKeep is the criteria list used when the operator gives none.
const DefaultKeep = "shortest,oldest"

// ValidCriteria lists every criterion SelectKeeper accepts, smaller
// sort-key wins:
//
//   - cleanest: quality_score(key), lower is better
//   - shortest: length of the basename
//   - oldest:   last_modified, ascending
//   - newest:   last_modified, descending
var ValidCriteria = []string{"cleanest", "shortest", "oldest", "newest"}

// ParseKeep splits a comma-separated --keep value into criteria and
// validates each against ValidCriteria.
func ParseKeep(keep string) ([]string, error) {
	parts := strings.Split(keep, ",")

	criteria := make([]string, 0, len(parts))

	var invalid []string

	for _, p := range parts {
		c := strings.TrimSpace(p)

		if !isValidCriterion(c) {
			invalid = append(invalid, c)
			continue
		}

		criteria = append(criteria, c)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidCriteria, strings.Join(invalid, ", "), strings.Join(ValidCriteria, ", "))
	}

	return criteria, nil
}

func isValidCriterion(c string) bool {
	for _, v := range ValidCriteria {
		if v == c {
			return true
		}
	}

	return false
}

// SelectKeeper chooses exactly one keeper from a non-empty group using
// criteria as a composite, left-to-right tie-break: the keeper is the
// object whose (criteria[0], criteria[1], ...) sort-key tuple is smallest,
// with the smallest key winning any full tie.
func SelectKeeper(group store.DuplicateGroup, criteria []string) (store.Object, []store.Object, error) {
	if len(group.Objects) == 0 {
		return store.Object{}, nil, fmt.Errorf("select keeper: %w", ErrEmptyGroup)
	}

	if len(criteria) == 0 {
		return store.Object{}, nil, fmt.Errorf("select keeper: %w: empty criteria", ErrInvalidCriteria)
	}

	for _, c := range criteria {
		if !isValidCriterion(c) {
			return store.Object{}, nil, fmt.Errorf("select keeper: %w: %q", ErrInvalidCriteria, c)
		}
	}

	// Ties are broken by key string ascending (spec.md §4.F); sort a copy
	// so this holds regardless of the order the caller built group.Objects
	// in, not just for store-produced groups that already happen to be
	// key-sorted.
	objects := make([]store.Object, len(group.Objects))
	copy(objects, group.Objects)
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	keeper := objects[0]

	for _, candidate := range objects[1:] {
		if less(candidate, keeper, criteria) {
			keeper = candidate
		}
	}

	toDelete := make([]store.Object, 0, len(objects)-1)

	for _, o := range objects {
		if o.Key != keeper.Key {
			toDelete = append(toDelete, o)
		}
	}

	return keeper, toDelete, nil
}

// less reports whether a sorts before b under the composite criteria key.
func less(a, b store.Object, criteria []string) bool {
	for _, c := range criteria {
		av, bv := sortKey(a, c), sortKey(b, c)

		if av != bv {
			return av < bv
		}
	}

	return false
}

func sortKey(o store.Object, criterion string) float64 {
	switch criterion {
	case "cleanest":
		return float64(normalize.QualityScore(o.Key))
	case "shortest":
		return float64(len(path.Base(o.Key)))
	case "oldest":
		return float64(o.LastModified.UnixNano())
	case "newest":
		return -float64(o.LastModified.UnixNano())
	default:
		return 0
	}
}

// SortGroupsByFingerprint orders groups deterministically for script
// generation, matching the index's own key-ordered query results.
func SortGroupsByFingerprint(groups []store.DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Fingerprint < groups[j].Fingerprint })
}
