// Package normalize implements the canonical-name and quality-score
// functions shared by the suspect-name detector and the retention
// selector's cleanest-name criterion.
package normalize

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// copySuffixPatterns are applied, in order, to the stem only, each
// anchored at end-of-stem. All but the numeric patterns are
// case-insensitive.
var copySuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*\(\d+\)$`),
	regexp.MustCompile(`(?i)\s*-\s*Copie$`),
	regexp.MustCompile(`(?i)\s*-\s*Copy$`),
	regexp.MustCompile(`(?i)[_ ]copy$`),
	regexp.MustCompile(`_\d+$`),
}

// mojibakePattern detects the byte-pair residues typical of a
// latin-1-decoded-as-UTF-8 double encoding. The embedded literal space in
// the second alternative's character class is intentional: it mirrors the
// upstream detector exactly rather than a tidied-up version of it, since
// quality scores are compared across runs and must stay stable.
var mojibakePattern = regexp.MustCompile(`Ã[\x80-\xbf]|Ã[©¨ ´¹²³¼½¾]|Â[\xa0-\xbf]|Ã\x83Â`)

var multiSpacePattern = regexp.MustCompile(`\s+`)

var twoOrMoreSpacesPattern = regexp.MustCompile(`  +`)

// Normalize returns a canonical, comparison-ready form of an object key:
// basename only, lowercased, accents stripped, copy suffixes removed,
// whitespace collapsed.
func Normalize(key string) string {
	stem, ext := splitExt(path.Base(key))

	stem = strings.ToLower(stem)
	ext = strings.ToLower(ext)

	stem = stripAccents(stem)
	stem = stripCopySuffixes(stem)

	stem = strings.TrimSpace(stem)
	stem = multiSpacePattern.ReplaceAllString(stem, " ")

	return stem + ext
}

// QualityScore returns a non-negative penalty for the basename's stem: 0
// is pristine, higher is worse. Used to prefer a well-formed key among
// duplicates or same-normalized-name siblings.
func QualityScore(key string) int {
	stem, _ := splitExt(path.Base(key))

	score := 0

	if mojibakePattern.MatchString(stem) {
		score += 10
	}

	if hasCopySuffix(stem) {
		score += 5
	}

	if stem != strings.TrimSpace(stem) {
		score += 2
	}

	if twoOrMoreSpacesPattern.MatchString(stem) {
		score += 1
	}

	return score
}

func stripAccents(s string) string {
	decomposed := norm.NFKD.String(s)

	var b strings.Builder

	b.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.In(r, unicode.Mn) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// stripCopySuffixes strips recognized suffixes to a fixpoint: a name like
// "report - Copy_2" sheds "_2" and then " - Copy" in the same call, which is
// what keeps Normalize idempotent when a key carries more than one
// stacked suffix.
func stripCopySuffixes(stem string) string {
	for {
		before := stem

		for _, p := range copySuffixPatterns {
			stem = p.ReplaceAllString(stem, "")
		}

		if stem == before {
			return stem
		}
	}
}

func hasCopySuffix(stem string) bool {
	for _, p := range copySuffixPatterns {
		if p.MatchString(stem) {
			return true
		}
	}

	return false
}

// splitExt mirrors posixpath.splitext: the extension is the substring
// from the last '.' onward, unless that '.' is part of a run of leading
// dots (so ".bashrc" has no extension).
func splitExt(basename string) (stem, ext string) {
	lastDot := strings.LastIndex(basename, ".")
	if lastDot <= 0 {
		return basename, ""
	}

	firstNonDot := 0
	for firstNonDot < len(basename) && basename[firstNonDot] == '.' {
		firstNonDot++
	}

	if lastDot <= firstNonDot {
		return basename, ""
	}

	return basename[:lastDot], basename[lastDot:]
}
