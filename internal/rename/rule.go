package rename

import "strings"

// Rule transforms one key, returning the cleaned key and whether it
// differs from the input.
type Rule interface {
	Name() string
	Apply(key string) (string, bool)
}

// StripSpacesRule trims leading/trailing whitespace from every "/"
// separated path segment and drops segments that become empty.
type StripSpacesRule struct{}

// Name identifies the rule in Stats.PerRule.
func (StripSpacesRule) Name() string { return "strip-spaces" }

// Apply implements Rule.
func (StripSpacesRule) Apply(key string) (string, bool) {
	segments := strings.Split(key, "/")

	cleaned := make([]string, 0, len(segments))

	for _, s := range segments {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	result := strings.Join(cleaned, "/")
	if result != key {
		return result, true
	}

	return key, false
}

// AvailableRules is the registry Plan's caller resolves --rules names
// against.
var AvailableRules = map[string]Rule{
	"strip-spaces": StripSpacesRule{},
}
