package scrape

import (
	"net/url"
	"strings"

	"github.com/jonathan/career-portal/internal/fetch"
)

var requirementMarkers = []string{"requirement", "qualifications", "must have"}

// ExtractRequirements returns the bullet lines following the first line that
// mentions requirements, qualifications or "must have". Collection stops at
// the first blank line after that heading.
func ExtractRequirements(description string) []string {
	var out []string
	inSection := false
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		if containsAny(lower, requirementMarkers) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if line == "" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "•"); ok {
			out = append(out, strings.TrimSpace(rest))
		}
	}
	return out
}

// ValidateJobURL reports whether rawURL points at a supported job board.
func ValidateJobURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return fetch.DetectPlatform(u.String()) != fetch.PlatformUnknown
}

// PartitionURLs splits urls into supported and unsupported lists, dropping
// blanks and exact duplicates.
func PartitionURLs(urls []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(urls))
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		if ValidateJobURL(u) {
			valid = append(valid, u)
		} else {
			invalid = append(invalid, u)
		}
	}
	return valid, invalid
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
