package keywords

import "strings"

// Extract returns the keywords a job posting asks for, in scan order:
// database terms, then title-implied keywords, then action verbs and key
// phrases. Matching is plain case-insensitive substring containment and the
// result is de-duplicated case-insensitively keeping the first occurrence.
//
// Extract does not validate input length; callers reject short descriptions.
func Extract(jobDescription, jobTitle string) []string {
	text := strings.ToLower(jobDescription)
	title := strings.ToLower(jobTitle)

	var found []string
	for _, category := range Database {
		for _, term := range category.Terms {
			if strings.Contains(text, term) {
				found = append(found, term)
			}
		}
	}

	found = append(found, TitleKeywords(title)...)

	for _, verb := range actionVerbs {
		if strings.Contains(text, verb) {
			found = append(found, verb)
		}
	}
	for _, phrase := range keyPhrases {
		if strings.Contains(text, phrase) {
			found = append(found, phrase)
		}
	}

	return dedupe(found)
}

// TitleKeywords returns the keywords implied by the first role archetype whose
// fragment appears in title, or nil if none does.
func TitleKeywords(title string) []string {
	title = strings.ToLower(title)
	for _, archetype := range titleArchetypes {
		if strings.Contains(title, archetype.fragment) {
			out := make([]string, len(archetype.keywords))
			copy(out, archetype.keywords)
			return out
		}
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}
