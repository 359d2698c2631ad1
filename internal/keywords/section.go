package keywords

import "strings"

// MaxHeaderLength is the longest trimmed line still treated as a header.
const MaxHeaderLength = 50

// Span is a half-open byte range [Start, End) within a document.
type Span struct {
	Start int
	End   int
}

// SkillsHeaders are the header groups tried, in order, when looking for a
// place to list additional technologies.
var SkillsHeaders = [][]string{
	{
		"Technical Skills", "Languages", "Analytics Tools", "Libraries",
		"Machine Learning", "Backend & Frameworks", "Databases", "Concepts", "Other Tools",
	},
	{"Skills"},
}

// ExperienceHeaders locate the work history section.
var ExperienceHeaders = [][]string{{"Experience"}}

// FindSection locates the first section introduced by one of the headers in
// groups. Groups are tried in order; within a group the earliest header line in
// the document wins.
//
// This is a heuristic over plain text, not a document model. A header is a
// short line (at most MaxHeaderLength characters once trimmed) that contains
// one of the header strings, compared case-insensitively, so "Professional
// Experience" and "Core Skills" qualify. The section
// ends just before the first following line break that is followed by two
// letters or by a blank line and a letter, or at the end of the text. For a
// header followed by plain prose lines the span therefore ends at the header
// line itself, so insertions land directly below the header.
func FindSection(text string, groups ...[]string) (Span, bool) {
	for _, headers := range groups {
		if start, ok := findHeader(text, headers); ok {
			return Span{Start: start, End: sectionEnd(text, start)}, true
		}
	}
	return Span{}, false
}

func findHeader(text string, headers []string) (int, bool) {
	offset := 0
	for {
		lineEnd := len(text)
		if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
			lineEnd = offset + i
		}
		line := text[offset:lineEnd]
		if isHeaderLine(line, headers) {
			lead := len(line) - len(strings.TrimLeft(line, " \t\r"))
			return offset + lead, true
		}
		if lineEnd == len(text) {
			return 0, false
		}
		offset = lineEnd + 1
	}
}

func isHeaderLine(line string, headers []string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > MaxHeaderLength {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, h := range headers {
		if strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func sectionEnd(text string, start int) int {
	for i := start; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		if i+2 < len(text) && isASCIILetter(text[i+1]) && isASCIILetter(text[i+2]) {
			return i
		}
		if i+2 < len(text) && text[i+1] == '\n' && isASCIILetter(text[i+2]) {
			return i
		}
	}
	return len(text)
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
