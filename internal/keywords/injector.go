package keywords

import "strings"

const (
	additionalTechnologiesLabel = "Additional Technologies: "
	fallbackSkillsHeader        = "Technical Skills"
)

// Inject adds keywords to originalContent without removing or rewriting any
// of it. Technical keywords go on a new line below the skills section (or a
// new trailing "Technical Skills" section when none is found). Business
// keywords become one bullet below the experience section when it exists.
// Keywords still absent after that are appended as a final line.
func Inject(originalContent string, keywords []string) string {
	if len(keywords) == 0 {
		return originalContent
	}

	var technical, business []string
	for _, kw := range keywords {
		if containsAnyTerm(kw, technicalTerms) {
			technical = append(technical, kw)
		}
		if containsAnyTerm(kw, businessTerms) {
			business = append(business, kw)
		}
	}

	content := originalContent
	if len(technical) > 0 {
		content = addToSkills(content, technical)
	}
	if len(business) > 0 {
		content = addToExperience(content, business)
	}

	if remaining := FindMissing(content, keywords); len(remaining) > 0 {
		content += "\n\n" + additionalTechnologiesLabel + strings.Join(remaining, ", ")
	}
	return content
}

// IsTechnical reports whether keyword contains one of the technical terms.
func IsTechnical(keyword string) bool {
	return containsAnyTerm(keyword, technicalTerms)
}

// IsBusiness reports whether keyword contains one of the business terms.
func IsBusiness(keyword string) bool {
	return containsAnyTerm(keyword, businessTerms)
}

func containsAnyTerm(keyword string, terms []string) bool {
	kw := strings.ToLower(keyword)
	for _, term := range terms {
		if strings.Contains(kw, term) {
			return true
		}
	}
	return false
}

func addToSkills(content string, keywords []string) string {
	line := "\n" + additionalTechnologiesLabel + strings.Join(keywords, ", ")
	if span, ok := FindSection(content, SkillsHeaders...); ok {
		return splice(content, span.End, line)
	}
	return content + "\n\n" + fallbackSkillsHeader + line
}

func addToExperience(content string, keywords []string) string {
	span, ok := FindSection(content, ExperienceHeaders...)
	if !ok {
		return content
	}
	lead := keywords
	if len(lead) > 3 {
		lead = lead[:3]
	}
	bullet := "\n• Leveraged " + strings.Join(lead, ", ") +
		" to drive strategic initiatives and deliver measurable business impact across cross-functional teams."
	return splice(content, span.End, bullet)
}

func splice(content string, at int, insert string) string {
	return content[:at] + insert + content[at:]
}
