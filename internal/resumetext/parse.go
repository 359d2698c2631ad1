package resumetext

import (
	"regexp"
	"strings"
)

// Contact holds the details found near the top of a resume.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// Parsed is the structured view of resume text.
type Parsed struct {
	Text       string   `json:"text"`
	Contact    Contact  `json:"contact"`
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
}

var (
	emailRe    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe    = regexp.MustCompile(`(\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	linkedInRe = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)
	gitHubRe   = regexp.MustCompile(`(?i)github\.com/[\w-]+`)
	nameRe     = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+`)
	allCapsRe  = regexp.MustCompile(`^[A-Z\s]+$`)
	entryRe    = regexp.MustCompile(`\n[A-Z]`)
	skillSepRe = regexp.MustCompile(`[•\n,]`)
)

var (
	skillHeaders      = []string{"skills", "technical skills", "core competencies", "technologies"}
	experienceHeaders = []string{"experience", "work experience", "professional experience", "employment"}
	educationHeaders  = []string{"education", "academic background", "qualifications", "certifications"}
)

var commonSkills = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "Go", "Rust", "PHP", "Ruby",
	"React", "Vue", "Angular", "Node.js", "Express", "Django", "Flask", "Spring", "Laravel",
	"HTML", "CSS", "SASS", "SCSS", "Tailwind", "Bootstrap",
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "SQLite",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins",
	"Git", "GitHub", "GitLab", "Jira", "Confluence",
	"Machine Learning", "AI", "Data Science", "Analytics",
	"Agile", "Scrum", "DevOps", "CI/CD",
}

const (
	maxExtraSkills    = 10
	maxExperienceRows = 5
	maxEducationRows  = 5
	sectionHeaderMax  = 50
)

// Parse extracts contact details and the skills, experience and education
// sections from resume text. Every field is best effort.
func Parse(text string) Parsed {
	return Parsed{
		Text:       text,
		Contact:    parseContact(text),
		Skills:     parseSkills(text),
		Experience: parseExperience(text),
		Education:  parseEducation(text),
	}
}

func parseContact(text string) Contact {
	c := Contact{
		Email:    emailRe.FindString(text),
		Phone:    phoneRe.FindString(text),
		LinkedIn: linkedInRe.FindString(text),
		GitHub:   gitHubRe.FindString(text),
	}

	checked := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if nameRe.MatchString(line) && !strings.Contains(line, "@") && !strings.Contains(line, "http") {
			c.Name = line
			break
		}
		checked++
		if checked == 3 {
			break
		}
	}
	return c
}

func parseSkills(text string) []string {
	section, ok := extractSection(text, skillHeaders)
	if !ok {
		return nil
	}
	lower := strings.ToLower(section)

	var found []string
	seen := make(map[string]bool)
	for _, skill := range commonSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
			seen[skill] = true
		}
	}

	extra := 0
	for _, item := range skillSepRe.Split(section, -1) {
		item = strings.TrimSpace(item)
		if len(item) <= 2 || len(item) >= 30 || seen[item] {
			continue
		}
		found = append(found, item)
		seen[item] = true
		extra++
		if extra == maxExtraSkills {
			break
		}
	}
	return found
}

func parseExperience(text string) []string {
	section, ok := extractSection(text, experienceHeaders)
	if !ok {
		return nil
	}

	// entries start at lines beginning with a capital letter
	var entries []string
	start := 0
	for _, loc := range entryRe.FindAllStringIndex(section, -1) {
		entries = append(entries, section[start:loc[0]])
		start = loc[0] + 1
	}
	entries = append(entries, section[start:])

	var out []string
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if len(e) > 10 {
			out = append(out, e)
		}
		if len(out) == maxExperienceRows {
			break
		}
	}
	return out
}

func parseEducation(text string) []string {
	section, ok := extractSection(text, educationHeaders)
	if !ok {
		return nil
	}
	var out []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 5 {
			out = append(out, line)
		}
		if len(out) == maxEducationRows {
			break
		}
	}
	return out
}

// extractSection returns the lines after the first short line mentioning one
// of headers, up to the next all-caps header line.
func extractSection(text string, headers []string) (string, bool) {
	lines := strings.Split(text, "\n")
	for _, header := range headers {
		idx := -1
		for i, line := range lines {
			if len(line) < sectionHeaderMax && strings.Contains(strings.ToLower(line), header) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		end := len(lines)
		for i := idx + 1; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if line != "" && len(line) < sectionHeaderMax && allCapsRe.MatchString(line) {
				end = i
				break
			}
		}
		return strings.TrimSpace(strings.Join(lines[idx+1:end], "\n")), true
	}
	return "", false
}
