package resumetext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `Jane Smith
jane.smith@example.com | (555) 123-4567
linkedin.com/in/janesmith | github.com/jsmith

SKILLS
Go, Python, Docker
Kubernetes

EXPERIENCE
Acme Corp - Senior Engineer
Built payment systems
Globex - Engineer
Maintained APIs

EDUCATION
State University, BS Computer Science`

func TestParse_Contact(t *testing.T) {
	p := Parse(sampleText)

	assert.Equal(t, Contact{
		Name:     "Jane Smith",
		Email:    "jane.smith@example.com",
		Phone:    "(555) 123-4567",
		LinkedIn: "linkedin.com/in/janesmith",
		GitHub:   "github.com/jsmith",
	}, p.Contact)
	assert.Equal(t, sampleText, p.Text)
}

func TestParse_Sections(t *testing.T) {
	p := Parse(sampleText)

	assert.Equal(t, []string{"Python", "Go", "Docker", "Kubernetes"}, p.Skills)

	require.Len(t, p.Experience, 4)
	assert.Equal(t, "Acme Corp - Senior Engineer", p.Experience[0])

	assert.Equal(t, []string{"State University, BS Computer Science"}, p.Education)
}

func TestParse_NoSections(t *testing.T) {
	p := Parse("just a paragraph of text without any headings at all, nothing more")

	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Experience)
	assert.Empty(t, p.Education)
	assert.Empty(t, p.Contact.Name)
}

func TestParse_NameOnlyInFirstLines(t *testing.T) {
	text := "RESUME\nsummary\nprofile\nJohn Doe"
	assert.Empty(t, Parse(text).Contact.Name)
}

func TestExtractPDF_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("this is plain text, not a PDF document")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractPDF(tt.data)
			require.Error(t, err)
			assert.Empty(t, text)

			var extErr *ExtractionError
			assert.ErrorAs(t, err, &extErr)
		})
	}
}
