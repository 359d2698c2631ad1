// Package resumetext turns uploaded resumes into plain text and pulls out the
// sections the portal pre-fills base resumes with.
package resumetext

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError reports a PDF that could not be read.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ExtractPDF returns the plain text of every page, one page per line group.
// Pages that fail to decode are skipped; a document with no readable text is
// an error.
func ExtractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &ExtractionError{Message: "empty document"}
	}

	// the pdf reader panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Message: fmt.Sprintf("malformed document: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Message: "failed to open document", Cause: err}
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Debug("skipping unreadable pdf page", slog.Int("page", i), slog.Any("error", err))
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", &ExtractionError{Message: fmt.Sprintf("no text found in %d pages", pages)}
	}
	return text, nil
}
