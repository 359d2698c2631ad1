package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/career-portal/internal/resumetext"
)

var pdfMagic = []byte("%PDF-")

// readResume returns the text of a resume file. PDFs are extracted; any other
// file is read as plain text.
func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	if isPDF(path, data) {
		text, err := resumetext.ExtractPDF(data)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	return string(data), nil
}

func isPDF(path string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf") || bytes.HasPrefix(data, pdfMagic)
}

// isURL reports whether s looks like an http(s) URL rather than a file path.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readURLs collects URLs from args and, when path is set, from a file with
// one URL per line. Blank lines and lines starting with # are skipped.
func readURLs(args []string, path string) ([]string, error) {
	urls := append([]string{}, args...)
	if path == "" {
		return urls, nil
	}

	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
