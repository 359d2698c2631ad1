// Package schemas embeds the JSON Schemas for data exchanged with the
// career_portal CLI and API.
package schemas

import "embed"

// Schema file names.
const (
	Export = "export.schema.json"
	Config = "config.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw schema with the given file name.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists every embedded schema.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
