package schemas

import (
	"os"
	"path/filepath"
	"testing"

	embedded "github.com/jonathan/career-portal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validExport = `{
	"jobs": [{
		"id": "6f1c7f8e-2c1a-4d8e-9d2b-0c9a1b2c3d4e",
		"title": "Backend Engineer",
		"company": "Acme",
		"status": "applied",
		"timeline": [{"status": "applied", "date": "2025-03-01T09:00:00Z"}]
	}],
	"resumes": [],
	"baseResumes": [{
		"id": "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d",
		"name": "General",
		"content": "Jane Smith",
		"skills": null
	}],
	"exportDate": "2025-03-02T10:00:00Z",
	"userId": "6f1c7f8e-2c1a-4d8e-9d2b-0c9a1b2c3d4f"
}`

func TestValidateBytes_Export(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "valid", doc: validExport},
		{name: "empty object", doc: `{}`},
		{
			name:      "unknown status",
			doc:       `{"jobs": [{"id": "6f1c7f8e-2c1a-4d8e-9d2b-0c9a1b2c3d4e", "title": "X", "company": "Y", "status": "deleted"}]}`,
			wantField: "jobs.0.status",
		},
		{
			name:      "missing company",
			doc:       `{"jobs": [{"id": "6f1c7f8e-2c1a-4d8e-9d2b-0c9a1b2c3d4e", "title": "X", "status": "saved"}]}`,
			wantField: "jobs.0",
		},
		{
			name:      "bad id",
			doc:       `{"baseResumes": [{"id": "base-1", "name": "A", "content": ""}]}`,
			wantField: "baseResumes.0.id",
		},
		{
			name:      "jobs not an array",
			doc:       `{"jobs": {}}`,
			wantField: "jobs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBytes(embedded.Export, []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	err := ValidateBytes(embedded.Export, []byte(`{"jobs": [`))
	var docErr *DocumentError
	assert.ErrorAs(t, err, &docErr)
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("nope.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nope.schema.json", loadErr.Path)
}

func TestValidateBytes_Config(t *testing.T) {
	assert.NoError(t, ValidateBytes(embedded.Config, []byte(`{"batch_size": 5, "batch_delay": "2s", "log_level": "debug"}`)))

	err := ValidateBytes(embedded.Config, []byte(`{"batch_size": 0, "verbose": true}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(path, []byte(validExport), 0o600))

	assert.NoError(t, ValidateFile(embedded.Export, path))
	assert.Error(t, ValidateFile(embedded.Export, filepath.Join(dir, "missing.json")))
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}
