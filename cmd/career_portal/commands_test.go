package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/localstore"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testResume = `Jane Doe
jane@example.com

SKILLS
Go, PostgreSQL, Docker

EXPERIENCE
Backend Engineer at Acme, building payment APIs in Go.
`
	testDescription = `We are hiring a Backend Engineer to build distributed systems in Go.
You will run services on Kubernetes and AWS, design PostgreSQL schemas and
own CI/CD pipelines. Experience with Kafka and Terraform is a plus.`
)

// resetFlags restores every flag of cmd and its subcommands to its default so
// commands can be executed repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	fileConfig = config.Config{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func seedStore(t *testing.T, path string, jobs ...types.Job) {
	t.Helper()
	store, err := localstore.Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.SaveJobs(context.Background(), "", jobs))
}

func testJob(title, company string, status types.JobStatus) types.Job {
	now := time.Now().UTC()
	return types.Job{
		ID:          uuid.New(),
		Title:       title,
		Company:     company,
		Description: testDescription,
		Status:      status,
		Timeline:    []types.TimelineEntry{{Status: status, Date: now, Note: "Job added"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestJobsCommands(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "store.db")
	saved := testJob("Data Engineer", "Initech", types.StatusSaved)
	applied := testJob("Backend Engineer", "Acme", types.StatusApplied)
	seedStore(t, storeFile, saved, applied)

	out, err := execute(t, "--store", storeFile, "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "TRACKED JOBS (2)")
	assert.Contains(t, out, saved.ID.String())

	out, err = execute(t, "--store", storeFile, "jobs", "--status", "applied")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend Engineer at Acme")
	assert.NotContains(t, out, "Data Engineer")

	out, err = execute(t, "--store", storeFile, "jobs", "-q", "initech")
	require.NoError(t, err)
	assert.Contains(t, out, "TRACKED JOBS (1)")

	_, err = execute(t, "--store", storeFile, "jobs", "--status", "ghosted")
	assert.ErrorContains(t, err, "unknown job status")

	// Any status may follow any other.
	out, err = execute(t, "--store", storeFile, "jobs", "status", saved.ID.String(), "offer", "--note", "signed")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Engineer at Initech is now offer")

	out, err = execute(t, "--store", storeFile, "jobs", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:        2")
	assert.Contains(t, out, "Offer:        1")
	assert.Contains(t, out, "Applied:      1")

	store, err := localstore.Open(storeFile)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	job, err := store.ForUser("").GetJob(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Len(t, job.Timeline, 2)
	assert.Equal(t, "signed", job.Timeline[1].Note)
}

func TestJobsStatus_UnknownJob(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "store.db")
	seedStore(t, storeFile)

	_, err := execute(t, "--store", storeFile, "jobs", "status", uuid.NewString(), "applied")
	assert.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestExportAndImportData(t *testing.T) {
	source := filepath.Join(t.TempDir(), "source.db")
	seedStore(t, source, testJob("SRE", "Globex", types.StatusInterviewing))

	backup := filepath.Join(t.TempDir(), "backup.json")
	_, err := execute(t, "--store", source, "export", "--out", backup)
	require.NoError(t, err)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	var export localstore.Export
	require.NoError(t, json.Unmarshal(data, &export))
	require.Len(t, export.Jobs, 1)
	assert.Equal(t, "SRE", export.Jobs[0].Title)

	target := filepath.Join(t.TempDir(), "target.db")
	out, err := execute(t, "--store", target, "--user", "alice", "import-data", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 jobs")

	store, err := localstore.Open(target)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	jobs, err := store.LoadJobs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	shared, err := store.LoadJobs(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestImportData_RejectsInvalidBackup(t *testing.T) {
	backup := writeFile(t, "backup.json", `{"jobs": "not a list"}`)
	_, err := execute(t, "--store", filepath.Join(t.TempDir(), "store.db"), "import-data", backup)
	assert.Error(t, err)
}

func TestOptimizeCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", testResume)
	description := writeFile(t, "job.txt", testDescription)
	storeFile := filepath.Join(t.TempDir(), "store.db")

	out, err := execute(t, "--store", storeFile, "optimize",
		"--resume", resume, "--job", description, "--title", "Backend Engineer", "--company", "Acme",
		"--json", "--save")
	require.NoError(t, err)

	var result struct {
		ATSScore      int      `json:"ats_score"`
		AddedKeywords []string `json:"added_keywords"`
		Resume        struct {
			ID      uuid.UUID `json:"id"`
			Content string    `json:"content"`
		} `json:"resume"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.AddedKeywords)
	assert.Greater(t, result.ATSScore, 0)
	assert.NotEqual(t, testResume, result.Resume.Content)

	store, err := localstore.Open(storeFile)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	jobs, err := store.LoadJobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ResumeID)
	assert.Equal(t, result.Resume.ID, *jobs[0].ResumeID)
	resumes, err := store.LoadResumes(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, resumes, 1)
}

func TestOptimizeCommand_Errors(t *testing.T) {
	resume := writeFile(t, "resume.txt", testResume)
	description := writeFile(t, "job.txt", testDescription)

	_, err := execute(t, "optimize", "--resume", resume, "--job", description)
	assert.ErrorContains(t, err, "--title is required")

	short := writeFile(t, "short.txt", "Go")
	_, err = execute(t, "optimize", "--resume", short, "--job", description, "--title", "SRE")
	assert.ErrorContains(t, err, "too short")

	_, err = execute(t, "optimize", "--job", description, "--title", "SRE")
	assert.ErrorContains(t, err, "--resume is required")
}

func TestOptimizeCommand_WritesOutput(t *testing.T) {
	resume := writeFile(t, "resume.txt", testResume)
	description := writeFile(t, "job.txt", testDescription)
	outFile := filepath.Join(t.TempDir(), "tailored.txt")

	out, err := execute(t, "optimize", "-r", resume, "-j", description, "--title", "Backend Engineer", "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "RESUME OPTIMIZATION")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Jane Doe"))
}

func TestExtractCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", testResume)

	out, err := execute(t, "extract", resume)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend Engineer at Acme")

	out, err = execute(t, "extract", resume, "--json")
	require.NoError(t, err)
	var parsed struct {
		Contact struct {
			Email string `json:"email"`
		} `json:"contact"`
		Skills []string `json:"skills"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "jane@example.com", parsed.Contact.Email)
	assert.Contains(t, parsed.Skills, "Go")

	out, err = execute(t, "extract", resume, "--parse")
	require.NoError(t, err)
	assert.Contains(t, out, "PARSED RESUME")
}

func TestExtractCommand_BadPDF(t *testing.T) {
	pdf := writeFile(t, "resume.pdf", "%PDF-1.4 not really a pdf")
	_, err := execute(t, "extract", pdf)
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "store.db")
	seedStore(t, storeFile, testJob("SRE", "Globex", types.StatusSaved))
	cfg := writeFile(t, "config.json", `{"store_path": "`+storeFile+`", "log_level": "debug"}`)

	out, err := execute(t, "--config", cfg, "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "SRE at Globex")

	bad := writeFile(t, "bad.json", `{"min_keywords": 9, "max_keywords": 2}`)
	_, err = execute(t, "--config", bad, "jobs")
	assert.ErrorContains(t, err, "exceeds")
}

func TestImportJobs_RejectsUnsupportedURLs(t *testing.T) {
	_, err := execute(t, "--store", filepath.Join(t.TempDir(), "store.db"),
		"import-jobs", "https://example.com/about", "not a url")
	assert.ErrorContains(t, err, "no supported job URLs")
}

func TestImportJobs_OptimizeNeedsResume(t *testing.T) {
	_, err := execute(t, "--store", filepath.Join(t.TempDir(), "store.db"),
		"import-jobs", "--optimize", "https://boards.greenhouse.io/acme/jobs/1")
	assert.ErrorContains(t, err, "base resume")
}

func TestMigrateCommand(t *testing.T) {
	out, err := execute(t, "migrate", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS jobs")

	t.Setenv("DATABASE_URL", "")
	_, err = execute(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestServeCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "serve", "--port", "0")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
