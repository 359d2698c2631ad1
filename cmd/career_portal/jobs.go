package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	jobsStatus string
	jobsQuery  string
	statusNote string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and update jobs in the local store",
	RunE:  runJobsList,
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count tracked jobs per status",
	Args:  cobra.NoArgs,
	RunE:  runJobsStats,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Move a job to another status",
	Long:  `Move a job to saved, applied, interviewing, offer or rejected. Any status may follow any other.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runJobsStatus,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "Only show jobs in this status")
	jobsCmd.Flags().StringVarP(&jobsQuery, "query", "q", "", "Only show jobs whose title, company or description contains this")
	jobsStatusCmd.Flags().StringVar(&statusNote, "note", "", "Note recorded in the job's timeline")

	jobsCmd.AddCommand(jobsStatsCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	jobs, err := store.LoadJobs(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if jobsStatus != "" && jobsStatus != "all" {
		status, err := tracker.ParseStatus(jobsStatus)
		if err != nil {
			return err
		}
		jobs = tracker.FilterByStatus(jobs, status)
	}
	jobs = tracker.Search(jobs, jobsQuery)

	observability.NewPrinter(cmd.OutOrStdout()).PrintJobs(jobs)
	return nil
}

func runJobsStats(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	jobs, err := store.LoadJobs(cmd.Context(), userID)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintStats(tracker.Stats(jobs))
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job ID %q: %w", args[0], err)
	}
	status, err := tracker.ParseStatus(args[1])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	users := store.ForUser(userID)

	job, err := users.GetJob(cmd.Context(), id)
	if err != nil {
		return err
	}
	tracker.ApplyStatus(job, status, statusNote, time.Now().UTC())
	if err := users.UpdateJob(cmd.Context(), job); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s at %s is now %s\n", job.Title, job.Company, job.Status)
	return err
}
