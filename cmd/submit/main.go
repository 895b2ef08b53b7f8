package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/domain"
	"github.com/telun/repodoc/internal/logger"
	"github.com/telun/repodoc/internal/poller"
)

// submitResponse mirrors the server's submission acknowledgement.
type submitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "repodoc-submit",
	})
	logger.SetDefaultLogger(appLogger)

	repoURL := flag.String("repo", "", "Repository URL to document")
	name := flag.String("name", "", "Project display name (defaults to the repo name)")
	description := flag.String("description", "", "Optional project description")
	mode := flag.String("mode", "", "Generation mode: standard or ai")
	server := flag.String("server", "http://localhost:8080", "repodoc server address")
	interval := flag.Duration("interval", 0, "Poll interval (default from config)")
	attempts := flag.Int("attempts", 0, "Maximum poll attempts (default from config)")
	failsafe := flag.Duration("failsafe", 0, "Wall-clock poll budget (default from config)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *repoURL == "" {
		fmt.Fprintln(os.Stderr, "usage: submit -repo <url> [-name <name>] [-mode standard|ai]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	pollCfg := poller.Config{
		Interval:       cfg.Poller.Interval,
		MaxAttempts:    cfg.Poller.MaxAttempts,
		RequestTimeout: cfg.Poller.RequestTimeout,
		Failsafe:       cfg.Poller.Failsafe,
	}
	if *interval > 0 {
		pollCfg.Interval = *interval
	}
	if *attempts > 0 {
		pollCfg.MaxAttempts = *attempts
	}
	if *failsafe > 0 {
		pollCfg.Failsafe = *failsafe
	}

	baseURL := strings.TrimSuffix(*server, "/")
	ctx := context.Background()

	job, err := submit(ctx, baseURL, domain.Submission{
		RepoURL:     *repoURL,
		ProjectName: *name,
		Description: *description,
		Mode:        *mode,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Submission failed")
	}

	appLogger.WithFields(logger.Fields{
		"job_id": job.ID,
		"repo":   *repoURL,
	}).Info("Job submitted, polling for completion")

	outcome, err := poller.New(baseURL, pollCfg).Poll(ctx, job.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Polling aborted")
	}

	switch {
	case outcome.TimedOut:
		// The job may still be running server-side; giving up on
		// observation is not a claim that it failed.
		appLogger.WithFields(logger.Fields{
			"job_id":   job.ID,
			"attempts": outcome.Attempts,
		}).Warn("Gave up polling before the job reached a terminal state")
		os.Exit(2)

	case outcome.Progress.Status == domain.JobStatusCompleted:
		appLogger.WithFields(logger.Fields{
			"job_id":   job.ID,
			"attempts": outcome.Attempts,
		}).Info("Documentation generated")
		printResult(baseURL, job.ID)

	default:
		appLogger.WithFields(logger.Fields{
			"job_id":  job.ID,
			"stage":   outcome.Progress.Stage,
			"message": outcome.Progress.Message,
		}).Error("Job failed")
		os.Exit(1)
	}
}

func submit(ctx context.Context, baseURL string, sub domain.Submission) (*submitResponse, error) {
	var (
		result submitResponse
		apiErr struct {
			Error string `json:"error"`
		}
	)
	resp, err := resty.New().R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&result).
		SetError(&apiErr).
		Post(baseURL + "/projects")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("server rejected submission: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode())
	}
	return &result, nil
}

// printResult fetches the full record and writes the markdown to stdout.
func printResult(baseURL, id string) {
	var job domain.Job
	resp, err := resty.New().SetTimeout(10*time.Second).R().
		SetResult(&job).
		Get(fmt.Sprintf("%s/projects/%s", baseURL, id))
	if err != nil || resp.IsError() || job.Result == nil {
		return
	}
	fmt.Println(job.Result.Markdown)
}
