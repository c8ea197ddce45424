package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybertec-postgresql/ctesplit/internal/config"
	"github.com/cybertec-postgresql/ctesplit/internal/discovery"
	"github.com/cybertec-postgresql/ctesplit/internal/logger"
	"github.com/cybertec-postgresql/ctesplit/internal/runner"
	"github.com/cybertec-postgresql/ctesplit/internal/splitter"
	"github.com/cybertec-postgresql/ctesplit/internal/writer"
)

/*
 * RunJobs executes every split job and returns the process exit code.
 * Jobs are independent, so one model's malformed script only fails that
 * job; the rest still run.  With Parallelism > 1 the jobs go through the
 * worker pool, otherwise they run in submission order.
 */
func RunJobs(ctx context.Context, cfg *Config, jobs []config.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, fmt.Errorf("no split jobs to run")
	}
	startTime := time.Now()

	tasks := make([]runner.Task, len(jobs))
	for i := range jobs {
		job := jobs[i]
		tasks[i] = runner.Task{
			Name: job.InitialScript,
			Run: func(ctx context.Context) error {
				return SplitOne(ctx, cfg, job)
			},
		}
	}

	results := runner.NewPool(cfg.Parallelism).Execute(ctx, tasks)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Errorf("%s: %v", r.Name, r.Err)
		}
	}

	logger.Infof("jobs:  %d succeeded, %d failed, %d total", len(results)-failed, failed, len(results))
	logger.Infof("time:  %v", time.Since(startTime).Round(time.Millisecond))

	if failed > 0 {
		return 1, nil
	}
	return 0, nil
}

/*
 * SplitOne runs the full pipeline for one model: locate the script, scan
 * and split it, plan the output files, remove stale outputs from earlier
 * runs, and write the new files.  In dry-run mode the plan is logged and
 * nothing on disk changes.
 */
func SplitOne(ctx context.Context, cfg *Config, job config.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := discovery.FindModel(job.ScriptsBasePath, job.InitialScript)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, job.InitialScript+".sql")
	logger.Debugf("splitting %s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	res, err := splitter.Split(string(content), splitter.Options{Lenient: cfg.Lenient})
	if err != nil {
		return fmt.Errorf("%s:%w", path, err)
	}
	for _, w := range res.Warnings {
		logger.Errorf("%s:%v (continuing, lenient mode)", path, w)
	}

	files, err := writer.Plan(res, job.InitialScript, job.FinalScript, job.DropIntermediate)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if cfg.DryRun {
		for _, f := range files {
			logger.Infof("would write %s", filepath.Join(dir, f.Name+".sql"))
		}
		return nil
	}

	if err := writer.RemoveStale(dir, job.InitialScript, job.FinalScript); err != nil {
		return err
	}
	if err := writer.WriteAll(dir, files); err != nil {
		return err
	}

	logger.Infof("%s: wrote %d files to %s", job.InitialScript, len(files), dir)
	return nil
}
