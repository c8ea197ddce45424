package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/ctesplit/internal/config"
)

const bigModel = `{{ config(
    enabled = false,
    post_hook = [
        'vacuum'
    ]
) }}
with orders as (
    select id, total from raw_orders
), totals as (
    select sum(total) as grand_total from orders
)
select * from totals
`

// setupModel writes a model script into a fresh tree and returns a job for it.
func setupModel(t *testing.T, script string) (string, config.Job) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "marts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "big_model.sql"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, config.Job{
		ScriptsBasePath: root,
		InitialScript:   "big_model",
		FinalScript:     "split_model",
	}
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("missing output %s: %v", name, err)
	}
	return string(data)
}

func TestSplitOneWritesAllModels(t *testing.T) {
	dir, job := setupModel(t, bigModel)
	cfg := DefaultConfig

	if err := SplitOne(context.Background(), &cfg, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders := readOutput(t, dir, "split_model_orders.sql")
	if orders != "    select id, total from raw_orders\n" {
		t.Fatalf("orders content: got %q", orders)
	}

	totals := readOutput(t, dir, "split_model_totals.sql")
	if !strings.Contains(totals, `from {{ ref("split_model_orders") }}`) {
		t.Fatalf("totals not rewritten: %q", totals)
	}

	final := readOutput(t, dir, "split_model.sql")
	if !strings.Contains(final, "enabled = true") {
		t.Fatalf("final config not enabled: %q", final)
	}
	if !strings.Contains(final, `from {{ ref("split_model_totals") }}`) {
		t.Fatalf("final not rewritten: %q", final)
	}

	// The input model is untouched.
	if got := readOutput(t, dir, "big_model.sql"); got != bigModel {
		t.Fatalf("input model modified")
	}
}

func TestSplitOneRemovesStaleOutputs(t *testing.T) {
	dir, job := setupModel(t, bigModel)
	stale := filepath.Join(dir, "split_model_gone.sql")
	if err := os.WriteFile(stale, []byte("select 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig
	if err := SplitOne(context.Background(), &cfg, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale output survived the split")
	}
}

func TestSplitOneDryRun(t *testing.T) {
	dir, job := setupModel(t, bigModel)
	cfg := DefaultConfig
	cfg.DryRun = true

	if err := SplitOne(context.Background(), &cfg, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "split_model.sql")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote files")
	}
}

func TestSplitOneMalformedScript(t *testing.T) {
	_, job := setupModel(t, "with a as (select 1")
	cfg := DefaultConfig

	err := SplitOne(context.Background(), &cfg, job)
	if err == nil {
		t.Fatal("expected error for unterminated body")
	}
	if !strings.Contains(err.Error(), "big_model.sql") {
		t.Fatalf("error does not name the file: %v", err)
	}
}

func TestRunJobsIsolatesFailures(t *testing.T) {
	goodDir, good := setupModel(t, "with a as (select 1) select * from a")
	_, bad := setupModel(t, "select 1") // no WITH, rejected

	cfg := DefaultConfig
	exitCode, err := RunJobs(context.Background(), &cfg, []config.Job{bad, good})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != 1 {
		t.Fatalf("exit code: got %d, want 1", exitCode)
	}

	// The good job still produced its outputs.
	if _, err := os.Stat(filepath.Join(goodDir, "split_model.sql")); err != nil {
		t.Fatalf("good job did not run: %v", err)
	}
}

func TestRunJobsParallel(t *testing.T) {
	var jobs []config.Job
	var dirs []string
	for i := 0; i < 4; i++ {
		dir, job := setupModel(t, "with a as (select 1) select * from a")
		dirs = append(dirs, dir)
		jobs = append(jobs, job)
	}

	cfg := DefaultConfig
	cfg.Parallelism = 4
	exitCode, err := RunJobs(context.Background(), &cfg, jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != 0 {
		t.Fatalf("exit code: got %d, want 0", exitCode)
	}
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, "split_model.sql")); err != nil {
			t.Fatalf("missing output in %s: %v", dir, err)
		}
	}
}

func TestRunJobsEmpty(t *testing.T) {
	cfg := DefaultConfig
	if _, err := RunJobs(context.Background(), &cfg, nil); err == nil {
		t.Fatal("expected error for empty job list")
	}
}

func TestApplyFlagsToConfig(t *testing.T) {
	cfg := DefaultConfig
	ApplyFlagsToConfig(&cfg, 8, true, true, true)
	if cfg.Parallelism != 8 || !cfg.DryRun || !cfg.Lenient || !cfg.Verbose {
		t.Fatalf("flags not applied: %+v", cfg)
	}

	cfg = DefaultConfig
	ApplyFlagsToConfig(&cfg, 0, false, false, false)
	if cfg.Parallelism != 1 {
		t.Fatalf("zero parallel flag must keep the default, got %d", cfg.Parallelism)
	}
}
