package runner

import (
	"context"
	"sync"
	"time"

	"github.com/cybertec-postgresql/ctesplit/internal/logger"
)

// Task is one independent unit of batch work, typically the full split of
// a single model. Tasks share no mutable state, so any number may run at
// once.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one task, in the order tasks were submitted.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Pool runs batch tasks with a bounded number of workers
type Pool struct {
	maxWorkers int
}

// NewPool creates a worker pool with the given concurrency limit
func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{maxWorkers: maxWorkers}
}

// Execute runs all tasks and returns their results in submission order
func (p *Pool) Execute(ctx context.Context, tasks []Task) []Result {
	numTasks := len(tasks)
	if numTasks == 0 {
		return nil
	}

	// With one worker or one task there is nothing to fan out.
	if p.maxWorkers == 1 || numTasks == 1 {
		return p.executeSequential(ctx, tasks)
	}

	logger.Debugf("starting parallel execution with %d workers for %d jobs", p.maxWorkers, numTasks)

	jobs := make(chan *job, numTasks)
	results := make(chan *jobResult, numTasks)

	var wg sync.WaitGroup
	for i := 0; i < p.maxWorkers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, jobs, results, &wg)
	}

	for i := range tasks {
		jobs <- &job{task: &tasks[i], index: i}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]Result, numTasks)
	for r := range results {
		ordered[r.index] = r.result
	}
	return ordered
}

func (p *Pool) executeSequential(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	for i := range tasks {
		results[i] = runOne(ctx, &tasks[i])
	}
	return results
}

// job represents a single task to execute
type job struct {
	task  *Task
	index int
}

// jobResult carries one task's result back with its submission index
type jobResult struct {
	result Result
	index  int
}

// worker is the goroutine that processes batch jobs
func (p *Pool) worker(ctx context.Context, workerID int, jobs <-chan *job, results chan<- *jobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		logger.Debugf("worker %d: running %s", workerID, j.task.Name)
		results <- &jobResult{
			result: runOne(ctx, j.task),
			index:  j.index,
		}
	}
}

// runOne executes a single task, honoring prior context cancellation
func runOne(ctx context.Context, t *Task) Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{Name: t.Name, Err: err}
	}
	err := t.Run(ctx)
	return Result{Name: t.Name, Err: err, Duration: time.Since(start)}
}
