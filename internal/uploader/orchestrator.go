// Package uploader drives the upload of selected photos to cloud storage:
// one batch at a time, one task at a time, each task's failure isolated from
// the rest, with aggregate progress observable while the batch runs.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/commons-systems/photosync/internal/photo"
	"github.com/google/uuid"
)

// ErrInvalidDestinationName is returned when a task's destination name is
// empty or contains characters outside [A-Za-z0-9_.-].
var ErrInvalidDestinationName = errors.New("invalid destination name")

var destNameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateDestinationName checks a user-editable destination file name.
func ValidateDestinationName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidDestinationName)
	}
	if !destNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q contains disallowed characters", ErrInvalidDestinationName, name)
	}
	return nil
}

// Task is one photo to upload under a user-chosen destination name.
type Task struct {
	ID              string      `json:"id"`
	Photo           photo.Photo `json:"photo"`
	DestinationName string      `json:"destinationName"`
	Status          Status      `json:"status"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
}

// NewTask creates a pending upload task for the given photo.
func NewTask(p photo.Photo, destinationName string) *Task {
	return &Task{
		ID:              uuid.New().String(),
		Photo:           p,
		DestinationName: destinationName,
		Status:          StatusPending,
	}
}

// transition moves the task to the next status, enforcing the state machine.
func (t *Task) transition(to Status) error {
	if err := ValidateTransition(t.Status, to); err != nil {
		return err
	}
	t.Status = to
	return nil
}

// fail moves the task to its failed terminal state and records the message.
func (t *Task) fail(err error) {
	t.Status = StatusFailed
	t.ErrorMessage = err.Error()
}

// BatchResult is the aggregate outcome of a batch once every task is terminal.
type BatchResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Tasks     []*Task       `json:"tasks"`
	Duration  time.Duration `json:"-"`
}

// Progress is emitted after each task settles.
type Progress struct {
	TaskID    string `json:"taskId"`
	File      string `json:"file"`
	Status    Status `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

// CloudUploader is the slice of the cloud client the orchestrator needs.
type CloudUploader interface {
	Upload(ctx context.Context, path, sourceURL string, overwrite bool) error
}

// Orchestrator runs upload batches. Tasks run strictly sequentially, in input
// order: the underlying cloud API and the progress model assume one in-flight
// transfer, and a later task's failure must never affect an earlier success.
type Orchestrator struct {
	uploader  CloudUploader
	folder    string
	overwrite bool
	bufSize   int

	mu        sync.Mutex
	completed int
	total     int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFolder sets the destination folder prefixed to every task's name.
func WithFolder(folder string) Option {
	return func(o *Orchestrator) {
		o.folder = folder
	}
}

// WithOverwrite controls whether an upload replaces an existing file at the
// destination path. When false, a collision surfaces as that task's failure.
func WithOverwrite(overwrite bool) Option {
	return func(o *Orchestrator) {
		o.overwrite = overwrite
	}
}

// WithProgressBufferSize sets the progress channel buffer size.
func WithProgressBufferSize(size int) Option {
	return func(o *Orchestrator) {
		if size >= 0 {
			o.bufSize = size
		}
	}
}

// DefaultFolder is where uploads land when no folder is configured.
const DefaultFolder = "/photo-backup"

const defaultProgressBuffer = 100

// NewOrchestrator creates an upload orchestrator.
func NewOrchestrator(uploader CloudUploader, opts ...Option) (*Orchestrator, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	o := &Orchestrator{
		uploader: uploader,
		folder:   DefaultFolder,
		bufSize:  defaultProgressBuffer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Progress returns the completed and total task counts of the batch currently
// running (or the last one that ran).
func (o *Orchestrator) Progress() (completed, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.completed, o.total
}

// RunBatch executes the tasks sequentially and returns once every task has
// reached a terminal status. Per-task failures are captured on the task, never
// returned: succeeded+failed always equals total.
func (o *Orchestrator) RunBatch(ctx context.Context, tasks []*Task) (*BatchResult, error) {
	resultCh, progressCh := o.RunBatchAsync(ctx, tasks)
	go func() {
		for range progressCh {
			// Discard; callers wanting progress use RunBatchAsync.
		}
	}()
	return <-resultCh, nil
}

// RunBatchAsync executes the tasks in the background and returns result and
// progress channels. The progress channel receives one event per settled task
// and is closed together with the result channel.
func (o *Orchestrator) RunBatchAsync(ctx context.Context, tasks []*Task) (<-chan *BatchResult, <-chan Progress) {
	resultCh := make(chan *BatchResult, 1)
	progressCh := make(chan Progress, o.bufSize)

	o.mu.Lock()
	o.completed = 0
	o.total = len(tasks)
	o.mu.Unlock()

	go o.execute(ctx, tasks, resultCh, progressCh)
	return resultCh, progressCh
}

func (o *Orchestrator) execute(ctx context.Context, tasks []*Task, resultCh chan<- *BatchResult, progressCh chan<- Progress) {
	defer close(resultCh)
	defer close(progressCh)

	start := time.Now()
	result := &BatchResult{Total: len(tasks), Tasks: tasks}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			// The batch was abandoned. Remaining tasks still must settle.
			if !IsTerminal(task.Status) {
				task.fail(fmt.Errorf("batch abandoned: %w", err))
			}
		} else if err := o.runTask(ctx, task); err != nil {
			// runTask records the failure on the task; nothing propagates.
			log.Printf("WARNING: upload task %s failed: %v", task.ID, err)
		}

		o.settle(task, result, progressCh)
	}

	result.Duration = time.Since(start)
	resultCh <- result
}

// settle counts a terminal task and emits a progress event.
func (o *Orchestrator) settle(task *Task, result *BatchResult, progressCh chan<- Progress) {
	if task.Status == StatusSucceeded {
		result.Succeeded++
	} else {
		result.Failed++
	}

	o.mu.Lock()
	o.completed++
	completed, total := o.completed, o.total
	o.mu.Unlock()

	sendProgress(progressCh, Progress{
		TaskID:    task.ID,
		File:      task.DestinationName,
		Status:    task.Status,
		Completed: completed,
		Total:     total,
		Message:   task.ErrorMessage,
	})
}

// RunSingle re-submits one task, typically a failed one the user retries.
// The returned task is terminal.
func (o *Orchestrator) RunSingle(ctx context.Context, task *Task) (*Task, error) {
	if CanRetry(task.Status) {
		if err := task.transition(StatusPending); err != nil {
			return nil, err
		}
		task.ErrorMessage = ""
	}
	if task.Status != StatusPending {
		return nil, fmt.Errorf("task %s cannot be submitted from state %s", task.ID, task.Status)
	}

	o.mu.Lock()
	o.completed = 0
	o.total = 1
	o.mu.Unlock()

	if err := o.runTask(ctx, task); err != nil {
		log.Printf("WARNING: upload task %s failed: %v", task.ID, err)
	}
	o.mu.Lock()
	o.completed = 1
	o.mu.Unlock()
	return task, nil
}

// runTask takes one task from pending to a terminal status. Any returned
// error has already been recorded on the task.
func (o *Orchestrator) runTask(ctx context.Context, task *Task) error {
	if err := task.transition(StatusValidating); err != nil {
		task.fail(err)
		return err
	}

	if err := ValidateDestinationName(task.DestinationName); err != nil {
		task.fail(err)
		return err
	}

	if err := task.transition(StatusUploading); err != nil {
		task.fail(err)
		return err
	}

	path := o.destinationPath(task.DestinationName)
	if err := o.uploader.Upload(ctx, path, task.Photo.BestURL, o.overwrite); err != nil {
		task.fail(err)
		return err
	}

	return task.transition(StatusSucceeded)
}

func (o *Orchestrator) destinationPath(name string) string {
	return strings.TrimSuffix(o.folder, "/") + "/" + name
}

// sendProgress safely sends a progress update without ever blocking the
// upload loop.
func sendProgress(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
		log.Printf("WARNING: dropped progress event for task %s, channel full", p.TaskID)
	}
}
