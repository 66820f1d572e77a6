package ledger

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/model"
)

// Ledger records the lifecycle of orchestrator tasks in insertion order.
type Ledger struct {
	mu    sync.RWMutex
	tasks []*model.Task
	index map[string]*model.Task

	// IDGenerator produces task ids. Tests replace it for predictable ids.
	IDGenerator func() string
}

func New() *Ledger {
	return &Ledger{
		index:       make(map[string]*model.Task),
		IDGenerator: NewTaskID,
	}
}

// NewTaskID returns an id of the form task_<unix millis>_<9 base36 chars>.
func NewTaskID() string {
	var sb strings.Builder
	for i := 0; i < 9; i++ {
		sb.WriteString(strconv.FormatInt(rand.Int64N(36), 36))
	}
	return fmt.Sprintf("task_%d_%s", time.Now().UnixMilli(), sb.String())
}

// Create builds a pending task with a fresh id. It is not recorded until Add.
func (l *Ledger) Create(taskType model.TaskType, description string) model.Task {
	return model.NewTask(l.IDGenerator(), taskType, description)
}

// Add appends the task with status executing and returns the stored copy.
func (l *Ledger) Add(task model.Task) model.Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := task
	t.Status = model.TaskExecuting
	l.tasks = append(l.tasks, &t)
	l.index[t.ID] = &t
	return t
}

// Complete transitions an executing task to completed and attaches result.
func (l *Ledger) Complete(id string, result any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrTaskNotFound, id)
	}
	t.Status = model.TaskCompleted
	t.Result = result
	return nil
}

// Fail marks the task failed with the cause.
func (l *Ledger) Fail(id string, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrTaskNotFound, id)
	}
	t.Status = model.TaskFailed
	if cause != nil {
		t.Error = cause.Error()
	}
	return nil
}

func (l *Ledger) Get(id string) (model.Task, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.index[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", common.ErrTaskNotFound, id)
	}
	return *t, nil
}

// Tasks returns a snapshot of all tasks in insertion order.
func (l *Ledger) Tasks() []model.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Task, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = *t
	}
	return out
}

// InFlight returns the tasks still executing.
func (l *Ledger) InFlight() []model.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Task
	for _, t := range l.tasks {
		if t.Status == model.TaskExecuting {
			out = append(out, *t)
		}
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}
