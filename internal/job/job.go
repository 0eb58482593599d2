// Package job tracks in-flight tutorial generation jobs in memory. Jobs
// are not persisted; a restart forgets them.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"repotutor/internal/tutorial"
)

// Status is the lifecycle state of a generation job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusFetching   Status = "fetching"
	StatusGenerating Status = "generating"
	StatusResolving  Status = "resolving"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned for unknown job IDs.
var ErrNotFound = errors.New("job: not found")

// Job is one tutorial generation request. Result is set only in
// StatusDone; Error only in StatusFailed.
type Job struct {
	ID        string             `json:"job_id"`
	Owner     string             `json:"owner"`
	Repo      string             `json:"repo"`
	Status    Status             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Result    *tutorial.Tutorial `json:"result,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsTerminal reports whether the job reached a final state.
func (j Job) IsTerminal() bool {
	return j.Status == StatusDone || j.Status == StatusFailed
}

// Manager is a mutex-guarded in-memory job store with per-job
// subscription channels for progress push.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	subs map[string][]chan Job
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
		subs: make(map[string][]chan Job),
	}
}

// Create registers a new queued job and returns its snapshot.
func (m *Manager) Create(owner, repo string) Job {
	now := time.Now()
	j := &Job{
		ID:        uuid.New().String(),
		Owner:     owner,
		Repo:      repo,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()
	return *j
}

// Get returns a snapshot of the job.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

// SetStatus advances the job's lifecycle state.
func (m *Manager) SetStatus(id string, s Status) {
	m.update(id, func(j *Job) { j.Status = s })
}

// SetResult marks the job done with its finished tutorial.
func (m *Manager) SetResult(id string, t *tutorial.Tutorial) {
	m.update(id, func(j *Job) {
		j.Status = StatusDone
		j.Result = t
	})
}

// SetError marks the job failed.
func (m *Manager) SetError(id string, err error) {
	m.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
	})
}

func (m *Manager) update(id string, apply func(*Job)) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	apply(j)
	j.UpdatedAt = time.Now()
	snapshot := *j
	subs := m.subs[id]
	if snapshot.IsTerminal() {
		delete(m.subs, id)
	}
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber; it will catch up from the next update or
			// fetch the final state over GET.
		}
		if snapshot.IsTerminal() {
			close(ch)
		}
	}
}

// Subscribe returns a channel of job snapshots, closed after the terminal
// update. A job already in a terminal state yields one snapshot and an
// immediately closed channel.
func (m *Manager) Subscribe(id string) (<-chan Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	ch := make(chan Job, 8)
	if j.IsTerminal() {
		ch <- *j
		close(ch)
		return ch, nil
	}
	m.subs[id] = append(m.subs[id], ch)
	return ch, nil
}
