package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

// Store owns session persistence and lifecycle: id generation, an in-memory
// index over one JSON record per session, archival, and the transition
// entry points the orchestration layer calls. Every mutating operation is
// durably saved before its result is returned, and writes for a given
// session id are serialized so concurrent transitions cannot produce an
// out-of-order save.
type Store struct {
	baseDir    string // active records: <configPath>/sessions
	archiveDir string // archived records: <configPath>/sessions/archive
	retry      RetryPolicy
	classifier StepClassifier

	mu    sync.Mutex
	cache map[string]*Session
	locks map[string]*sync.Mutex
}

// NewStore creates a session store rooted at configPath (typically
// ~/.sherpa) and ensures the sessions and archive directories exist.
func NewStore(configPath string) (*Store, error) {
	baseDir := filepath.Join(configPath, "sessions")
	archiveDir := filepath.Join(baseDir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directories: %w", err)
	}

	return &Store{
		baseDir:    baseDir,
		archiveDir: archiveDir,
		retry:      DefaultRetryPolicy(),
		cache:      make(map[string]*Session),
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// SetClassifier sets the step classifier attached to sessions created or
// loaded by this store.
func (st *Store) SetClassifier(c StepClassifier) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.classifier = c
	for _, s := range st.cache {
		s.SetClassifier(c)
	}
}

// SetRetryPolicy overrides the persistence retry policy.
func (st *Store) SetRetryPolicy(p RetryPolicy) { st.retry = p }

func (st *Store) lockFor(id string) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()
	l, ok := st.locks[id]
	if !ok {
		l = &sync.Mutex{}
		st.locks[id] = l
	}
	return l
}

func (st *Store) activePath(id string) string {
	return filepath.Join(st.baseDir, id+".json")
}

func (st *Store) archivePath(id string) string {
	return filepath.Join(st.archiveDir, id+".json")
}

// Create builds a new session from the workflow source's (name, steps)
// pairs, assigns it a fresh id, and persists it. Only shape is validated;
// step semantics never are.
func (st *Store) Create(prompt string, workflows []InitialWorkflow, cfg *Config) (*Session, error) {
	if len(workflows) == 0 {
		return nil, fmt.Errorf("session needs at least one workflow")
	}
	for _, wf := range workflows {
		if strings.TrimSpace(wf.Name) == "" {
			return nil, fmt.Errorf("workflow name must not be empty")
		}
	}

	s := New(prompt, workflows, cfg)
	s.SetClassifier(st.classifier)

	// Re-roll the id on the off chance it collides with an existing record,
	// active or archived.
	for attempts := 0; st.idExists(s.ID); attempts++ {
		if attempts > 10 {
			return nil, fmt.Errorf("failed to generate a unique session id")
		}
		s.ID = newSessionID()
	}

	if err := st.save(s); err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.cache[s.ID] = s
	st.mu.Unlock()

	return s, nil
}

func (st *Store) idExists(id string) bool {
	st.mu.Lock()
	_, cached := st.cache[id]
	st.mu.Unlock()
	if cached {
		return true
	}
	if _, err := os.Stat(st.activePath(id)); err == nil {
		return true
	}
	if _, err := os.Stat(st.archivePath(id)); err == nil {
		return true
	}
	return false
}

// Get returns the session with the given id, loading it from disk on a
// cache miss.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	s, ok := st.cache[id]
	st.mu.Unlock()
	if ok {
		return s, nil
	}

	s, err := st.loadFromDisk(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.cache[id] = s
	st.mu.Unlock()
	return s, nil
}

func (st *Store) loadFromDisk(id string) (*Session, error) {
	var data []byte
	err := retryIO(st.retry, func() error {
		var readErr error
		data, readErr = os.ReadFile(st.activePath(id))
		return readErr
	})
	if os.IsNotExist(err) {
		return nil, notFoundError(id)
	}
	if err != nil {
		return nil, persistenceError(id, err)
	}

	if err := validateRecord(data); err != nil {
		return nil, corruptionError(id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, corruptionError(id, err)
	}

	// The schema catches shape problems; cursor bounds are a semantic
	// invariant checked here.
	for _, frame := range s.WorkflowStack {
		if frame.CurrentStep < 0 || frame.CurrentStep > len(frame.Steps) {
			return nil, corruptionError(id, fmt.Errorf(
				"frame %q cursor %d out of range [0,%d]",
				frame.WorkflowName, frame.CurrentStep, len(frame.Steps)))
		}
		if frame.Context == nil {
			frame.Context = make(map[string]any)
		}
	}

	s.SetClassifier(st.classifier)
	return &s, nil
}

// Save persists a session. Callers that obtained the session from this
// store should prefer the transition methods below, which persist
// automatically.
func (st *Store) Save(s *Session) error {
	l := st.lockFor(s.ID)
	l.Lock()
	defer l.Unlock()
	return st.save(s)
}

func (st *Store) save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return persistenceError(s.ID, fmt.Errorf("failed to marshal session: %w", err))
	}

	err = retryIO(st.retry, func() error {
		return os.WriteFile(st.activePath(s.ID), data, 0644)
	})
	if err != nil {
		return persistenceError(s.ID, fmt.Errorf("failed to write session file: %w", err))
	}
	return nil
}

// List returns the ids of all active (non-archived) sessions.
func (st *Store) List() ([]string, error) {
	entries, err := os.ReadDir(st.baseDir)
	if err != nil {
		return nil, persistenceError("", fmt.Errorf("failed to list session directory: %w", err))
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadAll bulk-loads every active session into the cache. Corrupt records
// are logged and skipped so one bad file cannot prevent the others from
// loading. Returns the number of sessions loaded.
func (st *Store) LoadAll() (int, error) {
	ids, err := st.List()
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, id := range ids {
		if _, err := st.Get(id); err != nil {
			log.Printf("⚠️  Skipping session %s: %v", id, err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Sessions returns every loadable active session. Unreadable records are
// skipped, mirroring LoadAll.
func (st *Store) Sessions() ([]*Session, error) {
	ids, err := st.List()
	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		s, err := st.Get(id)
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Archive moves a session's record from the active set to the archive area.
// The record is never deleted and never overwritten; if the move fails the
// session stays active and the failure is returned.
func (st *Store) Archive(id string) error {
	l := st.lockFor(id)
	l.Lock()
	defer l.Unlock()

	if _, err := os.Stat(st.activePath(id)); os.IsNotExist(err) {
		return notFoundError(id)
	}
	if _, err := os.Stat(st.archivePath(id)); err == nil {
		return persistenceError(id, fmt.Errorf("archive record already exists"))
	}

	err := retryIO(st.retry, func() error {
		return os.Rename(st.activePath(id), st.archivePath(id))
	})
	if err != nil {
		return persistenceError(id, fmt.Errorf("failed to archive session: %w", err))
	}

	st.mu.Lock()
	delete(st.cache, id)
	st.mu.Unlock()
	return nil
}

// CleanupOlderThan archives every active session created longer than age
// ago. Returns the archived ids.
func (st *Store) CleanupOlderThan(age time.Duration) ([]string, error) {
	sessions, err := st.Sessions()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-age)
	var archived []string
	for _, s := range sessions {
		if !s.CreatedAt.Before(cutoff) {
			continue
		}
		if err := st.Archive(s.ID); err != nil {
			log.Printf("⚠️  Failed to archive session %s: %v", s.ID, err)
			continue
		}
		archived = append(archived, s.ID)
	}
	return archived, nil
}

// HealthSummary aggregates session counts for the health dashboard.
type HealthSummary struct {
	Total     int       `json:"total_sessions"`
	Active    int       `json:"active_sessions"`
	Completed int       `json:"completed_sessions"`
	Dormant   int       `json:"dormant_sessions"`
	Stale     int       `json:"stale_sessions"`
	Timestamp time.Time `json:"timestamp"`
}

// Health classifies every active session against the given thresholds.
func (st *Store) Health(th Thresholds) (HealthSummary, error) {
	sessions, err := st.Sessions()
	if err != nil {
		return HealthSummary{}, err
	}

	now := time.Now()
	summary := HealthSummary{Total: len(sessions), Timestamp: now}
	for _, s := range sessions {
		if s.IsComplete() {
			summary.Completed++
			continue
		}
		summary.Active++
		switch {
		case th.IsStale(s, now):
			summary.Stale++
		case th.IsDormant(s, now):
			summary.Dormant++
		}
	}
	return summary, nil
}

// Transition entry points. All mutation of a stored session goes through
// these: each applies the state-machine operation, persists the session,
// and returns a JSON-serializable result. Expected failures (unknown id,
// invalid transition) come back as Success=false results, not errors.

// CurrentStep reports the session's current step without mutating it.
func (st *Store) CurrentStep(id string) Result {
	s, err := st.Get(id)
	if err != nil {
		return failure(id, err)
	}
	return resultFor(s)
}

// AdvanceStep advances the active frame, popping it if it completes. The
// parent frame resumes at whatever cursor it was left at.
func (st *Store) AdvanceStep(id string) Result {
	return st.transition(id, func(s *Session) error {
		if s.CurrentFrame() == nil {
			return invalidTransition(id, "session is already complete")
		}
		s.AdvanceStep()
		return nil
	})
}

// BackStep moves the active frame back one step.
func (st *Store) BackStep(id string) Result {
	return st.transition(id, func(s *Session) error {
		if !s.BackStep() {
			return invalidTransition(id, "already at the first step of the active workflow")
		}
		return nil
	})
}

// BreakWorkflow pops the active frame; the root workflow cannot be broken.
func (st *Store) BreakWorkflow(id string) Result {
	return st.transition(id, func(s *Session) error {
		if !s.BreakWorkflow() {
			return invalidTransition(id, "cannot break out of the root workflow")
		}
		return nil
	})
}

// RestartSession resets every frame in the stack to step 0.
func (st *Store) RestartSession(id string) Result {
	return st.transition(id, func(s *Session) error {
		s.RestartSession()
		return nil
	})
}

// PushWorkflow nests a new workflow on top of the session's stack.
func (st *Store) PushWorkflow(id, name string, steps []workflow.Step, context map[string]any) Result {
	return st.transition(id, func(s *Session) error {
		if strings.TrimSpace(name) == "" {
			return invalidTransition(id, "workflow name must not be empty")
		}
		s.PushWorkflow(name, steps, context)
		return nil
	})
}

func (st *Store) transition(id string, apply func(*Session) error) Result {
	l := st.lockFor(id)
	l.Lock()
	defer l.Unlock()

	s, err := st.Get(id)
	if err != nil {
		return failure(id, err)
	}

	if err := apply(s); err != nil {
		return failure(id, err)
	}

	if err := st.save(s); err != nil {
		return failure(id, err)
	}
	return resultFor(s)
}
