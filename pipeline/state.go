package pipeline

import (
	"fmt"
	"log"
	"sync"
	"time"

	"shortsbot/config"
	"shortsbot/types"
)

// Manager holds run state with thread-safe access. It also serves as the
// run lock: only one run may be active at a time.
type Manager struct {
	mu sync.RWMutex

	currentState types.State
	running      bool
	runID        string
	startedAt    time.Time
	clipCount    int
	lastResult   *types.RunResult

	// Logs (ring buffer)
	logs    []types.LogEntry
	maxLogs int
	lastErr error
}

// NewManager creates an idle state manager
func NewManager() *Manager {
	return &Manager{
		currentState: types.StateIdle,
		logs:         make([]types.LogEntry, 0),
		maxLogs:      config.MaxRunLogs,
	}
}

// Begin claims the run lock. It returns false when a run is already active.
func (m *Manager) Begin(runID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return false
	}
	m.running = true
	m.runID = runID
	m.startedAt = time.Now()
	m.clipCount = 0
	m.lastErr = nil
	m.currentState = types.StateFinding
	m.appendLog(fmt.Sprintf("Run %s started", runID))
	return true
}

// Complete records a successful run and releases the lock
func (m *Manager) Complete(result types.RunResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.currentState = types.StateComplete
	m.lastResult = &result
	m.appendLog(fmt.Sprintf("Run %s complete", result.RunID))
}

// Fail records the run error and releases the lock
func (m *Manager) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.currentState = types.StateError
	m.lastErr = err
	m.appendLog(fmt.Sprintf("Error: %v", err))
}

// AddLog adds a log entry and mirrors it to the process log
func (m *Manager) AddLog(message string) {
	log.Println(message)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLog(message)
}

// SetState sets the current stage
func (m *Manager) SetState(state types.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = state
}

// GetState gets the current stage
func (m *Manager) GetState() types.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// Running reports whether a run holds the lock
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// SetClipCount records how many clips the current run is working with
func (m *Manager) SetClipCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clipCount = n
}

// GetStatus returns a snapshot of the current state
func (m *Manager) GetStatus() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := types.StatusResponse{
		State:      m.currentState,
		RunID:      m.runID,
		Logs:       append([]types.LogEntry{}, m.logs...),
		ClipCount:  m.clipCount,
		LastResult: m.lastResult,
	}
	if !m.startedAt.IsZero() {
		started := m.startedAt
		resp.StartedAt = &started
	}
	if m.lastErr != nil {
		resp.Error = m.lastErr.Error()
	}
	return resp
}

// appendLog must be called with the lock held
func (m *Manager) appendLog(message string) {
	m.logs = append(m.logs, types.LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}
