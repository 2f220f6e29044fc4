package store

import (
	"path/filepath"
	"sync"

	"cryptocomm/internal/domain"
)

const agentStateFile = "agent.json"

// AgentFileStore persists the signing agent's authorized accounts and
// selected network.
type AgentFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewAgentFileStore returns an AgentFileStore rooted at dir.
func NewAgentFileStore(dir string) *AgentFileStore {
	return &AgentFileStore{dir: dir}
}

// SaveAgentState stores state, replacing the previous one.
func (s *AgentFileStore) SaveAgentState(state domain.AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return save(filepath.Join(s.dir, agentStateFile), state, 0o600)
}

// LoadAgentState returns the stored state and whether one was present.
func (s *AgentFileStore) LoadAgentState() (domain.AgentState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state domain.AgentState
	ok, err := load(filepath.Join(s.dir, agentStateFile), &state)
	if err != nil || !ok {
		return domain.AgentState{}, false, err
	}
	return state, true, nil
}

// Compile-time assertion that AgentFileStore implements domain.AgentStateStore.
var _ domain.AgentStateStore = (*AgentFileStore)(nil)
