package store

import (
	"fmt"
	"sync"

	"cryptocomm/internal/domain"
)

// DeploymentFileStore reads and writes the deployment record produced by the
// bootstrap tool. Unlike the other stores it addresses a single file, since
// the record is usually shared between machines.
type DeploymentFileStore struct {
	path string
	mu   sync.Mutex
}

// NewDeploymentFileStore returns a store backed by the file at path.
func NewDeploymentFileStore(path string) *DeploymentFileStore {
	return &DeploymentFileStore{path: path}
}

// Path returns the backing file path.
func (s *DeploymentFileStore) Path() string { return s.path }

// SaveDeployment writes d to disk.
func (s *DeploymentFileStore) SaveDeployment(d domain.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return save(s.path, d, 0o644)
}

// LoadDeployment returns the deployment and whether the file was present.
func (s *DeploymentFileStore) LoadDeployment() (domain.Deployment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d domain.Deployment
	ok, err := load(s.path, &d)
	if err != nil || !ok {
		return domain.Deployment{}, false, err
	}
	if d.IdentityRegistry == (domain.Address{}) || d.MessageLedger == (domain.Address{}) {
		return domain.Deployment{}, false, fmt.Errorf("deployment file %s is missing a contract address", s.path)
	}
	return d, true, nil
}

// Compile-time assertion that DeploymentFileStore implements domain.DeploymentStore.
var _ domain.DeploymentStore = (*DeploymentFileStore)(nil)
