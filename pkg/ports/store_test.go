package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/ports"
)

// MockStore is a minimal map-backed ArchiveStore used to validate the contract suite itself.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, doc []byte) error {
	m.data[sessionID] = append([]byte(nil), doc...)
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	doc, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrArchiveNotFound
	}
	return doc, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunArchiveStoreContract(t, NewMockStore())
}
