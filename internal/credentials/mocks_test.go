package credentials

import (
	"context"
	"sync"
)

// MockIdentity is a mock implementation of IdentityAPI for testing.
type MockIdentity struct {
	mu sync.Mutex

	CreateFunc     func(ctx context.Context, userID, name, description string) (*Credential, error)
	FindByNameFunc func(ctx context.Context, userID, name string) (Lookup, error)
	DeleteFunc     func(ctx context.Context, userID, id string) error

	CreateCalls     []string
	FindByNameCalls []string
	DeleteCalls     []string
}

func (m *MockIdentity) Create(ctx context.Context, userID, name, description string) (*Credential, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, name)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, name, description)
	}
	return &Credential{ID: "cred-" + name, Name: name, Secret: "s3cr3t"}, nil
}

func (m *MockIdentity) FindByName(ctx context.Context, userID, name string) (Lookup, error) {
	m.mu.Lock()
	m.FindByNameCalls = append(m.FindByNameCalls, name)
	m.mu.Unlock()

	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, userID, name)
	}
	return Lookup{State: NotFound}, nil
}

func (m *MockIdentity) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}
