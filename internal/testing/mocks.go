package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/magnum-capi/internal/credentials"
)

// MockIdentity is a mock implementation of credentials.IdentityAPI.
type MockIdentity struct {
	mock.Mock
}

var _ credentials.IdentityAPI = (*MockIdentity)(nil)

// Create creates a mock credential.
func (m *MockIdentity) Create(ctx context.Context, userID, name, description string) (*credentials.Credential, error) {
	args := m.Called(ctx, userID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentials.Credential), args.Error(1)
}

// FindByName looks up a mock credential.
func (m *MockIdentity) FindByName(ctx context.Context, userID, name string) (credentials.Lookup, error) {
	args := m.Called(ctx, userID, name)
	return args.Get(0).(credentials.Lookup), args.Error(1)
}

// Delete deletes a mock credential.
func (m *MockIdentity) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// NewMockIdentity creates a MockIdentity with no credentials.
func NewMockIdentity() *MockIdentity {
	return &MockIdentity{}
}

// WithIssuable configures the mock so that a credential for clusterID can be issued once.
func (m *MockIdentity) WithIssuable(userID, clusterID string) *MockIdentity {
	m.On("FindByName", mock.Anything, userID, clusterID).
		Return(credentials.Lookup{State: credentials.NotFound}, nil).Once()
	m.On("Create", mock.Anything, userID, clusterID, mock.Anything).
		Return(&credentials.Credential{ID: clusterID + "-cred", Name: clusterID, Secret: "secret"}, nil).Once()
	return m
}

// WithExisting configures the mock to report an existing credential for clusterID.
func (m *MockIdentity) WithExisting(userID, clusterID string) *MockIdentity {
	m.On("FindByName", mock.Anything, userID, clusterID).
		Return(credentials.Lookup{
			State:      credentials.Found,
			Credential: &credentials.Credential{ID: clusterID + "-cred", Name: clusterID},
		}, nil)
	return m
}

// WithRevocable configures the mock to delete the existing credential of clusterID.
func (m *MockIdentity) WithRevocable(userID, clusterID string) *MockIdentity {
	m.WithExisting(userID, clusterID)
	m.On("Delete", mock.Anything, userID, clusterID+"-cred").Return(nil)
	return m
}

// WithAbsent configures the mock to never find a credential for clusterID.
func (m *MockIdentity) WithAbsent(userID, clusterID string) *MockIdentity {
	m.On("FindByName", mock.Anything, userID, clusterID).
		Return(credentials.Lookup{State: credentials.NotFound}, nil)
	return m
}
