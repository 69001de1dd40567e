package credentials

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/magnum-capi/internal/metrics"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// ErrCredentialExists is returned by Issue when the cluster already has a credential.
var ErrCredentialExists = errors.New("credential already exists")

// ErrNotFound is returned by IdentityAPI implementations when the credential is absent.
var ErrNotFound = errors.New("credential not found")

// Credential is a scoped, revocable access grant for one cluster.
type Credential struct {
	ID     string
	Name   string
	Secret string
}

// LookupState distinguishes a found credential from a legitimately absent one.
type LookupState int

const (
	NotFound LookupState = iota
	Found
)

// Lookup is the result of a find-by-name. Failures other than absence are
// returned as errors next to it.
type Lookup struct {
	State      LookupState
	Credential *Credential
}

// IdentityAPI is the subset of the identity service the manager needs.
type IdentityAPI interface {
	// Create creates a credential owned by userID.
	Create(ctx context.Context, userID, name, description string) (*Credential, error)

	// FindByName looks up a credential of userID by name.
	FindByName(ctx context.Context, userID, name string) (Lookup, error)

	// Delete deletes a credential, returning an error wrapping ErrNotFound when absent.
	Delete(ctx context.Context, userID, id string) error
}

// Manager issues and revokes cluster credentials.
type Manager struct {
	api IdentityAPI
}

// NewManager creates a Manager on top of an identity API.
func NewManager(api IdentityAPI) *Manager {
	return &Manager{api: api}
}

// Issue creates the credential of a cluster.
func (m *Manager) Issue(ctx context.Context, userID, clusterID string) (cred *Credential, err error) {
	defer func() { metrics.RecordCredentialRequest("issue", err) }()

	name := naming.CredentialName(clusterID)

	existing, err := m.api.FindByName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential %s: %w", name, err)
	}
	if existing.State == Found {
		return nil, fmt.Errorf("cluster %s: %w", clusterID, ErrCredentialExists)
	}

	cred, err = m.api.Create(ctx, userID, name, naming.CredentialDescription(clusterID))
	if err != nil {
		return nil, fmt.Errorf("failed to create credential %s: %w", name, err)
	}

	log.FromContext(ctx).Info("issued cluster credential", "cluster", clusterID, "credential", cred.ID)
	return cred, nil
}

// Revoke deletes the credential of a cluster. A credential that was never
// created or is already gone is not an error.
func (m *Manager) Revoke(ctx context.Context, userID, clusterID string) (err error) {
	defer func() { metrics.RecordCredentialRequest("revoke", err) }()

	logger := log.FromContext(ctx)
	name := naming.CredentialName(clusterID)

	existing, err := m.api.FindByName(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("failed to look up credential %s: %w", name, err)
	}

	switch existing.State {
	case NotFound:
		logger.V(1).Info("cluster credential already revoked", "cluster", clusterID)
		return nil
	case Found:
		if err := m.api.Delete(ctx, userID, existing.Credential.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to delete credential %s: %w", name, err)
		}
	}

	logger.Info("revoked cluster credential", "cluster", clusterID)
	return nil
}
