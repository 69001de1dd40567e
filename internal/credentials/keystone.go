package credentials

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/applicationcredentials"

	"github.com/imamik/magnum-capi/internal/config"
)

// Keystone implements IdentityAPI with OpenStack application credentials.
type Keystone struct {
	client  *gophercloud.ServiceClient
	authURL string
}

// NewKeystone authenticates against Keystone using the standard OS_*
// environment variables, with the auth URL optionally overridden by cfg.
func NewKeystone(ctx context.Context, cfg config.OpenStackConfig) (*Keystone, error) {
	opts, err := openstack.AuthOptionsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenStack auth options: %w", err)
	}
	if cfg.AuthURL != "" {
		opts.IdentityEndpoint = cfg.AuthURL
	}
	opts.AllowReauth = true

	provider, err := openstack.AuthenticatedClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with OpenStack: %w", err)
	}

	identity, err := openstack.NewIdentityV3(provider, gophercloud.EndpointOpts{
		Region:       cfg.RegionName,
		Availability: gophercloud.Availability(cfg.Interface),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}

	return NewKeystoneFromClient(identity, opts.IdentityEndpoint), nil
}

// NewKeystoneFromClient wraps an existing identity service client.
func NewKeystoneFromClient(client *gophercloud.ServiceClient, authURL string) *Keystone {
	return &Keystone{client: client, authURL: authURL}
}

// AuthURL is the identity endpoint embedded in the cluster cloud config.
func (k *Keystone) AuthURL() string {
	return k.authURL
}

// Create creates an application credential owned by userID.
func (k *Keystone) Create(ctx context.Context, userID, name, description string) (*Credential, error) {
	ac, err := applicationcredentials.Create(ctx, k.client, userID, applicationcredentials.CreateOpts{
		Name:        name,
		Description: description,
	}).Extract()
	if err != nil {
		if gophercloud.ResponseCodeIs(err, http.StatusConflict) {
			return nil, fmt.Errorf("%s: %w", name, ErrCredentialExists)
		}
		return nil, err
	}
	return &Credential{ID: ac.ID, Name: ac.Name, Secret: ac.Secret}, nil
}

// FindByName looks up an application credential by name.
func (k *Keystone) FindByName(ctx context.Context, userID, name string) (Lookup, error) {
	pages, err := applicationcredentials.List(k.client, userID, applicationcredentials.ListOpts{Name: name}).AllPages(ctx)
	if err != nil {
		if gophercloud.ResponseCodeIs(err, http.StatusNotFound) {
			return Lookup{State: NotFound}, nil
		}
		return Lookup{}, err
	}

	creds, err := applicationcredentials.ExtractApplicationCredentials(pages)
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to parse application credentials: %w", err)
	}

	for _, ac := range creds {
		if ac.Name == name {
			return Lookup{State: Found, Credential: &Credential{ID: ac.ID, Name: ac.Name}}, nil
		}
	}
	return Lookup{State: NotFound}, nil
}

// Delete deletes an application credential.
func (k *Keystone) Delete(ctx context.Context, userID, id string) error {
	err := applicationcredentials.Delete(ctx, k.client, userID, id).ExtractErr()
	if gophercloud.ResponseCodeIs(err, http.StatusNotFound) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return err
}
