package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errClusterNameRequired = errors.New("cluster name is required")
	errClusterNameInvalid  = errors.New("cluster name must be 1-32 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errUserIDRequired      = errors.New("user id is required")
	errFlavorRequired      = errors.New("flavor is required")
	errNameserverInvalid   = errors.New("invalid nameserver address (expected an IPv4 or IPv6 address)")
)
