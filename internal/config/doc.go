// Package config defines the driver configuration.
//
// The [Config] struct is loaded from a YAML file, completed with defaults and
// then overridden by MAGNUM_CAPI_* environment variables. OpenStack
// authentication itself is read from the standard OS_* variables by the
// credentials package.
package config
