package resources

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/credentials"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// Keys of the cloud config secret.
const (
	CloudsYAMLKey = "clouds.yaml"
	CloudConfKey  = "cloud.conf"
	CACertKey     = "cacert"

	// CloudName is the clouds.yaml entry the providers are pointed at.
	CloudName = "default"

	cloudConfPath = "/etc/kubernetes/cloud.conf"
	caCertPath    = "/etc/kubernetes/cloud-ca.crt"
)

type cloudsFile struct {
	Clouds map[string]cloudEntry `json:"clouds"`
}

type cloudEntry struct {
	Auth               cloudAuth `json:"auth"`
	AuthType           string    `json:"auth_type"`
	RegionName         string    `json:"region_name,omitempty"`
	Interface          string    `json:"interface,omitempty"`
	IdentityAPIVersion int       `json:"identity_api_version"`
}

type cloudAuth struct {
	AuthURL                     string `json:"auth_url"`
	ApplicationCredentialID     string `json:"application_credential_id"`
	ApplicationCredentialSecret string `json:"application_credential_secret"`
}

func (b *Builder) cloudsYAML(cred *credentials.Credential) ([]byte, error) {
	entry := cloudEntry{
		Auth: cloudAuth{
			AuthURL:                     b.AuthURL,
			ApplicationCredentialID:     cred.ID,
			ApplicationCredentialSecret: cred.Secret,
		},
		AuthType:           "v3applicationcredential",
		RegionName:         b.RegionName,
		Interface:          b.Interface,
		IdentityAPIVersion: 3,
	}
	data, err := yaml.Marshal(cloudsFile{Clouds: map[string]cloudEntry{CloudName: entry}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clouds.yaml: %w", err)
	}
	return data, nil
}

// cloudConf renders the INI file read by the in-tree style cloud provider
// configuration of the OpenStack cloud controller manager.
func (b *Builder) cloudConf(cred *credentials.Credential) string {
	var sb strings.Builder
	sb.WriteString("[Global]\n")
	fmt.Fprintf(&sb, "auth-url=%s\n", b.AuthURL)
	fmt.Fprintf(&sb, "region=%s\n", b.RegionName)
	fmt.Fprintf(&sb, "application-credential-id=%s\n", cred.ID)
	fmt.Fprintf(&sb, "application-credential-secret=%s\n", cred.Secret)
	if b.CACert != "" {
		fmt.Fprintf(&sb, "ca-file=%s\n", caCertPath)
	}
	return sb.String()
}

func (b *Builder) cloudConfigSecret(c v1alpha1.Cluster, cred *credentials.Credential) (*unstructured.Unstructured, error) {
	clouds, err := b.cloudsYAML(cred)
	if err != nil {
		return nil, err
	}

	data := map[string][]byte{
		CloudsYAMLKey: clouds,
		CloudConfKey:  []byte(b.cloudConf(cred)),
	}
	if b.CACert != "" {
		data[CACertKey] = []byte(b.CACert)
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.CloudConfigSecret(c.ID),
			Namespace: b.Namespace,
			Labels:    clusterLabels(c).Build(),
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
	return fromTyped(SecretGVK, secret)
}

// cloudConfigFiles are the kubeadm file entries that materialize cloud.conf,
// and the CA bundle it points at, on every machine from the cloud config secret.
func (b *Builder) cloudConfigFiles(c v1alpha1.Cluster) []interface{} {
	files := []interface{}{secretFile(c, cloudConfPath, CloudConfKey)}
	if b.CACert != "" {
		files = append(files, secretFile(c, caCertPath, CACertKey))
	}
	return files
}

func secretFile(c v1alpha1.Cluster, path, key string) map[string]interface{} {
	return map[string]interface{}{
		"path":        path,
		"owner":       "root:root",
		"permissions": "0600",
		"contentFrom": map[string]interface{}{
			"secret": map[string]interface{}{
				"name": naming.CloudConfigSecret(c.ID),
				"key":  key,
			},
		},
	}
}
