package resources

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/certs"
	"github.com/imamik/magnum-capi/internal/util/naming"
)

// ClusterSecretType is the secret type Cluster API uses for cluster certificates.
const ClusterSecretType corev1.SecretType = "cluster.x-k8s.io/secret"

func (b *Builder) certificateAuthoritySecret(c v1alpha1.Cluster, kind certs.Kind, pair *certs.KeyPair) (*unstructured.Unstructured, error) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.CertificateAuthoritySecret(c.ID, string(kind)),
			Namespace: b.Namespace,
			Labels:    clusterLabels(c).Build(),
		},
		Type: ClusterSecretType,
		Data: map[string][]byte{
			corev1.TLSCertKey:       pair.Cert,
			corev1.TLSPrivateKeyKey: pair.Key,
		},
	}
	return fromTyped(SecretGVK, secret)
}
