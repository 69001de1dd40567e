// Package certs generates the certificate authorities a Cluster API cluster
// expects to find before its control plane is created.
//
// The self-signed CAs use the signing helpers of k8s.io/client-go/util/cert,
// so they match what kubeadm would generate itself.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	certutil "k8s.io/client-go/util/cert"
	"k8s.io/client-go/util/keyutil"
)

// Kind selects which certificate authority to generate.
type Kind string

// The Cluster API secret suffix doubles as the kind value.
const (
	KindAPI            Kind = "ca"
	KindEtcd           Kind = "etcd"
	KindFrontProxy     Kind = "proxy"
	KindServiceAccount Kind = "sa"
)

// AllKinds lists every certificate authority a cluster needs.
var AllKinds = []Kind{KindAPI, KindEtcd, KindFrontProxy, KindServiceAccount}

const keyBits = 2048

var commonNames = map[Kind]string{
	KindAPI:        "kubernetes",
	KindEtcd:       "etcd-ca",
	KindFrontProxy: "front-proxy-ca",
}

// KeyPair holds PEM-encoded material stored under tls.crt and tls.key.
type KeyPair struct {
	// Cert is the CA certificate, or the public key for KindServiceAccount.
	Cert []byte
	// Key is the private key.
	Key []byte
}

// Generator produces certificate authority key pairs.
type Generator interface {
	Generate(kind Kind) (*KeyPair, error)
}

// RSAGenerator generates RSA based certificate authorities.
type RSAGenerator struct{}

// Generate creates a new key pair of the given kind.
func (RSAGenerator) Generate(kind Kind) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	keyPEM, err := keyutil.MarshalPrivateKeyToPEM(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}

	if kind == KindServiceAccount {
		pubDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encode public key: %w", err)
		}
		return &KeyPair{
			Cert: pem.EncodeToMemory(&pem.Block{Type: keyutil.PublicKeyBlockType, Bytes: pubDER}),
			Key:  keyPEM,
		}, nil
	}

	cn, ok := commonNames[kind]
	if !ok {
		return nil, fmt.Errorf("unknown certificate authority kind %q", kind)
	}

	cert, err := certutil.NewSelfSignedCACert(certutil.Config{CommonName: cn}, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s certificate authority: %w", kind, err)
	}

	return &KeyPair{
		Cert: pem.EncodeToMemory(&pem.Block{Type: certutil.CertificateBlockType, Bytes: cert.Raw}),
		Key:  keyPEM,
	}, nil
}
