package driver

import (
	"sync"

	"github.com/imamik/magnum-capi/internal/certs"
)

// fakeCerts is a certs.Generator returning static material.
type fakeCerts struct {
	mu    sync.Mutex
	calls []certs.Kind
}

func (f *fakeCerts) Generate(kind certs.Kind) (*certs.KeyPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return &certs.KeyPair{Cert: []byte("cert-" + string(kind)), Key: []byte("key-" + string(kind))}, nil
}

func (f *fakeCerts) generated() []certs.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]certs.Kind(nil), f.calls...)
}
