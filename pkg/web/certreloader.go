package web

import (
	"context"
	"crypto/tls"
	"sync"

	"github.com/charmbracelet/log"
)

// CertReloader serves the TLS certificate of the API server and reloads it
// from disk on demand. On unix systems a SIGHUP triggers a reload.
type CertReloader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
	logger   *log.Logger
}

// NewCertReloader loads the certificate and starts watching for reload
// signals until ctx is done.
func NewCertReloader(ctx context.Context, certPath, keyPath string) (*CertReloader, error) {
	cr := &CertReloader{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   log.FromContext(ctx).WithPrefix("tls"),
	}

	if err := cr.Reload(); err != nil {
		return nil, err
	}

	cr.watch(ctx)
	return cr, nil
}

// Reload reads the certificate and key again. The current certificate is
// kept when they can't be loaded.
func (cr *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return err
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.cert = &cert
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cert, nil
}

// TLSConfig returns a TLS configuration serving the reloaded certificate.
func (cr *CertReloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: cr.GetCertificate,
	}
}
