//go:build unix

package web

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/matryer/is"
)

func generateTestCert(t *testing.T, certPath, keyPath, cn string) {
	t.Helper()
	is := is.New(t)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	is.NoErr(err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	is.NoErr(err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	is.NoErr(os.WriteFile(certPath, certPEM, 0o600))
	is.NoErr(os.WriteFile(keyPath, keyPEM, 0o600))
}

func commonName(t *testing.T, cr *CertReloader) string {
	t.Helper()
	cert, err := cr.GetCertificate(nil)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	return leaf.Subject.CommonName
}

func TestCertReloader(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()

	_, err := NewCertReloader(ctx, certPath, keyPath)
	is.True(err != nil)

	generateTestCert(t, certPath, keyPath, "cert-v1")
	cr, err := NewCertReloader(ctx, certPath, keyPath)
	is.NoErr(err)
	is.Equal(commonName(t, cr), "cert-v1")

	// A broken pair keeps the current certificate.
	is.NoErr(os.WriteFile(keyPath, []byte("garbage"), 0o600))
	is.True(cr.Reload() != nil)
	is.Equal(commonName(t, cr), "cert-v1")

	generateTestCert(t, certPath, keyPath, "cert-v2")
	is.NoErr(syscall.Kill(os.Getpid(), syscall.SIGHUP))

	deadline := time.Now().Add(2 * time.Second)
	for commonName(t, cr) != "cert-v2" {
		if time.Now().After(deadline) {
			t.Fatal("certificate was not reloaded after SIGHUP")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
