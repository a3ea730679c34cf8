// Package tlstest generates throwaway certificates for TLS tests.
//
// Files are written under t.TempDir(); the same material is also returned
// as PEM bytes so tests can exercise in-memory request options.
//
//	certs := tlstest.Generate(t)
//	srv := httptest.NewUnstartedServer(handler)
//	srv.TLS = certs.ServerConfig()
//	srv.StartTLS()
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Certs holds a CA and a leaf certificate valid for localhost.
type Certs struct {
	CAFile   string
	CertFile string
	KeyFile  string

	CAPEM   []byte
	CertPEM []byte
	KeyPEM  []byte

	Leaf     tls.Certificate
	CertPool *x509.CertPool
}

// ServerConfig returns a server-side tls.Config presenting the leaf
// certificate and requiring nothing from clients.
func (c *Certs) ServerConfig() *tls.Config {
	return &tls.Config{Certificates: []tls.Certificate{c.Leaf}, MinVersion: tls.VersionTLS12}
}

// MutualServerConfig is ServerConfig plus a requirement that clients present
// a certificate signed by the same CA.
func (c *Certs) MutualServerConfig() *tls.Config {
	cfg := c.ServerConfig()
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	cfg.ClientCAs = c.CertPool
	return cfg
}

// Generate creates a self-signed CA and a leaf certificate for localhost,
// 127.0.0.1 and ::1, usable for both server and client auth.
func Generate(t testing.TB) *Certs {
	t.Helper()
	dir := t.TempDir()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"webrequest test CA"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create CA cert: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("tlstest: parse CA cert: %v", err)
	}

	leafKey := newKey(t)
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"webrequest test"}, CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create leaf cert: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		t.Fatalf("tlstest: marshal leaf key: %v", err)
	}

	certs := &Certs{
		CAPEM:   pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leafDER}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}
	certs.CAFile = writeFile(t, dir, "ca.pem", certs.CAPEM)
	certs.CertFile = writeFile(t, dir, "cert.pem", certs.CertPEM)
	certs.KeyFile = writeFile(t, dir, "key.pem", certs.KeyPEM)

	certs.Leaf, err = tls.X509KeyPair(certs.CertPEM, certs.KeyPEM)
	if err != nil {
		t.Fatalf("tlstest: load key pair: %v", err)
	}
	certs.CertPool = x509.NewCertPool()
	certs.CertPool.AddCert(caCert)
	return certs
}

// InvalidPEM returns bytes that look like a PEM certificate but do not parse.
func InvalidPEM() []byte {
	return []byte("-----BEGIN CERTIFICATE-----\nnot-valid-base64-data\n-----END CERTIFICATE-----\n")
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("tlstest: generate key: %v", err)
	}
	return key
}

func writeFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("tlstest: write %s: %v", name, err)
	}
	return path
}
