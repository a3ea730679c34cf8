package security

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// TLSConfig holds client TLS material. Certificates and keys can be given as
// file paths or as in-memory PEM, or as a single PKCS#12 bundle.
type TLSConfig struct {
	// SkipVerify disables server certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// CAFile is the path to a PEM CA bundle used to verify the server.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile is the path to the client certificate (mTLS).
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// KeyFile is the path to the client private key (mTLS).
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`

	// CA, Cert and Key are PEM-encoded alternatives to the file fields.
	CA   []byte `yaml:"-" mapstructure:"-"`
	Cert []byte `yaml:"-" mapstructure:"-"`
	Key  []byte `yaml:"-" mapstructure:"-"`

	// PFX is a PKCS#12 bundle holding the client certificate and key.
	PFX []byte `yaml:"-" mapstructure:"-"`

	// Passphrase decrypts an encrypted PEM Key or the PFX bundle.
	Passphrase string `yaml:"passphrase" mapstructure:"passphrase"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version. Defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Build creates a *tls.Config from the configuration.
// Returns nil if no TLS settings are configured.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in via strict_ssl=false
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	if err := c.loadClientCert(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.New("security/tls: both cert_file and key_file must be provided together")
	}
	if (len(c.Cert) > 0) != (len(c.Key) > 0) {
		return errors.New("security/tls: both cert and key must be provided together")
	}
	if len(c.PFX) > 0 && (len(c.Cert) > 0 || c.CertFile != "") {
		return errors.New("security/tls: pfx cannot be combined with cert/key")
	}
	return nil
}

// IsEnabled returns true if any TLS setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" ||
		len(c.CA) > 0 || len(c.Cert) > 0 || len(c.PFX) > 0 || c.MinVersion != 0
}

// Clone returns a copy that shares no mutable state with c.
func (c *TLSConfig) Clone() *TLSConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.CA = append([]byte(nil), c.CA...)
	out.Cert = append([]byte(nil), c.Cert...)
	out.Key = append([]byte(nil), c.Key...)
	out.PFX = append([]byte(nil), c.PFX...)
	return &out
}

func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	ca := c.CA
	if c.CAFile != "" {
		data, err := os.ReadFile(c.CAFile)
		if err != nil {
			return fmt.Errorf("security/tls: failed to read CA file: %w", err)
		}
		ca = append(append([]byte(nil), ca...), data...)
	}
	if len(ca) == 0 {
		return nil
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return errors.New("security/tls: failed to parse CA certificate")
	}
	cfg.RootCAs = pool
	return nil
}

func (c *TLSConfig) loadClientCert(cfg *tls.Config) error {
	switch {
	case len(c.PFX) > 0:
		cert, err := decodePFX(c.PFX, c.Passphrase)
		if err != nil {
			return err
		}
		cfg.Certificates = []tls.Certificate{cert}
	case c.CertFile != "":
		certPEM, err := os.ReadFile(c.CertFile)
		if err != nil {
			return fmt.Errorf("security/tls: failed to read cert file: %w", err)
		}
		keyPEM, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return fmt.Errorf("security/tls: failed to read key file: %w", err)
		}
		cert, err := keyPair(certPEM, keyPEM, c.Passphrase)
		if err != nil {
			return err
		}
		cfg.Certificates = []tls.Certificate{cert}
	case len(c.Cert) > 0:
		cert, err := keyPair(c.Cert, c.Key, c.Passphrase)
		if err != nil {
			return err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return nil
}

// keyPair parses a PEM certificate chain and key, decrypting the key when it
// is a legacy encrypted PEM block.
func keyPair(certPEM, keyPEM []byte, passphrase string) (tls.Certificate, error) {
	if passphrase != "" {
		block, _ := pem.Decode(keyPEM)
		//nolint:staticcheck // legacy encrypted PEM keys are still issued by some CAs
		if block != nil && x509.IsEncryptedPEMBlock(block) {
			der, err := x509.DecryptPEMBlock(block, []byte(passphrase)) //nolint:staticcheck
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("security/tls: failed to decrypt key: %w", err)
			}
			keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der})
		}
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("security/tls: failed to load client certificate: %w", err)
	}
	return cert, nil
}

func decodePFX(pfx []byte, passphrase string) (tls.Certificate, error) {
	key, leaf, err := pkcs12.Decode(pfx, passphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("security/tls: failed to decode pfx: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}
