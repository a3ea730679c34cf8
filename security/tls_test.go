package security

import (
	"bytes"
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/webrequest/security/tlstest"
)

func TestTLSConfig_Build_Disabled(t *testing.T) {
	for name, cfg := range map[string]*TLSConfig{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			result, err := cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != nil {
				t.Fatal("expected nil tls.Config")
			}
		})
	}
}

func TestTLSConfig_Build_SkipVerify(t *testing.T) {
	result, err := (&TLSConfig{SkipVerify: true, ServerName: "example.com"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify=true")
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
	if result.ServerName != "example.com" {
		t.Errorf("expected ServerName=example.com, got %s", result.ServerName)
	}
}

func TestTLSConfig_Build_Files(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		MinVersion: tls.VersionTLS13,
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 certificate, got %d", len(result.Certificates))
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_InMemoryPEM(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := &TLSConfig{CA: certs.CAPEM, Cert: certs.CertPEM, Key: certs.KeyPEM}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil || len(result.Certificates) != 1 {
		t.Fatalf("expected CA pool and one certificate, got %+v", result)
	}
}

func TestTLSConfig_Build_Errors(t *testing.T) {
	certs := tlstest.Generate(t)
	badCA := filepath.Join(t.TempDir(), "bad-ca.pem")
	if err := os.WriteFile(badCA, tlstest.InvalidPEM(), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  *TLSConfig
	}{
		{"missing CA file", &TLSConfig{CAFile: "/nonexistent/ca.pem"}},
		{"invalid CA file", &TLSConfig{CAFile: badCA}},
		{"invalid CA bytes", &TLSConfig{CA: tlstest.InvalidPEM()}},
		{"missing cert files", &TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}},
		{"cert without key", &TLSConfig{Cert: certs.CertPEM}},
		{"mismatched key", &TLSConfig{Cert: certs.CertPEM, Key: certs.CAPEM}},
		{"invalid pfx", &TLSConfig{PFX: []byte("not a pfx"), Passphrase: "secret"}},
		{"pfx with cert", &TLSConfig{PFX: []byte{1}, Cert: certs.CertPEM, Key: certs.KeyPEM}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Build(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&TLSConfig{CertFile: "cert.pem"}).Validate(); err == nil {
		t.Fatal("expected error when CertFile set without KeyFile")
	}
	if err := (&TLSConfig{Key: []byte("k")}).Validate(); err == nil {
		t.Fatal("expected error when Key set without Cert")
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
		{"ca_file", &TLSConfig{CAFile: "ca.pem"}, true},
		{"ca bytes", &TLSConfig{CA: []byte("x")}, true},
		{"pfx", &TLSConfig{PFX: []byte("x")}, true},
		{"server_name", &TLSConfig{ServerName: "example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestTLSConfig_Clone(t *testing.T) {
	orig := &TLSConfig{CA: []byte("ca"), ServerName: "a"}
	c := orig.Clone()
	c.CA[0] = 'X'
	c.ServerName = "b"
	if !bytes.Equal(orig.CA, []byte("ca")) || orig.ServerName != "a" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
	var nilCfg *TLSConfig
	if nilCfg.Clone() != nil {
		t.Error("expected nil clone of nil config")
	}
}
