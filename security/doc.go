// Package security builds client TLS configuration for webrequest.
//
// Material can come from files (the shape used in config.yml) or from
// memory, which is how request options carry ca/cert/key/pfx buffers.
//
//	cfg := security.TLSConfig{
//	    CA:   caPEM,
//	    Cert: certPEM,
//	    Key:  keyPEM,
//	}
//
//	tlsConfig, err := cfg.Build()
package security
