// Package certs implements the certificate lifecycle: renewal decisions,
// whole-bundle regeneration and cluster-wide propagation of the rotated
// material.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/imamik/swarmboot/internal/config"
	"github.com/imamik/swarmboot/internal/util/keygen"
)

// Artifact file names. The bundle is always regenerated and replaced as
// a unit; the export bundle is derived from the key and certificate and
// must never outlive them.
const (
	KeyFile  = "key.pem"
	CertFile = "cert.pem"
	CAFile   = "ca.pem"
	PFXFile  = "bundle.pfx"
)

// Artifact binds a bundle file to the cluster secret it is distributed
// as.
type Artifact struct {
	File         string
	SecretSuffix string
}

// Artifacts is the fixed, ordered set making up one certificate bundle.
var Artifacts = []Artifact{
	{File: KeyFile, SecretSuffix: "key"},
	{File: CertFile, SecretSuffix: "cert"},
	{File: CAFile, SecretSuffix: "ca"},
	{File: PFXFile, SecretSuffix: "pfx"},
}

// Bundle holds one freshly generated certificate bundle in memory.
type Bundle struct {
	Key  []byte // PEM private key
	Cert []byte // PEM self-signed certificate
	CA   []byte // PEM CA-equivalent certificate
	PFX  []byte // password-protected PKCS#12 export

	// Password protects the PKCS#12 export. Generated fresh on every
	// rotation, persisted only to the external secret store.
	Password string
}

// Content returns the bytes for one artifact file of the bundle.
func (b *Bundle) Content(file string) []byte {
	switch file {
	case KeyFile:
		return b.Key
	case CertFile:
		return b.Cert
	case CAFile:
		return b.CA
	case PFXFile:
		return b.PFX
	}
	return nil
}

// Generate produces a complete new bundle: fresh RSA key, self-signed
// certificate bound to the configured domain with the configured
// validity, and a PKCS#12 export protected by a fresh high-entropy
// password. The certificate doubles as its own CA-equivalent because the
// identity is self-signed.
func Generate(cfg config.CertConfig, now time.Time) (*Bundle, error) {
	key, err := keygen.GenerateRSAKey(cfg.KeyBits)
	if err != nil {
		return nil, err
	}

	cert, certPEM, err := selfSign(key, cfg.Domain, now, cfg.ValidityDays)
	if err != nil {
		return nil, err
	}

	password, err := keygen.GeneratePassword(cfg.PasswordLength)
	if err != nil {
		return nil, err
	}

	pfx, err := pkcs12.Modern.Encode(key, cert, nil, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode PKCS#12 export: %w", err)
	}

	return &Bundle{
		Key:      keygen.MarshalPrivateKeyPEM(key),
		Cert:     certPEM,
		CA:       append([]byte(nil), certPEM...),
		PFX:      pfx,
		Password: password,
	}, nil
}

// selfSign issues a self-signed certificate for the given domain.
func selfSign(key *rsa.PrivateKey, domain string, now time.Time, validityDays int) (*x509.Certificate, []byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: domain,
		},
		DNSNames:              []string{domain},
		NotBefore:             now.Add(-5 * time.Minute),
		NotAfter:              now.AddDate(0, 0, validityDays),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse generated certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return cert, certPEM, nil
}

// WriteFiles persists every artifact under dir with restrictive
// permissions, replacing whatever was there.
func (b *Bundle) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	for _, a := range Artifacts {
		path := filepath.Join(dir, a.File)
		if err := os.WriteFile(path, b.Content(a.File), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// Check is the outcome of a renewal decision.
type Check struct {
	NeedsRenewal bool
	// Reason explains the decision for logs and the status file.
	Reason string
	// DaysLeft is the minimum remaining validity across parseable
	// certificates, meaningful only when no artifact is missing.
	DaysLeft int
}

// Evaluate decides whether the bundle under dir needs renewal: any
// missing or unparseable artifact forces it, as does any certificate
// within thresholdDays of expiry.
func Evaluate(dir string, thresholdDays int, now time.Time) Check {
	minDays := 0
	first := true

	for _, a := range Artifacts {
		path := filepath.Join(dir, a.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return Check{NeedsRenewal: true, Reason: fmt.Sprintf("artifact %s missing", a.File)}
		}

		switch a.File {
		case CertFile, CAFile:
			cert, err := parseCertificatePEM(data)
			if err != nil {
				return Check{NeedsRenewal: true, Reason: fmt.Sprintf("artifact %s unparseable", a.File)}
			}
			days := int(cert.NotAfter.Sub(now).Hours() / 24)
			if first || days < minDays {
				minDays = days
				first = false
			}
		case KeyFile:
			if _, err := keygen.ParsePrivateKeyPEM(data); err != nil {
				return Check{NeedsRenewal: true, Reason: fmt.Sprintf("artifact %s unparseable", a.File)}
			}
		}
	}

	if minDays < thresholdDays {
		return Check{
			NeedsRenewal: true,
			Reason:       fmt.Sprintf("%d days of validity remaining, threshold %d", minDays, thresholdDays),
			DaysLeft:     minDays,
		}
	}

	return Check{
		Reason:   fmt.Sprintf("%d days of validity remaining", minDays),
		DaysLeft: minDays,
	}
}

func parseCertificatePEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	return x509.ParseCertificate(block.Bytes)
}
