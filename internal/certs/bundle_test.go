package certs

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/imamik/swarmboot/internal/config"
)

func certConfig(dir string, validityDays int) config.CertConfig {
	return config.CertConfig{
		Domain:         "example.internal",
		Dir:            dir,
		ValidityDays:   validityDays,
		KeyBits:        2048,
		PasswordLength: 32,
	}
}

func TestGenerate_InternallyConsistent(t *testing.T) {
	t.Parallel()

	bundle, err := Generate(certConfig(t.TempDir(), 365), time.Now())
	require.NoError(t, err)

	// The export bundle must decrypt with the freshly generated
	// password and match the freshly generated key and certificate.
	key, cert, err := pkcs12.Decode(bundle.PFX, bundle.Password)
	require.NoError(t, err)

	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)

	block, _ := pem.Decode(bundle.Cert)
	require.NotNil(t, block)
	pemCert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.True(t, cert.Equal(pemCert))
	assert.True(t, rsaKey.PublicKey.Equal(cert.PublicKey))
	assert.Equal(t, "example.internal", cert.Subject.CommonName)
	assert.Contains(t, cert.DNSNames, "example.internal")
}

func TestGenerate_ValidityWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	bundle, err := Generate(certConfig(t.TempDir(), 45), now)
	require.NoError(t, err)

	block, _ := pem.Decode(bundle.Cert)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.WithinDuration(t, now.AddDate(0, 0, 45), cert.NotAfter, time.Minute)
	assert.True(t, cert.NotBefore.Before(now))
}

func TestGenerate_CAEqualsCert(t *testing.T) {
	t.Parallel()

	bundle, err := Generate(certConfig(t.TempDir(), 365), time.Now())
	require.NoError(t, err)
	assert.Equal(t, bundle.Cert, bundle.CA)
}

func TestGenerate_FreshPasswordEveryTime(t *testing.T) {
	t.Parallel()

	cfg := certConfig(t.TempDir(), 365)
	first, err := Generate(cfg, time.Now())
	require.NoError(t, err)
	second, err := Generate(cfg, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, first.Password, second.Password)
}

func TestWriteFiles_RestrictivePermissions(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "certs")
	bundle, err := Generate(certConfig(dir, 365), time.Now())
	require.NoError(t, err)
	require.NoError(t, bundle.WriteFiles(dir))

	for _, a := range Artifacts {
		info, err := os.Stat(filepath.Join(dir, a.File))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), a.File)
	}
}

func TestEvaluate_AllValid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle, err := Generate(certConfig(dir, 90), time.Now())
	require.NoError(t, err)
	require.NoError(t, bundle.WriteFiles(dir))

	check := Evaluate(dir, 30, time.Now())
	assert.False(t, check.NeedsRenewal)
	assert.InDelta(t, 89, check.DaysLeft, 1)
}

func TestEvaluate_ExpiringSoon(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle, err := Generate(certConfig(dir, 10), time.Now())
	require.NoError(t, err)
	require.NoError(t, bundle.WriteFiles(dir))

	check := Evaluate(dir, 30, time.Now())
	assert.True(t, check.NeedsRenewal)
	assert.Contains(t, check.Reason, "threshold 30")
}

func TestEvaluate_MissingArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle, err := Generate(certConfig(dir, 90), time.Now())
	require.NoError(t, err)
	require.NoError(t, bundle.WriteFiles(dir))
	require.NoError(t, os.Remove(filepath.Join(dir, PFXFile)))

	check := Evaluate(dir, 30, time.Now())
	assert.True(t, check.NeedsRenewal)
	assert.Contains(t, check.Reason, PFXFile)
}

func TestEvaluate_UnparseableCertificate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle, err := Generate(certConfig(dir, 90), time.Now())
	require.NoError(t, err)
	require.NoError(t, bundle.WriteFiles(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CertFile), []byte("garbage"), 0600))

	check := Evaluate(dir, 30, time.Now())
	assert.True(t, check.NeedsRenewal)
	assert.Contains(t, check.Reason, "unparseable")
}

func TestEvaluate_EmptyDir(t *testing.T) {
	t.Parallel()

	check := Evaluate(t.TempDir(), 30, time.Now())
	assert.True(t, check.NeedsRenewal)
	assert.Contains(t, check.Reason, "missing")
}
