// Package keygen provides utilities for generating cryptographic material.
//
// This package generates RSA key pairs for certificate issuance, outputting
// the private key in PEM-encoded PKCS#1 format, and high-entropy random
// passwords used to protect exported certificate bundles.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
)

// passwordAlphabet deliberately excludes characters that are awkward in
// shell quoting or JSON embedding while keeping letters, digits and a
// symbol set large enough for high entropy.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.!@#%^*"

// GenerateRSAKey generates a new RSA private key with the specified bit size.
// Common bit sizes are 2048 (minimum recommended) and 4096 (high security).
func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	return key, nil
}

// MarshalPrivateKeyPEM encodes an RSA private key as PEM-encoded PKCS#1.
func MarshalPrivateKeyPEM(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// ParsePrivateKeyPEM decodes a PEM-encoded PKCS#1 RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key data")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
	}

	return key, nil
}

// GeneratePassword generates a random password of the given length drawn
// from a mixed alphanumeric-and-symbol alphabet using crypto/rand.
// Lengths below 16 are rejected to keep generated passwords high entropy.
func GeneratePassword(length int) (string, error) {
	if length < 16 {
		return "", fmt.Errorf("password length %d below minimum of 16", length)
	}

	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}

	return string(buf), nil
}
