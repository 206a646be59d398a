package nido

import "io"

// Exporter provides an interface for export destinations.
// Operations stream through io.Reader so payloads are never required to fit
// a particular backend's buffering model.
type Exporter interface {
	// Put stores an export payload under the given name, replacing any
	// previous payload with the same name. size is the number of bytes
	// that will be read from r.
	Put(name string, r io.Reader, size int64) error

	// ValidateSetup verifies that the destination is accessible and
	// properly configured.
	ValidateSetup() error
}

// Encryptor encrypts export payloads. Encryption uses the public key only,
// so no passphrase is needed at export time. Exports are decrypted outside
// this tool with the standalone age binary and the private key.
type Encryptor interface {
	// Setup performs one-time key generation. Called during
	// `nido config keys init`. Generates a key pair, stores the public key
	// in plaintext, and encrypts the private key with the passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// IsConfigured returns true if the key files exist at their
	// configured paths.
	IsConfigured() bool
}
