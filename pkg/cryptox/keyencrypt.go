package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sync"
)

// MasterKeyEnv names the variable read when no master key file is set.
const MasterKeyEnv = "AUTH_MASTER_KEY"

var (
	masterKeyMu   sync.Mutex
	masterKey     []byte
	masterKeyPath string
)

// SetMasterKeyPath configures a file holding the master key material used
// to seal persisted signing keys. Call it before the first Encrypt or
// Decrypt.
func SetMasterKeyPath(path string) {
	masterKeyMu.Lock()
	defer masterKeyMu.Unlock()

	masterKeyPath = path
	masterKey = nil
}

// loadMasterKey derives a 32-byte AES-256 key from, in order, the key file,
// the AUTH_MASTER_KEY variable, or fresh random bytes. The random fallback
// only suits ephemeral setups since sealed keys will not open after a
// restart.
func loadMasterKey() ([]byte, error) {
	var material []byte

	switch {
	case masterKeyPath != "":
		data, err := os.ReadFile(masterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		material = data

	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))

	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
	}

	sum := sha256.Sum256(material)
	return sum[:], nil
}

func masterAEAD() (cipher.AEAD, error) {
	masterKeyMu.Lock()
	defer masterKeyMu.Unlock()

	if masterKey == nil {
		key, err := loadMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to get master key: %w", err)
		}
		masterKey = key
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// EncryptPrivateKey seals a PEM private key with AES-256-GCM. The output is
// nonce || ciphertext || tag.
func EncryptPrivateKey(pemData []byte) ([]byte, error) {
	gcm, err := masterAEAD()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, pemData, nil), nil
}

// DecryptPrivateKey opens data produced by EncryptPrivateKey.
func DecryptPrivateKey(sealed []byte) ([]byte, error) {
	gcm, err := masterAEAD()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// ResetMasterKeyForTesting forgets the loaded master key so the next call
// reloads it. Tests only.
func ResetMasterKeyForTesting() {
	masterKeyMu.Lock()
	defer masterKeyMu.Unlock()
	masterKey = nil
}
