package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/yieldgate/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the local keystore
	//
	// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still
	// fitting in the memory budget of small machines.
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

// KeystoreExt is the required keystore file extension.
const KeystoreExt = ".cwt"

var (
	// ErrKeystoreExists is returned when the target keystore file is not empty.
	ErrKeystoreExists = errors.New("keystore file is not empty")
	// ErrKeystoreNotFound is returned when the keystore file does not exist.
	ErrKeystoreNotFound = errors.New("keystore file does not exist")
	// ErrInvalidPassword is returned when the keystore cannot be opened with the given password.
	ErrInvalidPassword = errors.New("invalid password")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultKDF returns the scrypt parameters used when none are given.
func DefaultKDF() model.KDFParams {
	return model.KDFParams{N: scryptN, R: scryptR, P: scryptP}
}

// EncryptKeystore seals secret with password and writes a new .cwt keystore.
// It refuses to overwrite a non-empty file.
// password must be []byte for security (caller should zero it after use)
func EncryptKeystore(filePath string, header model.Keystore, secret *model.KeystoreSecret, password []byte, params model.KDFParams) error {
	if filepath.Ext(filePath) != KeystoreExt {
		return fmt.Errorf("file must have %s extension", KeystoreExt)
	}

	if info, err := os.Stat(filePath); err == nil && info.Size() > 0 {
		return ErrKeystoreExists
	}

	data, err := seal(header, secret, password, params)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Reencrypt opens the keystore with oldPassword and rewrites it sealed with
// newPassword and params. The file is replaced atomically.
func Reencrypt(filePath string, oldPassword, newPassword []byte, params model.KDFParams) error {
	header, secret, err := DecryptKeystore(filePath, oldPassword)
	if err != nil {
		return err
	}
	defer clear(secret.PrivateKey)

	data, err := seal(*header, secret, newPassword, params)
	if err != nil {
		return err
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace keystore: %w", err)
	}
	return nil
}

func seal(header model.Keystore, secret *model.KeystoreSecret, password []byte, params model.KDFParams) ([]byte, error) {
	if params.N <= 1 || params.N&(params.N-1) != 0 {
		return nil, fmt.Errorf("scrypt N must be a power of two greater than 1, got %d", params.N)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore secret: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	kdf := params
	header.KDF = &kdf
	header.Salt = base64.StdEncoding.EncodeToString(salt)
	header.Nonce = base64.StdEncoding.EncodeToString(nonce)
	header.CipherText = base64.StdEncoding.EncodeToString(ciphertext)

	fileData, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore: %w", err)
	}

	// UTF-8 BOM for proper display in Windows editors
	return append(append([]byte{}, utf8BOM...), fileData...), nil
}

func newGCM(password, salt []byte, params model.KDFParams) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
