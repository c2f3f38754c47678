package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/yieldgate/internal/model"
)

// DecryptKeystore reads and decrypts a .cwt keystore.
// password must be []byte for security (caller should zero it after use)
// The caller should clear the returned PrivateKey once done with it.
func DecryptKeystore(filePath string, password []byte) (*model.Keystore, *model.KeystoreSecret, error) {
	header, err := ReadKeystore(filePath)
	if err != nil {
		return nil, nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(header.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(header.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(header.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	params := DefaultKDF()
	if header.KDF != nil {
		params = *header.KDF
	}

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrInvalidPassword
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var secret model.KeystoreSecret
	if err := json.Unmarshal(plaintext, &secret); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal keystore secret: %w", err)
	}

	return header, &secret, nil
}

// ReadKeystore reads the public part of a keystore (without decryption).
func ReadKeystore(filePath string) (*model.Keystore, error) {
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeystoreNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(fileData) == 0 {
		return nil, errors.New("keystore file is empty")
	}

	fileData = bytes.TrimPrefix(fileData, utf8BOM)

	var header model.Keystore
	if err := json.Unmarshal(fileData, &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore: %w", err)
	}
	return &header, nil
}

// ReadKeystoreAddress reads only the address from a keystore (without decryption).
func ReadKeystoreAddress(filePath string) (string, error) {
	header, err := ReadKeystore(filePath)
	if err != nil {
		return "", err
	}
	if header.Address == "" {
		return "", errors.New("keystore has no address")
	}
	return header.Address, nil
}
