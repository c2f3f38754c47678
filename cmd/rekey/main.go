// Re-encrypts a .cwt keystore under a new password, upgrading it to the
// current scrypt cost. The address and key are unchanged.
// A running server keeps the old password and refuses to sign until it is
// restarted with the new one.
// Usage: go run ./cmd/rekey -keystore wallet.cwt
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AlexZinkM/yieldgate/internal/config"
	"github.com/AlexZinkM/yieldgate/internal/crypto"
)

func main() {
	path := flag.String("keystore", os.Getenv("KEYSTORE_PATH"), "keystore file to re-encrypt")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	if path == "" {
		return errors.New("no keystore given: pass -keystore or set KEYSTORE_PATH")
	}
	address, err := crypto.ReadKeystoreAddress(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Keystore for", address)

	oldPassword, err := config.ReadPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := config.ReadPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)
	confirm, err := config.ReadPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if !bytes.Equal(newPassword, confirm) {
		return errors.New("passwords do not match")
	}

	if err := crypto.Reencrypt(path, oldPassword, newPassword, crypto.DefaultKDF()); err != nil {
		return err
	}
	fmt.Println(address)
	return nil
}
