// Creates a new encrypted .cwt keystore and prints its address.
// Usage: go run ./cmd/keygen -out wallet.cwt
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AlexZinkM/yieldgate/internal/config"
	"github.com/AlexZinkM/yieldgate/internal/crypto"
	"github.com/AlexZinkM/yieldgate/solana"
)

func main() {
	out := flag.String("out", "wallet"+crypto.KeystoreExt, "keystore file to create")
	qrPath := flag.String("qr", "", "also write the address QR code PNG here")
	flag.Parse()

	if err := run(*out, *qrPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out, qrPath string) error {
	password, err := config.ReadPassword("New keystore password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	confirm, err := config.ReadPassword("Repeat password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if !bytes.Equal(password, confirm) {
		return errors.New("passwords do not match")
	}

	address, qr, err := solana.GenerateKeystore(out, password, crypto.DefaultKDF())
	if err != nil {
		return err
	}
	if qrPath != "" {
		if err := os.WriteFile(qrPath, qr, 0o644); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
	}
	fmt.Println(address)
	return nil
}
