package solana

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/crypto"
	"github.com/AlexZinkM/yieldgate/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/skip2/go-qrcode"
)

const (
	networkSolana = "solana"
	qrSize        = 256
)

// GenerateKeystore generates a new Solana keypair and seals it into a .cwt keystore.
// Returns the public address and a PNG QR code of it.
// password must be []byte for security (caller should zero it after use)
func GenerateKeystore(filePath string, password []byte, params model.KDFParams) (address string, qrPNG []byte, err error) {
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)

	address = wallet.PublicKey().String()

	qrPNG, err = QRCode(address)
	if err != nil {
		return "", nil, err
	}

	header := model.Keystore{
		Network: networkSolana,
		Address: address,
		QR:      base64.StdEncoding.EncodeToString(qrPNG),
	}
	secret := &model.KeystoreSecret{
		PrivateKey: wallet.PrivateKey,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := crypto.EncryptKeystore(filePath, header, secret, password, params); err != nil {
		return "", nil, fmt.Errorf("failed to write keystore: %w", err)
	}
	return address, qrPNG, nil
}

// QRCode renders address as a PNG QR code.
func QRCode(address string) ([]byte, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

func isValidSolanaAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
