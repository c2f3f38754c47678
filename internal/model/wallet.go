package model

// Keystore represents the .cwt keystore file structure
type Keystore struct {
	Network    string     `json:"network"`
	Address    string     `json:"address"`
	QR         string     `json:"QR"`
	KDF        *KDFParams `json:"kdf,omitempty"` // absent in older files; scrypt defaults apply
	Salt       string     `json:"salt"`
	Nonce      string     `json:"nonce"`
	CipherText string     `json:"cipherText"`
}

// KDFParams are the scrypt cost parameters a keystore was sealed with
type KDFParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// KeystoreSecret represents decrypted keystore data
type KeystoreSecret struct {
	PrivateKey []byte `json:"privateKey"` // full 64-byte key (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
