package model

// WalletStateResponse represents the connection state of a profile's wallet session
type WalletStateResponse struct {
	Account   string `json:"account,omitempty"`
	ChainID   string `json:"chainId,omitempty"`
	Connected bool   `json:"connected"`
}

// WalletErrorResponse is returned when a wallet operation fails
type WalletErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Notice  string `json:"notice" enums:"provider_absent,user_rejected,failed"`
	Message string `json:"message"`
}

// SwitchNetworkRequest represents request for POST /api/wallet/network
type SwitchNetworkRequest struct {
	ChainID string `json:"chainId"`
}

// BalanceResponse represents response for GET /api/wallet/balance
type BalanceResponse struct {
	Address string `json:"address"`
	ChainID string `json:"chainId"`
	SOL     string `json:"sol"`
	Rate    string `json:"rate,omitempty"` // SOL/USD, omitted when the quote is unavailable
	USD     string `json:"usd,omitempty"`
}

// SendRequest represents request for POST /api/wallet/send
type SendRequest struct {
	ToAddress string `json:"toAddress"`
	Amount    string `json:"amount"`
}

// SendResponse represents response for POST /api/wallet/send
type SendResponse struct {
	TxID string `json:"txId"`
}

// NetworkResponse is one entry of the known network table
type NetworkResponse struct {
	ChainID string `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
	Symbol  string `json:"symbol"`
}

// WalletResponse represents response for GET /api/wallet
type WalletResponse struct {
	Session  WalletStateResponse `json:"session"`
	Provider bool                `json:"provider"` // false when no wallet is installed
	Networks []NetworkResponse   `json:"networks"`
}

// HealthResponse represents response for GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
