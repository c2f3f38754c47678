// Package wallet wraps a wallet provider in a connection session: connect,
// disconnect, network switching, balance queries and transfers, plus the
// provider's account, chain and disconnect notifications.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Provider is the narrow surface of a wallet provider that Session uses.
type Provider interface {
	Request(ctx context.Context, args RequestArgs) (json.RawMessage, error)
	On(event string, l Listener)
	RemoveListener(event string, l Listener)
}

// Listener receives provider notifications. Implementations must be comparable
// so that RemoveListener can find them.
type Listener interface {
	OnEvent(event string, payload json.RawMessage)
}

// RequestArgs is one provider call. Params must marshal to JSON.
type RequestArgs struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Provider events.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// Provider methods.
const (
	MethodRequestAccounts    = "wallet_requestAccounts"
	MethodAccounts           = "wallet_accounts"
	MethodChainID            = "wallet_chainId"
	MethodSwitchChain        = "wallet_switchChain"
	MethodAddChain           = "wallet_addChain"
	MethodGetBalance         = "wallet_getBalance"
	MethodSendTransaction    = "wallet_sendTransaction"
	MethodGetSignatureStatus = "wallet_getSignatureStatus"
)

// Provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeInternal          = -32603
	CodeInvalidParams     = -32602
)

// RPCError is an error reported by the provider.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// NewRPCError builds an RPCError.
func NewRPCError(code int, format string, args ...any) *RPCError {
	return &RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the provider code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code, true
	}
	return 0, false
}

// SwitchChainParams are the params of MethodSwitchChain.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// GetBalanceParams are the params of MethodGetBalance.
type GetBalanceParams struct {
	Address string `json:"address"`
}

// SendTransactionParams are the params of MethodSendTransaction.
// Value is an integer amount in the chain's base unit.
type SendTransactionParams struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// SignatureStatusParams are the params of MethodGetSignatureStatus.
type SignatureStatusParams struct {
	Signature string `json:"signature"`
}

// SignatureStatus is the result of MethodGetSignatureStatus.
type SignatureStatus struct {
	Found     bool   `json:"found"`
	Confirmed bool   `json:"confirmed"`
	Err       string `json:"err,omitempty"`
}
