package wallet

import (
	"context"
	"errors"
)

var (
	// ErrProviderAbsent means no wallet provider is installed.
	ErrProviderAbsent = errors.New("no wallet provider found")
	// ErrNoSession means the operation needs a connected session.
	ErrNoSession = errors.New("wallet is not connected")
	// ErrNoSigner means there is no account to sign with.
	ErrNoSigner = errors.New("no signer available")
	// ErrNoAccounts means the provider granted access to zero accounts.
	ErrNoAccounts = errors.New("provider returned no accounts")
	// ErrUnknownNetwork means the chain id is not in the network table.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrTransactionFailed means the transaction landed with an error.
	ErrTransactionFailed = errors.New("transaction failed")
)

// NoticeKind classifies a user-facing wallet notice.
type NoticeKind string

const (
	NoticeProviderAbsent NoticeKind = "provider_absent"
	NoticeUserRejected   NoticeKind = "user_rejected"
	NoticeFailed         NoticeKind = "failed"
)

// Notice is what the host shows the user after a failed wallet operation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// NoticeFor classifies err. Anything that is neither a missing provider nor a
// user rejection is reported generically.
func NoticeFor(err error) Notice {
	switch {
	case errors.Is(err, ErrProviderAbsent):
		return Notice{Kind: NoticeProviderAbsent, Message: "No wallet found. Install a wallet to continue."}
	case isUserRejected(err):
		return Notice{Kind: NoticeUserRejected, Message: "You rejected the request in your wallet."}
	default:
		return Notice{Kind: NoticeFailed, Message: "The wallet request failed. Please try again."}
	}
}

func isUserRejected(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

// IsCancelled reports whether err came from the caller giving up.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
