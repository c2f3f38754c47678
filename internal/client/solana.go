package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/yieldgate/internal/common"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

// FeeLamports is the flat fee reserved for a single-signature transfer (0.000005 SOL).
const FeeLamports = 5000

// ErrInsufficientFunds is returned when the balance cannot cover amount plus fee.
var ErrInsufficientFunds = errors.New("insufficient SOL balance")

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient *rpc.Client
	rpcURL    string
}

// NewSolanaClient creates a client for the given RPC endpoint.
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		rpcURL:    rpcURL,
	}
}

// RPCURL returns the endpoint the client talks to.
func (c *SolanaClient) RPCURL() string {
	return c.rpcURL
}

// GetBalance gets the SOL balance of owner in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// TransferSOL signs and sends a SOL transfer from key's account.
// The balance must cover lamports plus FeeLamports.
func (c *SolanaClient) TransferSOL(ctx context.Context, key solana.PrivateKey, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if len(key) != 64 {
		return solana.Signature{}, errors.New("invalid private key length: expected 64 bytes")
	}
	if lamports == 0 {
		return solana.Signature{}, errors.New("amount must be greater than zero")
	}
	from := key.PublicKey()

	balance, err := c.GetBalance(ctx, from)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check balance: %w", err)
	}
	if balance < lamports+FeeLamports {
		var maxLamports uint64
		if balance > FeeLamports {
			maxLamports = balance - FeeLamports
		}
		return solana.Signature{}, fmt.Errorf("%w. Transaction fee: %s SOL. Max you can send: %s SOL",
			ErrInsufficientFunds, common.LamportsToSOL(FeeLamports), common.LamportsToSOL(maxLamports))
	}

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(from) {
			return &key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	Found     bool   `json:"found"`
	Confirmed bool   `json:"confirmed"`
	Err       string `json:"err,omitempty"`
}

// SignatureStatus looks up sig, searching transaction history.
func (c *SolanaClient) SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureStatus, error) {
	res, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return SignatureStatus{}, fmt.Errorf("failed to get signature status: %w", err)
	}
	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return SignatureStatus{}, nil
	}

	st := res.Value[0]
	out := SignatureStatus{Found: true}
	if st.Err != nil {
		out.Err = fmt.Sprint(st.Err)
		return out, nil
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		out.Confirmed = true
	}
	return out, nil
}
