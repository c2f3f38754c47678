package solana

import "context"

// ApprovalKind names what the user is asked to approve.
type ApprovalKind string

const (
	ApproveConnect  ApprovalKind = "connect"
	ApproveAddChain ApprovalKind = "add_chain"
	ApproveSend     ApprovalKind = "send"
)

// ApprovalRequest describes one prompt.
type ApprovalRequest struct {
	Kind     ApprovalKind
	Account  string
	ChainID  string
	To       string
	Lamports uint64
}

// Approver decides prompts the provider would show in a wallet UI.
// Returning false rejects the request with code 4001.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	return f(ctx, req)
}

// AutoApprove approves everything. The operator has already unlocked the keystore.
var AutoApprove Approver = ApproverFunc(func(context.Context, ApprovalRequest) (bool, error) { return true, nil })
