// Package solana is a wallet provider backed by a local .cwt keystore and Solana JSON-RPC.
package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/AlexZinkM/yieldgate/internal/client"
	"github.com/AlexZinkM/yieldgate/internal/crypto"
	"github.com/AlexZinkM/yieldgate/internal/wallet"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ChainClient is the part of the RPC client the provider needs.
type ChainClient interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	TransferSOL(ctx context.Context, key solana.PrivateKey, to solana.PublicKey, lamports uint64) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (client.SignatureStatus, error)
}

// ClientFactory returns a chain client for an RPC endpoint.
type ClientFactory func(rpcURL string) ChainClient

// NewRPCClient is the default ClientFactory.
func NewRPCClient(rpcURL string) ChainClient {
	return client.NewSolanaClient(rpcURL)
}

// Option configures a Provider.
type Option func(*Provider)

// WithApprover sets who decides approval prompts. Defaults to AutoApprove.
func WithApprover(a Approver) Option {
	return func(p *Provider) { p.approver = a }
}

// WithClientFactory replaces how chain clients are created.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.clients = f }
}

// WithRPCURL overrides the RPC endpoint of the starting chain.
func WithRPCURL(url string) Option {
	return func(p *Provider) { p.rpcOverride = url }
}

// WithSendCooldown enforces a minimum pause between transfers.
func WithSendCooldown(d time.Duration) Option {
	return func(p *Provider) { p.cooldown = d }
}

// WithLogger sets the provider's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// Provider implements wallet.Provider over a keystore file.
//
// It starts knowing only mainnet-beta and the starting chain; other chains
// must be added with wallet_addChain before they can be switched to.
type Provider struct {
	keystorePath string
	approver     Approver
	clients      ClientFactory
	rpcOverride  string
	cooldown     time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	password   []byte
	address    string
	authorized bool
	chainID    string
	chains     map[string]wallet.Network
	listeners  map[string][]wallet.Listener
	lastSend   time.Time
	closed     bool

	sendMu  sync.Mutex
	watcher *keystoreWatcher
}

// NewProvider opens the keystore at keystorePath on chainID.
// password is copied; the caller may clear its slice.
func NewProvider(keystorePath string, password []byte, chainID string, opts ...Option) (*Provider, error) {
	address, err := crypto.ReadKeystoreAddress(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet address: %w", err)
	}

	start, ok := wallet.LookupNetwork(chainID)
	if !ok {
		return nil, fmt.Errorf("unknown chain %q", chainID)
	}

	p := &Provider{
		keystorePath: keystorePath,
		approver:     AutoApprove,
		clients:      NewRPCClient,
		logger:       slog.Default(),
		password:     append([]byte(nil), password...),
		address:      address,
		chainID:      chainID,
		chains:       map[string]wallet.Network{},
		listeners:    map[string][]wallet.Listener{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rpcOverride != "" {
		start.RPCURLs = []string{p.rpcOverride}
	}
	p.chains[chainID] = start
	if mainnet, ok := wallet.LookupNetwork(rpc.MainNetBeta.Name); ok {
		if _, have := p.chains[mainnet.ChainID]; !have {
			p.chains[mainnet.ChainID] = mainnet
		}
	}

	w, err := watchKeystore(keystorePath, p.keystoreChanged, p.logger)
	if err != nil {
		clear(p.password)
		return nil, err
	}
	p.watcher = w
	return p, nil
}

// Close stops watching the keystore, forgets the password and fires disconnect.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.authorized = false
	clear(p.password)
	p.password = nil
	p.mu.Unlock()

	err := p.watcher.Close()
	p.emit(wallet.EventDisconnect, wallet.NewRPCError(wallet.CodeDisconnected, "provider closed"))
	return err
}

// Address returns the keystore's address.
func (p *Provider) Address() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.address
}

// On registers l for event.
func (p *Provider) On(event string, l wallet.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[event] = append(p.listeners[event], l)
}

// RemoveListener unregisters l for event.
func (p *Provider) RemoveListener(event string, l wallet.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ls := p.listeners[event]
	for i := range ls {
		if ls[i] == l {
			p.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (p *Provider) emit(event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to encode event payload", "event", event, "error", err)
		return
	}
	p.mu.Lock()
	ls := append([]wallet.Listener(nil), p.listeners[event]...)
	p.mu.Unlock()

	for _, l := range ls {
		l.OnEvent(event, raw)
	}
}

// Request dispatches one provider call. Errors are *wallet.RPCError unless ctx ended first.
func (p *Provider) Request(ctx context.Context, args wallet.RequestArgs) (json.RawMessage, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, wallet.NewRPCError(wallet.CodeDisconnected, "provider is closed")
	}

	var (
		result any
		err    error
	)
	switch args.Method {
	case wallet.MethodRequestAccounts:
		result, err = p.requestAccounts(ctx)
	case wallet.MethodAccounts:
		result = p.accounts()
	case wallet.MethodChainID:
		p.mu.Lock()
		result = p.chainID
		p.mu.Unlock()
	case wallet.MethodSwitchChain:
		err = p.switchChain(args.Params)
	case wallet.MethodAddChain:
		err = p.addChain(ctx, args.Params)
	case wallet.MethodGetBalance:
		result, err = p.getBalance(ctx, args.Params)
	case wallet.MethodSendTransaction:
		result, err = p.sendTransaction(ctx, args.Params)
	case wallet.MethodGetSignatureStatus:
		result, err = p.signatureStatus(ctx, args.Params)
	default:
		err = wallet.NewRPCError(wallet.CodeUnsupportedMethod, "method %s is not supported", args.Method)
	}
	if err != nil {
		return nil, asRPCError(err)
	}
	return json.Marshal(result)
}

func (p *Provider) requestAccounts(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	address, authorized := p.address, p.authorized
	p.mu.Unlock()
	if address == "" {
		return nil, wallet.NewRPCError(wallet.CodeUnauthorized, "no keystore loaded")
	}
	if authorized {
		return []string{address}, nil
	}

	if err := p.approve(ctx, ApprovalRequest{Kind: ApproveConnect, Account: address}); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.authorized = true
	p.mu.Unlock()
	p.logger.Info("account access granted", "address", address)
	return []string{address}, nil
}

func (p *Provider) accounts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized || p.address == "" {
		return []string{}
	}
	return []string{p.address}
}

func (p *Provider) switchChain(params any) error {
	var args wallet.SwitchChainParams
	if err := decodeParams(params, &args); err != nil {
		return err
	}

	p.mu.Lock()
	_, known := p.chains[args.ChainID]
	changed := known && p.chainID != args.ChainID
	if changed {
		p.chainID = args.ChainID
	}
	p.mu.Unlock()

	if !known {
		return wallet.NewRPCError(wallet.CodeUnrecognizedChain, "unrecognized chain %q", args.ChainID)
	}
	if changed {
		p.emit(wallet.EventChainChanged, args.ChainID)
	}
	return nil
}

func (p *Provider) addChain(ctx context.Context, params any) error {
	var network wallet.Network
	if err := decodeParams(params, &network); err != nil {
		return err
	}
	if network.ChainID == "" || len(network.RPCURLs) == 0 || network.RPCURLs[0] == "" {
		return wallet.NewRPCError(wallet.CodeInvalidParams, "chainId and rpcUrls are required")
	}

	if err := p.approve(ctx, ApprovalRequest{Kind: ApproveAddChain, ChainID: network.ChainID}); err != nil {
		return err
	}

	p.mu.Lock()
	p.chains[network.ChainID] = network
	p.mu.Unlock()
	p.logger.Info("chain added", "chain", network.ChainID, "rpc", network.RPCURLs[0])

	return p.switchChain(wallet.SwitchChainParams{ChainID: network.ChainID})
}

func (p *Provider) getBalance(ctx context.Context, params any) (string, error) {
	var args wallet.GetBalanceParams
	if err := decodeParams(params, &args); err != nil {
		return "", err
	}
	owner, err := solana.PublicKeyFromBase58(args.Address)
	if err != nil {
		return "", wallet.NewRPCError(wallet.CodeInvalidParams, "invalid Solana address")
	}

	lamports, err := p.chainClient().GetBalance(ctx, owner)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(lamports, 10), nil
}

func (p *Provider) sendTransaction(ctx context.Context, params any) (string, error) {
	var args wallet.SendTransactionParams
	if err := decodeParams(params, &args); err != nil {
		return "", err
	}

	p.mu.Lock()
	address, authorized := p.address, p.authorized
	p.mu.Unlock()
	if !authorized {
		return "", wallet.NewRPCError(wallet.CodeUnauthorized, "account access has not been granted")
	}
	if args.From != address {
		return "", wallet.NewRPCError(wallet.CodeUnauthorized, "from address is not this wallet")
	}
	if !isValidSolanaAddress(args.To) {
		return "", wallet.NewRPCError(wallet.CodeInvalidParams, "invalid Solana address")
	}
	to := solana.MustPublicKeyFromBase58(args.To)
	lamports, err := strconv.ParseUint(args.Value, 10, 64)
	if err != nil || lamports == 0 {
		return "", wallet.NewRPCError(wallet.CodeInvalidParams, "value must be a positive integer amount of lamports")
	}

	// One transfer at a time so the cooldown holds.
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	if remaining := p.cooldownRemaining(); remaining > 0 {
		return "", wallet.NewRPCError(wallet.CodeInternal, "cooldown active, please wait %v", remaining.Round(time.Second))
	}

	if err := p.approve(ctx, ApprovalRequest{Kind: ApproveSend, Account: address, To: args.To, Lamports: lamports}); err != nil {
		return "", err
	}

	p.mu.Lock()
	password := append([]byte(nil), p.password...)
	p.mu.Unlock()
	defer clear(password)

	_, secret, err := crypto.DecryptKeystore(p.keystorePath, password)
	if errors.Is(err, crypto.ErrInvalidPassword) {
		p.logger.Error("keystore no longer opens with the startup password; was it re-keyed?")
		return "", wallet.NewRPCError(wallet.CodeUnauthorized, "keystore password changed, restart with the new password")
	}
	if err != nil {
		return "", fmt.Errorf("failed to decrypt keystore: %w", err)
	}
	defer clear(secret.PrivateKey)

	if len(secret.PrivateKey) != 64 {
		return "", errors.New("invalid private key length")
	}
	key := solana.PrivateKey(secret.PrivateKey)
	if key.PublicKey().String() != address {
		return "", errors.New("private key does not match address")
	}

	sig, err := p.chainClient().TransferSOL(ctx, key, to, lamports)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.lastSend = time.Now()
	p.mu.Unlock()

	p.logger.Info("transfer submitted", "signature", sig.String(), "to", args.To, "lamports", lamports)
	return sig.String(), nil
}

func (p *Provider) cooldownRemaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cooldown <= 0 || p.lastSend.IsZero() {
		return 0
	}
	return p.cooldown - time.Since(p.lastSend)
}

func (p *Provider) signatureStatus(ctx context.Context, params any) (wallet.SignatureStatus, error) {
	var args wallet.SignatureStatusParams
	if err := decodeParams(params, &args); err != nil {
		return wallet.SignatureStatus{}, err
	}
	sig, err := solana.SignatureFromBase58(args.Signature)
	if err != nil {
		return wallet.SignatureStatus{}, wallet.NewRPCError(wallet.CodeInvalidParams, "invalid signature")
	}

	st, err := p.chainClient().SignatureStatus(ctx, sig)
	if err != nil {
		return wallet.SignatureStatus{}, err
	}
	return wallet.SignatureStatus{Found: st.Found, Confirmed: st.Confirmed, Err: st.Err}, nil
}

func (p *Provider) chainClient() ChainClient {
	p.mu.Lock()
	url := p.chains[p.chainID].RPCURLs[0]
	p.mu.Unlock()
	return p.clients(url)
}

func (p *Provider) approve(ctx context.Context, req ApprovalRequest) error {
	ok, err := p.approver.Approve(ctx, req)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !ok {
		return wallet.NewRPCError(wallet.CodeUserRejected, "user rejected the request")
	}
	return nil
}

// keystoreChanged reacts to the keystore file being replaced or removed.
// An unreadable file only counts as removal when removed is set; a write may
// still be in progress.
func (p *Provider) keystoreChanged(removed bool) {
	address, err := crypto.ReadKeystoreAddress(p.keystorePath)
	if err != nil {
		if !removed {
			p.logger.Debug("keystore not readable yet", "error", err)
			return
		}
		address = ""
	}

	p.mu.Lock()
	if address == p.address {
		p.mu.Unlock()
		return
	}
	p.address = address
	wasAuthorized := p.authorized
	if address == "" {
		p.authorized = false
	}
	p.mu.Unlock()

	p.logger.Info("keystore changed", "address", address)
	if !wasAuthorized {
		return
	}
	if address == "" {
		p.emit(wallet.EventAccountsChanged, []string{})
		return
	}
	p.emit(wallet.EventAccountsChanged, []string{address})
}

func decodeParams(params any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return wallet.NewRPCError(wallet.CodeInvalidParams, "invalid params: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return wallet.NewRPCError(wallet.CodeInvalidParams, "invalid params: %v", err)
	}
	return nil
}

// asRPCError normalizes err. Context errors pass through so callers can tell cancellation apart.
func asRPCError(err error) error {
	var rpcErr *wallet.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return wallet.NewRPCError(wallet.CodeInternal, "%v", err)
}
