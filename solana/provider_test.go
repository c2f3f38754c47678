package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/yieldgate/internal/client"
	"github.com/AlexZinkM/yieldgate/internal/crypto"
	"github.com/AlexZinkM/yieldgate/internal/logging"
	"github.com/AlexZinkM/yieldgate/internal/model"
	"github.com/AlexZinkM/yieldgate/internal/wallet"
)

var lightKDF = model.KDFParams{N: 1 << 4, R: 8, P: 1}

type fakeChain struct {
	mu        sync.Mutex
	rpcURLs   []string
	balance   uint64
	transfers []fakeTransfer
	status    client.SignatureStatus
}

type fakeTransfer struct {
	from     string
	to       string
	lamports uint64
}

func (f *fakeChain) factory(rpcURL string) ChainClient {
	f.mu.Lock()
	f.rpcURLs = append(f.rpcURLs, rpcURL)
	f.mu.Unlock()
	return f
}

func (f *fakeChain) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	return f.balance, nil
}

func (f *fakeChain) TransferSOL(ctx context.Context, key solana.PrivateKey, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, fakeTransfer{from: key.PublicKey().String(), to: to.String(), lamports: lamports})
	return solana.Signature{1, 2, 3}, nil
}

func (f *fakeChain) SignatureStatus(ctx context.Context, sig solana.Signature) (client.SignatureStatus, error) {
	return f.status, nil
}

func (f *fakeChain) lastURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rpcURLs[len(f.rpcURLs)-1]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name    string
	payload string
}

func (r *eventRecorder) OnEvent(event string, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, payload: string(payload)})
}

func (r *eventRecorder) snapshot() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func newTestProvider(t *testing.T, opts ...Option) (*Provider, string, *fakeChain) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.cwt")
	address, png, err := GenerateKeystore(path, []byte("pw"), lightKDF)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	chain := &fakeChain{balance: 2_000_000_000}
	opts = append([]Option{WithClientFactory(chain.factory), WithLogger(logging.Discard())}, opts...)
	p, err := NewProvider(path, []byte("pw"), "devnet", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, address, chain
}

func request(t *testing.T, p *Provider, method string, params any, out any) error {
	t.Helper()
	raw, err := p.Request(context.Background(), wallet.RequestArgs{Method: method, Params: params})
	if err != nil {
		return err
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return nil
}

func rpcCode(t *testing.T, err error) int {
	t.Helper()
	code, ok := wallet.ErrorCode(err)
	require.True(t, ok, "expected RPCError, got %v", err)
	return code
}

func TestRequestAccountsApproval(t *testing.T) {
	deny := ApproverFunc(func(context.Context, ApprovalRequest) (bool, error) { return false, nil })
	p, address, _ := newTestProvider(t, WithApprover(deny))

	var accounts []string
	err := request(t, p, wallet.MethodRequestAccounts, nil, &accounts)
	assert.Equal(t, wallet.CodeUserRejected, rpcCode(t, err))

	require.NoError(t, request(t, p, wallet.MethodAccounts, nil, &accounts))
	assert.Empty(t, accounts)

	p.approver = AutoApprove
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, &accounts))
	assert.Equal(t, []string{address}, accounts)
	require.NoError(t, request(t, p, wallet.MethodAccounts, nil, &accounts))
	assert.Equal(t, []string{address}, accounts)
}

func TestChainIDAndSwitch(t *testing.T) {
	p, _, chain := newTestProvider(t)
	rec := &eventRecorder{}
	p.On(wallet.EventChainChanged, rec)

	var chainID string
	require.NoError(t, request(t, p, wallet.MethodChainID, nil, &chainID))
	assert.Equal(t, "devnet", chainID)

	err := request(t, p, wallet.MethodSwitchChain, wallet.SwitchChainParams{ChainID: "testnet"}, nil)
	assert.Equal(t, wallet.CodeUnrecognizedChain, rpcCode(t, err))

	require.NoError(t, request(t, p, wallet.MethodSwitchChain, wallet.SwitchChainParams{ChainID: "mainnet-beta"}, nil))
	require.NoError(t, request(t, p, wallet.MethodChainID, nil, &chainID))
	assert.Equal(t, "mainnet-beta", chainID)
	assert.Equal(t, []recordedEvent{{name: wallet.EventChainChanged, payload: `"mainnet-beta"`}}, rec.snapshot())

	var balance string
	require.NoError(t, request(t, p, wallet.MethodGetBalance, wallet.GetBalanceParams{Address: p.Address()}, &balance))
	mainnet, _ := wallet.LookupNetwork("mainnet-beta")
	assert.Equal(t, mainnet.RPCURLs[0], chain.lastURL())
}

func TestAddChainThenSwitch(t *testing.T) {
	p, _, chain := newTestProvider(t)
	rec := &eventRecorder{}
	p.On(wallet.EventChainChanged, rec)

	network, ok := wallet.LookupNetwork("testnet")
	require.True(t, ok)
	require.NoError(t, request(t, p, wallet.MethodAddChain, network, nil))

	var chainID string
	require.NoError(t, request(t, p, wallet.MethodChainID, nil, &chainID))
	assert.Equal(t, "testnet", chainID)
	assert.Len(t, rec.snapshot(), 1)

	var balance string
	require.NoError(t, request(t, p, wallet.MethodGetBalance, wallet.GetBalanceParams{Address: p.Address()}, &balance))
	assert.Equal(t, "2000000000", balance)
	assert.Equal(t, network.RPCURLs[0], chain.lastURL())

	err := request(t, p, wallet.MethodAddChain, wallet.Network{ChainID: "x"}, nil)
	assert.Equal(t, wallet.CodeInvalidParams, rpcCode(t, err))
}

func TestGetBalanceRejectsBadAddress(t *testing.T) {
	p, _, _ := newTestProvider(t)
	err := request(t, p, wallet.MethodGetBalance, wallet.GetBalanceParams{Address: "not-base58!"}, nil)
	assert.Equal(t, wallet.CodeInvalidParams, rpcCode(t, err))
}

func TestSendTransaction(t *testing.T) {
	p, address, chain := newTestProvider(t)
	dest := solana.NewWallet().PublicKey().String()
	params := wallet.SendTransactionParams{From: address, To: dest, Value: "1000"}

	err := request(t, p, wallet.MethodSendTransaction, params, nil)
	assert.Equal(t, wallet.CodeUnauthorized, rpcCode(t, err))

	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))

	var sig string
	require.NoError(t, request(t, p, wallet.MethodSendTransaction, params, &sig))
	assert.Equal(t, (solana.Signature{1, 2, 3}).String(), sig)
	require.Len(t, chain.transfers, 1)
	assert.Equal(t, fakeTransfer{from: address, to: dest, lamports: 1000}, chain.transfers[0])

	chain.status = client.SignatureStatus{Found: true, Confirmed: true}
	var status wallet.SignatureStatus
	require.NoError(t, request(t, p, wallet.MethodGetSignatureStatus, wallet.SignatureStatusParams{Signature: sig}, &status))
	assert.True(t, status.Confirmed)
}

func TestSendTransactionValidation(t *testing.T) {
	p, address, _ := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	dest := solana.NewWallet().PublicKey().String()

	cases := map[string]wallet.SendTransactionParams{
		"bad to":     {From: address, To: "nope", Value: "1"},
		"zero value": {From: address, To: dest, Value: "0"},
		"bad value":  {From: address, To: dest, Value: "1.5"},
	}
	for name, params := range cases {
		err := request(t, p, wallet.MethodSendTransaction, params, nil)
		assert.Equal(t, wallet.CodeInvalidParams, rpcCode(t, err), name)
	}

	err := request(t, p, wallet.MethodSendTransaction, wallet.SendTransactionParams{From: dest, To: dest, Value: "1"}, nil)
	assert.Equal(t, wallet.CodeUnauthorized, rpcCode(t, err))
}

func TestSendTransactionRejectedByApprover(t *testing.T) {
	approver := ApproverFunc(func(_ context.Context, req ApprovalRequest) (bool, error) {
		return req.Kind != ApproveSend, nil
	})
	p, address, chain := newTestProvider(t, WithApprover(approver))
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))

	dest := solana.NewWallet().PublicKey().String()
	err := request(t, p, wallet.MethodSendTransaction, wallet.SendTransactionParams{From: address, To: dest, Value: "5"}, nil)
	assert.Equal(t, wallet.CodeUserRejected, rpcCode(t, err))
	assert.Empty(t, chain.transfers)
}

func TestSendCooldown(t *testing.T) {
	p, address, chain := newTestProvider(t, WithSendCooldown(time.Hour))
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))

	dest := solana.NewWallet().PublicKey().String()
	params := wallet.SendTransactionParams{From: address, To: dest, Value: "5"}
	require.NoError(t, request(t, p, wallet.MethodSendTransaction, params, nil))

	err := request(t, p, wallet.MethodSendTransaction, params, nil)
	assert.Equal(t, wallet.CodeInternal, rpcCode(t, err))
	assert.Len(t, chain.transfers, 1)
}

func TestUnsupportedMethod(t *testing.T) {
	p, _, _ := newTestProvider(t)
	err := request(t, p, "eth_sign", nil, nil)
	assert.Equal(t, wallet.CodeUnsupportedMethod, rpcCode(t, err))
}

func TestKeystoreRemovedFiresEmptyAccounts(t *testing.T) {
	p, _, _ := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	rec := &eventRecorder{}
	p.On(wallet.EventAccountsChanged, rec)

	require.NoError(t, os.Remove(p.keystorePath))

	require.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e.payload == "[]" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, p.Address())
}

func TestKeystoreReplacedFiresNewAccount(t *testing.T) {
	p, oldAddress, _ := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	rec := &eventRecorder{}
	p.On(wallet.EventAccountsChanged, rec)

	replacement := filepath.Join(filepath.Dir(p.keystorePath), "next.cwt")
	newAddress, _, err := GenerateKeystore(replacement, []byte("pw"), lightKDF)
	require.NoError(t, err)
	require.NotEqual(t, oldAddress, newAddress)
	require.NoError(t, os.Rename(replacement, p.keystorePath))

	want, _ := json.Marshal([]string{newAddress})
	require.Eventually(t, func() bool {
		for _, e := range rec.snapshot() {
			if e.payload == string(want) {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, newAddress, p.Address())
}

func TestPartialKeystoreWriteKeepsAccount(t *testing.T) {
	p, address, _ := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	rec := &eventRecorder{}
	p.On(wallet.EventAccountsChanged, rec)

	original, err := os.ReadFile(p.keystorePath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.keystorePath, original[:len(original)/2], 0o600))
	p.keystoreChanged(false)

	assert.Equal(t, address, p.Address())
	assert.Empty(t, rec.snapshot())

	require.NoError(t, os.WriteFile(p.keystorePath, original, 0o600))
	p.keystoreChanged(false)

	var accounts []string
	require.NoError(t, request(t, p, wallet.MethodAccounts, nil, &accounts))
	assert.Equal(t, []string{address}, accounts)
	assert.Empty(t, rec.snapshot())
}

func TestUnreadableKeystoreOnRemovalClearsAccount(t *testing.T) {
	p, _, _ := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	rec := &eventRecorder{}
	p.On(wallet.EventAccountsChanged, rec)

	require.NoError(t, os.WriteFile(p.keystorePath, []byte("{"), 0o600))
	p.keystoreChanged(true)

	assert.Empty(t, p.Address())
	require.NotEmpty(t, rec.snapshot())
	assert.Equal(t, "[]", rec.snapshot()[0].payload)
}

func TestIsRemoval(t *testing.T) {
	assert.True(t, isRemoval(fsnotify.Remove))
	assert.True(t, isRemoval(fsnotify.Rename))
	assert.False(t, isRemoval(fsnotify.Write))
	assert.False(t, isRemoval(fsnotify.Create))
}

func TestSendAfterRekeyReportsStalePassword(t *testing.T) {
	p, address, chain := newTestProvider(t)
	require.NoError(t, request(t, p, wallet.MethodRequestAccounts, nil, nil))
	require.NoError(t, crypto.Reencrypt(p.keystorePath, []byte("pw"), []byte("new-pw"), lightKDF))

	dest := solana.NewWallet().PublicKey().String()
	err := request(t, p, wallet.MethodSendTransaction, wallet.SendTransactionParams{From: address, To: dest, Value: "5"}, nil)
	assert.Equal(t, wallet.CodeUnauthorized, rpcCode(t, err))
	assert.Contains(t, err.Error(), "password changed")
	assert.Empty(t, chain.transfers)
}

func TestCloseFiresDisconnect(t *testing.T) {
	p, _, _ := newTestProvider(t)
	rec := &eventRecorder{}
	p.On(wallet.EventDisconnect, rec)

	require.NoError(t, p.Close())
	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, wallet.EventDisconnect, events[0].name)

	_, err := p.Request(context.Background(), wallet.RequestArgs{Method: wallet.MethodChainID})
	assert.Equal(t, wallet.CodeDisconnected, rpcCode(t, err))
	require.NoError(t, p.Close())
}

func TestRemoveListener(t *testing.T) {
	p, _, _ := newTestProvider(t)
	rec := &eventRecorder{}
	p.On(wallet.EventChainChanged, rec)
	p.RemoveListener(wallet.EventChainChanged, rec)

	require.NoError(t, request(t, p, wallet.MethodSwitchChain, wallet.SwitchChainParams{ChainID: "mainnet-beta"}, nil))
	assert.Empty(t, rec.snapshot())
}

func TestNewProviderErrors(t *testing.T) {
	_, err := NewProvider(filepath.Join(t.TempDir(), "missing.cwt"), []byte("pw"), "devnet")
	assert.True(t, errors.Is(err, crypto.ErrKeystoreNotFound))

	path := filepath.Join(t.TempDir(), "wallet.cwt")
	_, _, err = GenerateKeystore(path, []byte("pw"), lightKDF)
	require.NoError(t, err)
	_, err = NewProvider(path, []byte("pw"), "nowhere")
	assert.Error(t, err)
}

func TestGenerateKeystoreRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.cwt")
	_, _, err := GenerateKeystore(path, []byte("pw"), lightKDF)
	require.NoError(t, err)

	_, _, err = GenerateKeystore(path, []byte("pw"), lightKDF)
	assert.ErrorIs(t, err, crypto.ErrKeystoreExists)
}
