package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/util"
)

// Bridge speaks the wallet JSON-RPC methods (eth_requestAccounts,
// wallet_switchEthereumChain, eth_signTransaction, ...) to an external
// wallet over a websocket pairing. The wallet pushes accountsChanged,
// chainChanged and disconnect notifications on the same connection;
// those surface on Events.
type Bridge struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  atomic.Uint64

	pendMu  sync.Mutex
	pending map[uint64]chan *bridgeMessage

	events chan Event
	done   chan struct{}
	once   sync.Once

	stateMu sync.RWMutex
	state   Event
}

// walletError is a JSON-RPC error returned by the wallet. It exposes
// ErrorCode and ErrorData so classification sees the EIP-1193 code.
type walletError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *walletError) Error() string  { return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message) }
func (e *walletError) ErrorCode() int { return e.Code }
func (e *walletError) ErrorData() interface{} {
	if len(e.Data) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return string(e.Data)
	}
	return v
}

// bridgeMessage is a single frame in either direction. Responses carry
// an id; wallet notifications carry a method and no id.
type bridgeMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *walletError    `json:"error,omitempty"`
}

// DialBridge connects to a wallet bridge endpoint.
func DialBridge(ctx context.Context, url string) (*Bridge, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, chainerr.New(chainerr.ProviderUnavailable, "bridge.dial",
			fmt.Errorf("failed to reach wallet bridge at %s: %w", url, err))
	}

	b := &Bridge{
		conn:    conn,
		pending: make(map[uint64]chan *bridgeMessage),
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}

	util.SafeGoWithName("wallet-bridge-read", b.readLoop)
	return b, nil
}

// Name implements Provider.
func (b *Bridge) Name() string { return "bridge" }

// Events implements Provider. The channel is closed when the bridge
// connection drops or Close is called.
func (b *Bridge) Events() <-chan Event { return b.events }

// Close implements Provider.
func (b *Bridge) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.conn.Close()
	})
	return nil
}

// RequestAccounts runs the connect flow: prompt the wallet for account
// access, then read the active chain. A declined prompt classifies as
// UserRejected.
func (b *Bridge) RequestAccounts(ctx context.Context) (Event, error) {
	raw, err := b.call(ctx, "eth_requestAccounts", nil)
	if err != nil {
		return Event{}, chainerr.New(chainerr.KindOf(err), "bridge.request_accounts", err)
	}

	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return Event{}, fmt.Errorf("malformed accounts response: %w", err)
	}
	if len(accounts) == 0 {
		return Event{}, chainerr.Newf(chainerr.ProviderUnavailable,
			"bridge.request_accounts", "wallet returned no accounts")
	}

	chainID, err := b.chainID(ctx)
	if err != nil {
		return Event{}, err
	}

	ev := Event{Connected: true, Address: common.HexToAddress(accounts[0]), ChainID: chainID}
	b.setState(ev)
	return ev, nil
}

// Current implements Provider. Unlike RequestAccounts it never prompts;
// an unpaired wallet simply reports no accounts.
func (b *Bridge) Current(ctx context.Context) (Event, error) {
	raw, err := b.call(ctx, "eth_accounts", nil)
	if err != nil {
		return Event{}, chainerr.New(chainerr.KindOf(err), "bridge.current", err)
	}

	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return Event{}, fmt.Errorf("malformed accounts response: %w", err)
	}
	if len(accounts) == 0 {
		ev := Event{Connected: false}
		b.setState(ev)
		return ev, nil
	}

	chainID, err := b.chainID(ctx)
	if err != nil {
		return Event{}, err
	}

	ev := Event{Connected: true, Address: common.HexToAddress(accounts[0]), ChainID: chainID}
	b.setState(ev)
	return ev, nil
}

// SwitchChain implements Provider. A wallet that does not know the
// chain returns code 4902, classified as ChainUnknown so the caller can
// follow up with AddChain.
func (b *Bridge) SwitchChain(ctx context.Context, chainID int64) error {
	params := []interface{}{map[string]string{
		"chainId": hexutil.EncodeBig(big.NewInt(chainID)),
	}}
	if _, err := b.call(ctx, "wallet_switchEthereumChain", params); err != nil {
		return chainerr.New(chainerr.KindOf(err), "bridge.switch_chain", err)
	}
	return nil
}

// AddChain implements Provider.
func (b *Bridge) AddChain(ctx context.Context, meta ChainMetadata) error {
	params := []interface{}{map[string]interface{}{
		"chainId":   hexutil.EncodeBig(big.NewInt(meta.ChainID)),
		"chainName": meta.Name,
		"rpcUrls":   []string{meta.RPCURL},
		"nativeCurrency": map[string]interface{}{
			"name":     meta.NativeCurrency,
			"symbol":   meta.NativeCurrency,
			"decimals": meta.NativeDecimals,
		},
		"blockExplorerUrls": []string{meta.ExplorerURL},
	}}
	if _, err := b.call(ctx, "wallet_addEthereumChain", params); err != nil {
		return chainerr.New(chainerr.KindOf(err), "bridge.add_chain", err)
	}
	return nil
}

// Signer implements Provider. Signing round-trips through the wallet:
// the transaction is serialized to a wallet call, the user confirms in
// the wallet UI, and the signed payload comes back over the bridge.
func (b *Bridge) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	b.stateMu.RLock()
	state := b.state
	b.stateMu.RUnlock()

	if !state.Connected {
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, "bridge.signer",
			"no wallet session")
	}

	from := state.Address
	return &bind.TransactOpts{
		From:    from,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, fmt.Errorf("signer asked for %s, wallet account is %s", addr.Hex(), from.Hex())
			}
			return b.signTransaction(ctx, from, tx)
		},
	}, nil
}

func (b *Bridge) signTransaction(ctx context.Context, from common.Address, tx *types.Transaction) (*types.Transaction, error) {
	params := []interface{}{txToWalletCall(from, tx)}
	raw, err := b.call(ctx, "eth_signTransaction", params)
	if err != nil {
		return nil, chainerr.New(chainerr.KindOf(err), "bridge.sign", err)
	}

	// Wallets answer either with the raw signed payload directly or
	// wrapped in a {raw, tx} object.
	var rawHex string
	if err := json.Unmarshal(raw, &rawHex); err != nil {
		var wrapped struct {
			Raw string `json:"raw"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Raw == "" {
			return nil, fmt.Errorf("malformed sign response: %s", raw)
		}
		rawHex = wrapped.Raw
	}

	payload, err := hexutil.Decode(rawHex)
	if err != nil {
		return nil, fmt.Errorf("malformed signed payload: %w", err)
	}
	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	return signed, nil
}

// txToWalletCall serializes a transaction into the object form wallet
// RPC methods expect.
func txToWalletCall(from common.Address, tx *types.Transaction) map[string]interface{} {
	call := map[string]interface{}{
		"from":  from.Hex(),
		"gas":   hexutil.EncodeUint64(tx.Gas()),
		"nonce": hexutil.EncodeUint64(tx.Nonce()),
	}
	if to := tx.To(); to != nil {
		call["to"] = to.Hex()
	}
	if v := tx.Value(); v != nil && v.Sign() > 0 {
		call["value"] = hexutil.EncodeBig(v)
	}
	if data := tx.Data(); len(data) > 0 {
		call["data"] = hexutil.Encode(data)
	}
	if tx.Type() == types.DynamicFeeTxType {
		call["maxFeePerGas"] = hexutil.EncodeBig(tx.GasFeeCap())
		call["maxPriorityFeePerGas"] = hexutil.EncodeBig(tx.GasTipCap())
	} else if gp := tx.GasPrice(); gp != nil && gp.Sign() > 0 {
		call["gasPrice"] = hexutil.EncodeBig(gp)
	}
	return call
}

func (b *Bridge) chainID(ctx context.Context) (int64, error) {
	raw, err := b.call(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, chainerr.New(chainerr.KindOf(err), "bridge.chain_id", err)
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, fmt.Errorf("malformed chain id response: %w", err)
	}
	return parseChainID(hex)
}

func parseChainID(s string) (int64, error) {
	id, err := hexutil.DecodeBig(s)
	if err != nil {
		return 0, fmt.Errorf("malformed chain id %q: %w", s, err)
	}
	if !id.IsInt64() {
		return 0, fmt.Errorf("chain id %s out of range", id)
	}
	return id.Int64(), nil
}

// call performs one JSON-RPC round-trip over the bridge.
func (b *Bridge) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := b.nextID.Add(1)

	req := bridgeMessage{JSONRPC: "2.0", ID: &id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode params: %w", err)
		}
		req.Params = raw
	}

	ch := make(chan *bridgeMessage, 1)
	b.pendMu.Lock()
	b.pending[id] = ch
	b.pendMu.Unlock()
	defer func() {
		b.pendMu.Lock()
		delete(b.pending, id)
		b.pendMu.Unlock()
	}()

	b.writeMu.Lock()
	err := b.conn.WriteJSON(&req)
	b.writeMu.Unlock()
	if err != nil {
		return nil, chainerr.New(chainerr.ProviderUnavailable, "bridge.call",
			fmt.Errorf("bridge write failed: %w", err))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.done:
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, "bridge.call",
			"bridge connection closed")
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// failPending delivers a closed-connection error frame to every call
// still waiting for a response. A full buffer already holds a real
// response for its waiter, so the send is skipped rather than blocked.
func (b *Bridge) failPending() {
	b.pendMu.Lock()
	defer b.pendMu.Unlock()
	for id, ch := range b.pending {
		select {
		case ch <- &bridgeMessage{Error: &walletError{Code: -32000, Message: "bridge connection closed"}}:
		default:
		}
		delete(b.pending, id)
	}
}

// readLoop routes responses to pending calls and notifications to the
// event channel. It owns the events channel and closes it on exit.
func (b *Bridge) readLoop() {
	defer func() {
		b.Close()
		b.failPending()
		close(b.events)
	}()

	for {
		var msg bridgeMessage
		if err := b.conn.ReadJSON(&msg); err != nil {
			select {
			case <-b.done:
			default:
				logging.Warn("wallet bridge connection lost", logging.Err(err))
				b.emit(Event{Connected: false})
			}
			return
		}

		if msg.ID != nil {
			b.pendMu.Lock()
			ch, ok := b.pending[*msg.ID]
			b.pendMu.Unlock()
			if ok {
				ch <- &msg
			}
			continue
		}

		b.handleNotification(&msg)
	}
}

func (b *Bridge) handleNotification(msg *bridgeMessage) {
	switch msg.Method {
	case "accountsChanged":
		var accounts []string
		if err := json.Unmarshal(msg.Params, &accounts); err != nil {
			// Some wallets nest the array in the params list.
			var nested [][]string
			if err := json.Unmarshal(msg.Params, &nested); err != nil || len(nested) == 0 {
				logging.Warn("malformed accountsChanged notification", "params", string(msg.Params))
				return
			}
			accounts = nested[0]
		}
		b.stateMu.Lock()
		if len(accounts) == 0 {
			b.state = Event{Connected: false}
		} else {
			b.state.Connected = true
			b.state.Address = common.HexToAddress(accounts[0])
		}
		ev := b.state
		b.stateMu.Unlock()
		b.emit(ev)

	case "chainChanged":
		var params []string
		if err := json.Unmarshal(msg.Params, &params); err != nil || len(params) == 0 {
			logging.Warn("malformed chainChanged notification", "params", string(msg.Params))
			return
		}
		chainID, err := parseChainID(params[0])
		if err != nil {
			logging.Warn("malformed chainChanged notification", logging.Err(err))
			return
		}
		b.stateMu.Lock()
		b.state.ChainID = chainID
		ev := b.state
		b.stateMu.Unlock()
		b.emit(ev)

	case "disconnect":
		b.setState(Event{Connected: false})
		b.emit(Event{Connected: false})

	default:
		logging.Debug("ignoring wallet notification", "method", msg.Method)
	}
}

func (b *Bridge) setState(ev Event) {
	b.stateMu.Lock()
	b.state = ev
	b.stateMu.Unlock()
}

// emit pushes an event without ever blocking the read loop. A consumer
// that has fallen 16 events behind loses the oldest ones; the next
// Current call resynchronizes.
func (b *Bridge) emit(ev Event) {
	for {
		select {
		case b.events <- ev:
			return
		default:
			select {
			case <-b.events:
			default:
			}
		}
	}
}

var _ Provider = (*Bridge)(nil)
