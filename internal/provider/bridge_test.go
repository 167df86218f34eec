package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"

	"github.com/backchain/backchain/internal/chainerr"
)

// walletScript answers one wallet RPC request.
type walletScript func(method string, params json.RawMessage) (interface{}, *walletError)

// startFakeWallet runs a websocket wallet speaking the bridge protocol.
// The accepted connection is delivered on the returned channel so tests
// can push notifications.
func startFakeWallet(t *testing.T, script walletScript) (string, <-chan *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- conn

		for {
			var msg bridgeMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.ID == nil {
				continue
			}
			resp := bridgeMessage{JSONRPC: "2.0", ID: msg.ID}
			result, werr := script(msg.Method, msg.Params)
			if werr != nil {
				resp.Error = werr
			} else {
				raw, err := json.Marshal(result)
				if err != nil {
					t.Errorf("marshal result: %v", err)
					return
				}
				resp.Result = raw
			}
			if err := conn.WriteJSON(&resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), connCh
}

const testAccount = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func connectedScript(method string, _ json.RawMessage) (interface{}, *walletError) {
	switch method {
	case "eth_requestAccounts", "eth_accounts":
		return []string{testAccount}, nil
	case "eth_chainId":
		return "0xa4b1", nil
	default:
		return nil, &walletError{Code: -32601, Message: "method not found"}
	}
}

func dial(t *testing.T, url string) *Bridge {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := DialBridge(ctx, url)
	if err != nil {
		t.Fatalf("dial bridge: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestRequestAccounts(t *testing.T) {
	url, _ := startFakeWallet(t, connectedScript)
	b := dial(t, url)

	ev, err := b.RequestAccounts(context.Background())
	if err != nil {
		t.Fatalf("request accounts: %v", err)
	}
	if !ev.Connected {
		t.Error("expected connected event")
	}
	if ev.Address != common.HexToAddress(testAccount) {
		t.Errorf("address = %s", ev.Address.Hex())
	}
	if ev.ChainID != 42161 {
		t.Errorf("chain id = %d, want 42161", ev.ChainID)
	}
}

func TestRequestAccountsRejected(t *testing.T) {
	url, _ := startFakeWallet(t, func(method string, _ json.RawMessage) (interface{}, *walletError) {
		if method == "eth_requestAccounts" {
			return nil, &walletError{Code: 4001, Message: "User rejected the request"}
		}
		return nil, &walletError{Code: -32601, Message: "method not found"}
	})
	b := dial(t, url)

	_, err := b.RequestAccounts(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !chainerr.IsUserRejected(err) {
		t.Errorf("expected UserRejected, got %v (%v)", chainerr.KindOf(err), err)
	}
}

func TestCurrentWithoutPairing(t *testing.T) {
	url, _ := startFakeWallet(t, func(method string, _ json.RawMessage) (interface{}, *walletError) {
		if method == "eth_accounts" {
			return []string{}, nil
		}
		return nil, &walletError{Code: -32601, Message: "method not found"}
	})
	b := dial(t, url)

	ev, err := b.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if ev.Connected {
		t.Error("unpaired wallet must report disconnected")
	}
}

func TestSwitchChainUnknown(t *testing.T) {
	url, _ := startFakeWallet(t, func(method string, _ json.RawMessage) (interface{}, *walletError) {
		if method == "wallet_switchEthereumChain" {
			return nil, &walletError{Code: 4902, Message: "Unrecognized chain ID"}
		}
		return connectedScript(method, nil)
	})
	b := dial(t, url)

	err := b.SwitchChain(context.Background(), 42161)
	if err == nil {
		t.Fatal("expected error")
	}
	if !chainerr.IsChainUnknown(err) {
		t.Errorf("expected ChainUnknown, got %v", chainerr.KindOf(err))
	}
}

func TestAddChainSendsMetadata(t *testing.T) {
	got := make(chan json.RawMessage, 1)
	url, _ := startFakeWallet(t, func(method string, params json.RawMessage) (interface{}, *walletError) {
		if method == "wallet_addEthereumChain" {
			got <- params
			return nil, nil
		}
		return connectedScript(method, nil)
	})
	b := dial(t, url)

	err := b.AddChain(context.Background(), ChainMetadata{
		ChainID:        42161,
		Name:           "Arbitrum One",
		RPCURL:         "https://arb1.arbitrum.io/rpc",
		NativeCurrency: "ETH",
		NativeDecimals: 18,
		ExplorerURL:    "https://arbiscan.io",
	})
	if err != nil {
		t.Fatalf("add chain: %v", err)
	}

	raw := <-got
	var params []map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil || len(params) != 1 {
		t.Fatalf("malformed params: %s", raw)
	}
	if params[0]["chainId"] != "0xa4b1" {
		t.Errorf("chainId = %v", params[0]["chainId"])
	}
	if params[0]["chainName"] != "Arbitrum One" {
		t.Errorf("chainName = %v", params[0]["chainName"])
	}
}

func TestChainChangedNotification(t *testing.T) {
	url, conns := startFakeWallet(t, connectedScript)
	b := dial(t, url)

	if _, err := b.RequestAccounts(context.Background()); err != nil {
		t.Fatalf("request accounts: %v", err)
	}

	conn := <-conns
	note := bridgeMessage{JSONRPC: "2.0", Method: "chainChanged"}
	note.Params, _ = json.Marshal([]string{"0x1"})
	if err := conn.WriteJSON(&note); err != nil {
		t.Fatalf("push notification: %v", err)
	}

	select {
	case ev := <-b.Events():
		if ev.ChainID != 1 {
			t.Errorf("chain id = %d, want 1", ev.ChainID)
		}
		if !ev.Connected {
			t.Error("chain change must keep the session connected")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event after chainChanged notification")
	}
}

func TestAccountsChangedToEmptyDisconnects(t *testing.T) {
	url, conns := startFakeWallet(t, connectedScript)
	b := dial(t, url)

	if _, err := b.RequestAccounts(context.Background()); err != nil {
		t.Fatalf("request accounts: %v", err)
	}

	conn := <-conns
	note := bridgeMessage{JSONRPC: "2.0", Method: "accountsChanged"}
	note.Params, _ = json.Marshal([]string{})
	if err := conn.WriteJSON(&note); err != nil {
		t.Fatalf("push notification: %v", err)
	}

	select {
	case ev := <-b.Events():
		if ev.Connected {
			t.Error("empty accounts must surface as disconnected")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event after accountsChanged notification")
	}
}

func TestCloseClosesEvents(t *testing.T) {
	url, _ := startFakeWallet(t, connectedScript)
	b := dial(t, url)
	b.Close()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-b.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after Close")
		}
	}
}

func TestPendingCallFailsOnConnectionDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		// Drop the connection with the request unanswered.
		var msg bridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	b := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.RequestAccounts(ctx); err == nil {
		t.Fatal("expected error after the wallet dropped the connection")
	}
	if ctx.Err() != nil {
		t.Fatal("call only failed at the context deadline, not on the drop")
	}
}

func TestSignerRequiresSession(t *testing.T) {
	url, _ := startFakeWallet(t, connectedScript)
	b := dial(t, url)

	if _, err := b.Signer(context.Background()); err == nil {
		t.Fatal("expected error before any wallet session")
	}
}

func TestParseChainID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0x1", want: 1},
		{in: "0xa4b1", want: 42161},
		{in: "nonsense", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseChainID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseChainID(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseChainID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseChainID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
