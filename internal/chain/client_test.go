package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func rpcServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"error":{"message":"method not found"}}`)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
}

func TestRPCBalance(t *testing.T) {
	// 2 ETH in wei.
	srv := rpcServer(t, map[string]string{
		"eth_getBalance": `"0x1bc16d674ec80000"`,
	})
	defer srv.Close()

	bal, err := NewRPC(srv.URL).Balance(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal.BalanceWei != "2000000000000000000" {
		t.Errorf("wei = %s, want 2000000000000000000", bal.BalanceWei)
	}
	if bal.BalanceETH != 2.0 {
		t.Errorf("eth = %v, want 2", bal.BalanceETH)
	}
	if bal.Simulated {
		t.Error("live balance flagged as simulated")
	}
}

func TestRPCGasPricesFromBaseFee(t *testing.T) {
	// 10 gwei base fee.
	srv := rpcServer(t, map[string]string{
		"eth_getBlockByNumber": `{"baseFeePerGas":"0x2540be400"}`,
	})
	defer srv.Close()

	prices, err := NewRPC(srv.URL).GasPrices(context.Background())
	if err != nil {
		t.Fatalf("GasPrices: %v", err)
	}
	if prices.Slow != 10 || prices.Average != 15 || prices.Fast != 20 {
		t.Errorf("tiers = %v/%v/%v, want 10/15/20", prices.Slow, prices.Average, prices.Fast)
	}
	if prices.Unit != "gwei" {
		t.Errorf("unit = %q, want gwei", prices.Unit)
	}
}

func TestRPCErrorResponse(t *testing.T) {
	srv := rpcServer(t, nil)
	defer srv.Close()

	if _, err := NewRPC(srv.URL).Balance(context.Background(), "0xabc"); err == nil {
		t.Error("expected error from rpc error payload")
	}
}

func TestRPCSendRaw(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"eth_sendRawTransaction": `"0xdeadbeef"`,
	})
	defer srv.Close()

	sub, err := NewRPC(srv.URL).SendRaw(context.Background(), "0xf86c0a")
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	if sub.Hash != "0xdeadbeef" {
		t.Errorf("hash = %q, want 0xdeadbeef", sub.Hash)
	}
	if sub.Simulated {
		t.Error("live submission flagged as simulated")
	}
}

func TestSimulatorSendRawIsDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := Simulator{}.SendRaw(ctx, "0xf86c0a")
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	second, err := Simulator{}.SendRaw(ctx, "0xf86c0a")
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	if first.Hash != second.Hash {
		t.Errorf("same payload gave different hashes: %q vs %q", first.Hash, second.Hash)
	}
	if !first.Simulated {
		t.Error("simulator submission not flagged")
	}
}

func TestSimulatorValues(t *testing.T) {
	ctx := context.Background()

	bal, err := Simulator{}.Balance(ctx, "0xabc")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal.BalanceETH != 1.0 || !bal.Simulated {
		t.Errorf("balance = %+v, want simulated 1 ETH", bal)
	}

	prices, err := Simulator{}.GasPrices(ctx)
	if err != nil {
		t.Fatalf("GasPrices: %v", err)
	}
	if prices.Slow != 20 || prices.Average != 30 || prices.Fast != 50 || !prices.Simulated {
		t.Errorf("prices = %+v, want simulated 20/30/50", prices)
	}
}
