package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/tokenmesh/hybridex/pkg/core/engine"
	"github.com/tokenmesh/hybridex/pkg/core/ledger"
)

const (
	addrBuyer  = "0x1000000000000000000000000000000000000001"
	addrSeller = "0x2000000000000000000000000000000000000002"
	addrTokA   = "0x00000000000000000000000000000000000000aa"
	addrTokB   = "0x00000000000000000000000000000000000000bb"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	ld := ledger.New()
	hub := NewHub(log)
	eng, err := engine.New(engine.Config{Ledger: ld, Emitter: hub})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return NewServer(eng, ld, hub, log)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func fundViaAPI(t *testing.T, srv *Server, owner, token, amount string) {
	t.Helper()
	mustStatus(t, doJSON(t, srv, "POST", "/api/v1/ledger/mint",
		MintRequest{Token: token, Owner: owner, Amount: amount}), http.StatusOK)
	mustStatus(t, doJSON(t, srv, "POST", "/api/v1/ledger/approve",
		ApproveRequest{Token: token, Owner: owner, Amount: amount}), http.StatusOK)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	mustStatus(t, doJSON(t, srv, "GET", "/health", nil), http.StatusOK)
}

func TestCreateOrderAndOrderBookFlow(t *testing.T) {
	srv := newTestServer(t)
	fundViaAPI(t, srv, addrSeller, addrTokB, "800")

	w := doJSON(t, srv, "POST", "/api/v1/orders", CreateOrderRequest{
		Maker: addrSeller, TokenIn: addrTokB, TokenOut: addrTokA,
		AmountIn: "800", AmountOut: "900", IsBuyOrder: false,
	})
	mustStatus(t, w, http.StatusOK)

	var created CreateOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.OrderID == "" {
		t.Fatal("empty order id")
	}

	// Single order endpoint.
	w = doJSON(t, srv, "GET", "/api/v1/orders/"+created.OrderID, nil)
	mustStatus(t, w, http.StatusOK)
	var info OrderInfo
	json.Unmarshal(w.Body.Bytes(), &info)
	if info.Status != "open" || info.Side != "sell" || info.AmountIn != "800" {
		t.Errorf("order info = %+v", info)
	}

	// Book is the same whichever way the pair is asked for.
	for _, q := range []string{
		"/api/v1/orderbook?tokenA=" + addrTokA + "&tokenB=" + addrTokB,
		"/api/v1/orderbook?tokenA=" + addrTokB + "&tokenB=" + addrTokA,
	} {
		w = doJSON(t, srv, "GET", q, nil)
		mustStatus(t, w, http.StatusOK)
		var ob OrderBookResponse
		json.Unmarshal(w.Body.Bytes(), &ob)
		if len(ob.Sells) != 1 || len(ob.Buys) != 0 {
			t.Errorf("book for %s = %d buys, %d sells", q, len(ob.Buys), len(ob.Sells))
		}
	}

	// A crossing buy settles and shows up in the trade feed.
	fundViaAPI(t, srv, addrBuyer, addrTokA, "1000")
	w = doJSON(t, srv, "POST", "/api/v1/orders", CreateOrderRequest{
		Maker: addrBuyer, TokenIn: addrTokA, TokenOut: addrTokB,
		AmountIn: "1000", AmountOut: "800", IsBuyOrder: true,
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, srv, "GET", "/api/v1/trades", nil)
	mustStatus(t, w, http.StatusOK)
	var trades []TradeInfo
	json.Unmarshal(w.Body.Bytes(), &trades)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].TakerAmount != "1000" || trades[0].MakerAmount != "800" {
		t.Errorf("trade amounts = %s/%s", trades[0].TakerAmount, trades[0].MakerAmount)
	}

	// User order history.
	w = doJSON(t, srv, "GET", "/api/v1/accounts/"+addrSeller+"/orders", nil)
	mustStatus(t, w, http.StatusOK)
	var ids []string
	json.Unmarshal(w.Body.Bytes(), &ids)
	if len(ids) != 1 {
		t.Errorf("seller orders = %v", ids)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	fundViaAPI(t, srv, addrSeller, addrTokB, "800")

	// Same-token pair → 400.
	w := doJSON(t, srv, "POST", "/api/v1/orders", CreateOrderRequest{
		Maker: addrSeller, TokenIn: addrTokB, TokenOut: addrTokB,
		AmountIn: "800", AmountOut: "900",
	})
	mustStatus(t, w, http.StatusBadRequest)

	// Malformed address → 400.
	w = doJSON(t, srv, "POST", "/api/v1/orders", CreateOrderRequest{
		Maker: "not-an-address", TokenIn: addrTokB, TokenOut: addrTokA,
		AmountIn: "800", AmountOut: "900",
	})
	mustStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, srv, "POST", "/api/v1/orders", CreateOrderRequest{
		Maker: addrSeller, TokenIn: addrTokB, TokenOut: addrTokA,
		AmountIn: "800", AmountOut: "900",
	})
	mustStatus(t, w, http.StatusOK)
	var created CreateOrderResponse
	json.Unmarshal(w.Body.Bytes(), &created)

	// Cancel by a stranger → 403.
	w = doJSON(t, srv, "POST", "/api/v1/orders/cancel", CancelOrderRequest{
		OrderID: created.OrderID, Caller: addrBuyer,
	})
	mustStatus(t, w, http.StatusForbidden)

	// Cancel by the maker → 200, second cancel → 409.
	w = doJSON(t, srv, "POST", "/api/v1/orders/cancel", CancelOrderRequest{
		OrderID: created.OrderID, Caller: addrSeller,
	})
	mustStatus(t, w, http.StatusOK)
	w = doJSON(t, srv, "POST", "/api/v1/orders/cancel", CancelOrderRequest{
		OrderID: created.OrderID, Caller: addrSeller,
	})
	mustStatus(t, w, http.StatusConflict)

	// Unknown order → 404.
	w = doJSON(t, srv, "GET", "/api/v1/orders/0x0000000000000000000000000000000000000000000000000000000000000001", nil)
	mustStatus(t, w, http.StatusNotFound)
}
