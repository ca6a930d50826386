package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tokenmesh/hybridex/pkg/core/engine"
	"github.com/tokenmesh/hybridex/pkg/core/ledger"
	"github.com/tokenmesh/hybridex/pkg/core/order"
)

// Server exposes the matching engine over REST plus a WebSocket event
// stream. The optional faucet ledger enables devnet mint/approve endpoints.
type Server struct {
	engine *engine.Engine
	faucet *ledger.Ledger // nil unless DevFaucet is enabled
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

// NewServer builds the REST/WebSocket surface around an engine. The hub is
// passed in (rather than built here) so the caller can also wire it as the
// engine's event emitter.
func NewServer(eng *engine.Engine, faucet *ledger.Ledger, hub *Hub, log *zap.SugaredLogger) *Server {
	s := &Server{
		engine: eng,
		faucet: faucet,
		router: mux.NewRouter(),
		hub:    hub,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Order submission and cancellation
	api.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")

	// Book and history queries
	api.HandleFunc("/orderbook", s.handleGetOrderBook).Methods("GET")
	api.HandleFunc("/accounts/{address}/orders", s.handleGetUserOrders).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")

	// Devnet ledger faucet
	if s.faucet != nil {
		api.HandleFunc("/ledger/mint", s.handleMint).Methods("POST")
		api.HandleFunc("/ledger/approve", s.handleApprove).Methods("POST")
	}

	// WebSocket event stream
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the WebSocket hub and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	})

	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// ==============================
// REST handlers
// ==============================

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	maker, ok := parseAddress(req.Maker)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid maker address", req.Maker)
		return
	}
	tokenIn, ok := parseAddress(req.TokenIn)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tokenIn address", req.TokenIn)
		return
	}
	tokenOut, ok := parseAddress(req.TokenOut)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tokenOut address", req.TokenOut)
		return
	}
	amountIn, ok := parseAmount(req.AmountIn)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid amountIn", req.AmountIn)
		return
	}
	amountOut, ok := parseAmount(req.AmountOut)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid amountOut", req.AmountOut)
		return
	}

	id, err := s.engine.CreateOrder(maker, tokenIn, tokenOut, amountIn, amountOut, req.IsBuyOrder)
	if err != nil {
		respondError(w, errorStatus(err), "order rejected", err.Error())
		return
	}
	respondJSON(w, CreateOrderResponse{OrderID: id.Hex()})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid caller address", req.Caller)
		return
	}

	if err := s.engine.CancelOrder(common.HexToHash(req.OrderID), caller); err != nil {
		respondError(w, errorStatus(err), "cancel rejected", err.Error())
		return
	}
	respondJSON(w, map[string]string{"status": "cancelled"})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := common.HexToHash(mux.Vars(r)["id"])

	o, err := s.engine.GetOrder(id)
	if err != nil {
		respondError(w, errorStatus(err), "order not found", err.Error())
		return
	}
	respondJSON(w, orderInfo(o))
}

func (s *Server) handleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	tokenA, ok := parseAddress(r.URL.Query().Get("tokenA"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tokenA address", r.URL.Query().Get("tokenA"))
		return
	}
	tokenB, ok := parseAddress(r.URL.Query().Get("tokenB"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tokenB address", r.URL.Query().Get("tokenB"))
		return
	}

	buys, sells := s.engine.GetOrderBook(tokenA, tokenB)
	resp := OrderBookResponse{
		Buys:  make([]OrderInfo, len(buys)),
		Sells: make([]OrderInfo, len(sells)),
	}
	for i, o := range buys {
		resp.Buys[i] = orderInfo(o)
	}
	for i, o := range sells {
		resp.Sells[i] = orderInfo(o)
	}
	respondJSON(w, resp)
}

func (s *Server) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := parseAddress(mux.Vars(r)["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid address", mux.Vars(r)["address"])
		return
	}

	ids := s.engine.GetUserOrders(user)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	respondJSON(w, out)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	trades := s.engine.RecentTrades(limit)
	out := make([]TradeInfo, len(trades))
	for i, t := range trades {
		out[i] = TradeInfo{
			ID:          t.ID,
			Pair:        t.Pair.Hex(),
			TakerOrder:  t.TakerOrder.Hex(),
			MakerOrder:  t.MakerOrder.Hex(),
			Taker:       t.Taker.Hex(),
			Maker:       t.Maker.Hex(),
			TakerAmount: t.TakerAmount.String(),
			MakerAmount: t.MakerAmount.String(),
			Price:       t.Price.String(),
			ExecutedAt:  t.ExecutedAt,
		}
	}
	respondJSON(w, out)
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	token, ok1 := parseAddress(req.Token)
	owner, ok2 := parseAddress(req.Owner)
	amount, ok3 := parseAmount(req.Amount)
	if !ok1 || !ok2 || !ok3 {
		respondError(w, http.StatusBadRequest, "invalid mint parameters", "")
		return
	}
	if err := s.faucet.Mint(token, owner, amount); err != nil {
		respondError(w, http.StatusBadRequest, "mint failed", err.Error())
		return
	}
	respondJSON(w, map[string]string{"balance": s.faucet.BalanceOf(token, owner).String()})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	token, ok1 := parseAddress(req.Token)
	owner, ok2 := parseAddress(req.Owner)
	amount, ok3 := parseAmount(req.Amount)
	if !ok1 || !ok2 || !ok3 {
		respondError(w, http.StatusBadRequest, "invalid approve parameters", "")
		return
	}
	if err := s.faucet.Approve(token, owner, amount); err != nil {
		respondError(w, http.StatusBadRequest, "approve failed", err.Error())
		return
	}
	respondJSON(w, map[string]string{"allowance": s.faucet.Allowance(token, owner).String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

func orderInfo(o order.Order) OrderInfo {
	return OrderInfo{
		ID:        o.ID.Hex(),
		Maker:     o.Maker.Hex(),
		TokenIn:   o.TokenIn.Hex(),
		TokenOut:  o.TokenOut.Hex(),
		AmountIn:  o.AmountIn.String(),
		AmountOut: o.AmountOut.String(),
		Side:      o.Side.String(),
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
	}
}

func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func parseAmount(s string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// errorStatus maps engine errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, order.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, order.ErrInvalidPair), errors.Is(err, order.ErrInvalidAmounts):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrTransferFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrPaused):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Detail: detail})
}
