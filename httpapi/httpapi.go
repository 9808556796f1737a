// Package httpapi is a thin HTTP boundary over a matching.MatchingEngine.
// Request parsing, id/timestamp generation, and price decimal
// conversion all live here, isolated from domain, orderbook, and
// matching.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/orderbook"
)

// Clock supplies monotonically non-decreasing entry times; production
// code wires in a real clock, tests wire in a counter.
type Clock func() int64

// Server wires one matching.MatchingEngine to HTTP handlers.
type Server struct {
	engine *matching.MatchingEngine
	logger *zap.Logger
	clock  Clock
}

// NewServer constructs an httpapi.Server. A nil logger logs nothing; a
// nil clock defaults to UnixNano.
func NewServer(engine *matching.MatchingEngine, logger *zap.Logger, clock Clock) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = func() int64 { return time.Now().UnixNano() }
	}
	return &Server{engine: engine, logger: logger, clock: clock}
}

// Routes registers the order-entry endpoints onto mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /orderbook", s.handleOrderBook)
	mux.HandleFunc("POST /orders", s.handleSubmitOrder)
	mux.HandleFunc("DELETE /orders/{id}/cancel", s.handleCancelOrder)
	mux.HandleFunc("GET /trades", s.handleTrades)
	mux.HandleFunc("GET /depth", s.handleDepth)
}

type orderView struct {
	ID        string `json:"id"`
	Side      string `json:"side"`
	Type      string `json:"order_type"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	EntryTime int64  `json:"entry_time"`
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:        string(o.ID),
		Side:      o.Side.String(),
		Type:      o.Type.String(),
		Price:     o.Price,
		Quantity:  o.Quantity,
		EntryTime: o.EntryTime,
	}
}

type tradeView struct {
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

func toTradeView(tr domain.Trade) tradeView {
	return tradeView{
		BuyOrderID:  string(tr.BuyOrderID),
		SellOrderID: string(tr.SellOrderID),
		Price:       tr.Price,
		Quantity:    tr.Quantity,
	}
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	bids := s.engine.SnapshotBids()
	asks := s.engine.SnapshotAsks()

	bidViews := make([]orderView, len(bids))
	for i, o := range bids {
		bidViews[i] = toOrderView(o)
	}
	askViews := make([]orderView, len(asks))
	for i, o := range asks {
		askViews[i] = toOrderView(o)
	}

	writeJSON(w, http.StatusOK, map[string]any{"bids": bidViews, "asks": askViews})
}

// submitRequest is the POST /orders body. Price is json.RawMessage so a
// caller may send either an integer (already minimum-tick units) or a
// decimal string (multiplied by 100 and truncated to minimum-tick
// units).
type submitRequest struct {
	Side      string          `json:"side"`
	OrderType string          `json:"order_type"`
	Price     json.RawMessage `json:"price,omitempty"`
	Quantity  int64           `json:"quantity"`
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	orderType, err := parseOrderType(req.OrderType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := domain.OrderID(uuid.NewString())
	entryTime := s.clock()

	var order *domain.Order
	if orderType == domain.OrderTypeMarket {
		order = domain.NewMarketOrder(id, side, req.Quantity, entryTime)
	} else {
		price, err := parsePrice(req.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		order = domain.NewLimitOrder(id, side, price, req.Quantity, entryTime)
	}

	trades, err := s.engine.SubmitOrder(order)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("order submitted", zap.String("id", string(id)), zap.Int("trades", len(trades)))

	var tradeViews []tradeView
	if len(trades) > 0 {
		tradeViews = make([]tradeView, len(trades))
		for i, tr := range trades {
			tradeViews[i] = toTradeView(tr)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": string(id), "trades": tradeViews})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := domain.OrderID(r.PathValue("id"))

	order, err := s.engine.CancelOrder(id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"result": "success", "order": toOrderView(order)})
	case errors.Is(err, matching.ErrAlreadyCancelled):
		writeJSON(w, http.StatusConflict, map[string]string{"result": "already_cancelled"})
	case errors.Is(err, matching.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"result": "not_found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.engine.Trades()
	views := make([]tradeView, len(trades))
	for i, tr := range trades {
		views[i] = toTradeView(tr)
	}
	writeJSON(w, http.StatusOK, views)
}

type depthLevelView struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

func toDepthLevelViews(levels []orderbook.DepthLevel) []depthLevelView {
	views := make([]depthLevelView, len(levels))
	for i, l := range levels {
		views[i] = depthLevelView{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	return views
}

// handleDepth returns aggregated market depth, best price first on each
// side. The number of levels per side defaults to 10 and is overridable
// with a ?levels= query parameter.
func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	maxLevels := 10
	if raw := r.URL.Query().Get("levels"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "levels must be a positive integer"})
			return
		}
		maxLevels = parsed
	}

	bids, asks := s.engine.Depth(maxLevels)
	writeJSON(w, http.StatusOK, map[string]any{
		"bids": toDepthLevelViews(bids),
		"asks": toDepthLevelViews(asks),
	})
}

func parseSide(raw string) (domain.Side, error) {
	switch raw {
	case "buy":
		return domain.SideBuy, nil
	case "sell":
		return domain.SideSell, nil
	default:
		return 0, errors.New("side must be \"buy\" or \"sell\"")
	}
}

func parseOrderType(raw string) (domain.OrderType, error) {
	switch raw {
	case "", "limit":
		return domain.OrderTypeLimit, nil
	case "market":
		return domain.OrderTypeMarket, nil
	default:
		return 0, errors.New("order_type must be \"limit\" or \"market\"")
	}
}

// parsePrice converts a submitted price to integer minimum-tick units:
// a JSON number is already integer minimum-tick units; a JSON string is
// a decimal amount, multiplied by 100 and truncated to integer.
func parsePrice(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, errors.New("limit orders require a price")
	}

	var asInt int64
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, errors.New("price must be an integer or a decimal string")
	}

	amount, err := decimal.NewFromString(asString)
	if err != nil {
		return 0, errors.New("price is not a valid decimal")
	}
	return amount.Mul(decimal.NewFromInt(100)).Truncate(0).IntPart(), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
