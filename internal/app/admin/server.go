package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	economyv1 "github.com/muhammadchandra19/economy/internal/domain/economy/v1"
	marketv1 "github.com/muhammadchandra19/economy/internal/domain/market/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	pkgerrors "github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/rs/cors"
)

// Config holds the listen address and CORS origins of the admin surface.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server exposes read-only market views and a health check over HTTP.
type Server struct {
	usecase economyv1.Usecase
	router  *mux.Router
	handler http.Handler
	http    *http.Server
	logger  logger.Interface
}

// NewServer creates a new admin server. checks back GET /health.
func NewServer(usecase economyv1.Usecase, checks map[string]healthcheck.Check, cfg Config, log logger.Interface) *Server {
	s := &Server{
		usecase: usecase,
		router:  mux.NewRouter(),
		logger:  log,
	}
	s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = healthcheck.New(checks, 2*time.Second).Handler(c.Handler(s.router))

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/markets/{itemType}/{itemID}", s.handleGetMarket).Methods("GET")
	api.HandleFunc("/markets/{itemType}/{itemID}/editions/{edition}/{side}", s.handleGetEditionOrders).Methods("GET")
	api.HandleFunc("/users/{userID}/orders", s.handleGetUserOrders).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, pkgerrors.GeneralNotFoundError, "no route for "+r.URL.Path)
	})
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "admin server listening", logger.Field{Key: "addr", Value: ln.Addr().String()})
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, logger.Field{Key: "action", Value: "admin_serve"})
		}
	}()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// MarketResponse is a rendered market snapshot.
type MarketResponse struct {
	ItemType      string    `json:"itemType"`
	ItemID        string    `json:"itemID"`
	Edition       *int64    `json:"edition,omitempty"`
	BestBuyPrice  string    `json:"bestBuyPrice"`
	BestSellPrice string    `json:"bestSellPrice"`
	BestBuyIndex  int       `json:"bestBuyIndex"`
	BestSellIndex int       `json:"bestSellIndex"`
	BuyVolume     int64     `json:"buyVolume"`
	SellVolume    int64     `json:"sellVolume"`
	ResolvedAt    time.Time `json:"resolvedAt"`
}

// OrderResponse is an order with its position in the book.
type OrderResponse struct {
	Index int           `json:"index"`
	Order orderv1.Order `json:"order"`
}

// UserOrderResponse is one row of a user's orders page.
type UserOrderResponse struct {
	ItemType  string        `json:"itemType"`
	ItemID    string        `json:"itemID"`
	Side      orderv1.Side  `json:"side"`
	Index     int           `json:"index"`
	Order     orderv1.Order `json:"order"`
	Active    bool          `json:"active"`
	Claimable string        `json:"claimable"`
}

// ErrorResponse is the body of every non 2xx answer. Error holds an error code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := &economyv1.MarketQuery{ItemType: vars["itemType"], ItemID: vars["itemID"]}

	if raw := r.URL.Query().Get("edition"); raw != "" {
		edition, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, pkgerrors.GeneralBadRequestError, "invalid edition: "+err.Error())
			return
		}
		q.Edition = &edition
	}

	snap, err := s.usecase.Market(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := MarketResponse{
		ItemType:      q.ItemType,
		ItemID:        q.ItemID,
		BestBuyPrice:  snap.BestBuyPrice.String(),
		BestSellPrice: snap.BestSellPrice.String(),
		BestBuyIndex:  snap.BestBuyIndex,
		BestSellIndex: snap.BestSellIndex,
		BuyVolume:     snap.BuyVolume,
		SellVolume:    snap.SellVolume,
		ResolvedAt:    snap.ResolvedAt,
	}
	if snap.HasEdition {
		edition := snap.Edition
		resp.Edition = &edition
	}
	respondJSON(w, resp)
}

func (s *Server) handleGetEditionOrders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	edition, err := strconv.ParseInt(vars["edition"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, pkgerrors.GeneralBadRequestError, "invalid edition: "+err.Error())
		return
	}

	orders, err := s.usecase.EditionOrders(r.Context(), vars["itemType"], vars["itemID"], orderv1.Side(vars["side"]), edition)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	respondJSON(w, resp)
}

func (s *Server) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.usecase.UserOrders(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := make([]UserOrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = UserOrderResponse{
			ItemType:  o.ItemType,
			ItemID:    o.ItemID,
			Side:      o.Side,
			Index:     o.Index,
			Order:     o.Order,
			Active:    o.Active,
			Claimable: o.Claimable.String(),
		}
	}
	respondJSON(w, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, orderv1.ErrInvalidSide) {
		respondError(w, http.StatusBadRequest, pkgerrors.GeneralBadRequestError, err.Error())
		return
	}

	s.logger.ErrorContext(r.Context(), err, logger.Field{Key: "path", Value: r.URL.Path})
	code := pkgerrors.GeneralInternalServerError
	if errors.Is(err, recordv1.ErrIO) || errors.Is(err, recordv1.ErrCorrupt) {
		code = pkgerrors.GeneralRepositoryError
	}
	respondError(w, http.StatusInternalServerError, code, err.Error())
}

func toOrderResponse(o marketv1.EditionOrder) OrderResponse {
	return OrderResponse{Index: o.Index, Order: o.Order}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code pkgerrors.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   string(code),
		Message: message,
	})
}
