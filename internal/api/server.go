// Package api exposes the pool engine over HTTP. Mutating endpoints take
// the caller address in the request body; the server clock supplies the
// operation timestamp.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"launchpool/internal/auth"
	"launchpool/internal/domain"
	"launchpool/internal/observability"
	"launchpool/internal/pool"
	"launchpool/internal/storage"
)

// Server maps HTTP requests onto engine operations.
type Server struct {
	engine  *pool.Engine
	events  storage.EventStore
	metrics *observability.Metrics
	logger  *log.Logger
	now     func() time.Time
}

// NewServer creates an API server. events may be nil if no journal is
// configured; metrics may be nil to skip instrumentation.
func NewServer(engine *pool.Engine, events storage.EventStore, metrics *observability.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[api] ", log.LstdFlags)
	}
	return &Server{
		engine:  engine,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Routes registers all endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/pool/initialize", s.handleInitialize)
	mux.HandleFunc("POST /v1/pool/pause", s.handlePause)
	mux.HandleFunc("POST /v1/pool/unpause", s.handleUnpause)
	mux.HandleFunc("POST /v1/pool/recover", s.handleRecover)
	mux.HandleFunc("POST /v1/deposits", s.handleDeposit)
	mux.HandleFunc("POST /v1/claims", s.handleClaim)
	mux.HandleFunc("POST /v1/emergency-withdrawals", s.handleEmergencyWithdraw)
	mux.HandleFunc("POST /v1/roles/grant", s.handleGrantRole)
	mux.HandleFunc("POST /v1/roles/revoke", s.handleRevokeRole)

	mux.HandleFunc("GET /v1/pool", s.handlePoolState)
	mux.HandleFunc("GET /v1/stakes", s.handleStakes)
	mux.HandleFunc("GET /v1/stakes/{address}", s.handleStake)
	mux.HandleFunc("GET /v1/claims/{address}", s.handlePreview)
	mux.HandleFunc("GET /v1/allocations/{address}", s.handleAllocation)
	mux.HandleFunc("GET /v1/roles/{capability}", s.handleRoleMembers)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
}

// callRequest is the common body for operations that need only a caller.
type callRequest struct {
	Caller string `json:"caller"`
}

type depositRequest struct {
	Caller string `json:"caller"`
	Amount uint64 `json:"amount"`
}

type recoverRequest struct {
	Caller string `json:"caller"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

type roleRequest struct {
	Caller     string `json:"caller"`
	Capability string `json:"capability"`
	Address    string `json:"address"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, "initialize", func(ctx context.Context, call pool.Call) error {
		return s.engine.InitializePool(ctx, call)
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, "pause", func(ctx context.Context, call pool.Call) error {
		return s.engine.Pause(ctx, call)
	})
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, "unpause", func(ctx context.Context, call pool.Call) error {
		return s.engine.Unpause(ctx, call)
	})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, "claim", func(ctx context.Context, call pool.Call) error {
		return s.engine.Claim(ctx, call)
	})
}

func (s *Server) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, "emergency_withdraw", func(ctx context.Context, call pool.Call) error {
		return s.engine.EmergencyWithdraw(ctx, call)
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		s.writeError(w, "deposit", err)
		return
	}
	s.observe(w, "deposit", s.engine.Deposit(r.Context(), pool.At(caller, s.now()), req.Amount))
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		s.writeError(w, "recover", err)
		return
	}
	if req.Asset == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "asset is required"})
		return
	}
	err = s.engine.RecoverAsset(r.Context(), pool.At(caller, s.now()), domain.Asset(req.Asset), req.Amount)
	s.observe(w, "recover", err)
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	s.runRoleOp(w, r, "grant_role", s.engine.GrantRole)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	s.runRoleOp(w, r, "revoke_role", s.engine.RevokeRole)
}

func (s *Server) runRoleOp(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, pool.Call, auth.Capability, domain.Address) error) {
	var req roleRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	capability, err := parseCapability(req.Capability)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.observe(w, op, fn(r.Context(), pool.At(caller, s.now()), capability, addr))
}

// runOp handles the caller-only mutating endpoints.
func (s *Server) runOp(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, pool.Call) error) {
	var req callRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	s.observe(w, op, fn(r.Context(), pool.At(caller, s.now())))
}

// observe records metrics for the operation result and writes the response.
func (s *Server) observe(w http.ResponseWriter, op string, err error) {
	if s.metrics != nil {
		s.metrics.OperationsTotal.WithLabelValues(op).Inc()
		if err != nil {
			s.metrics.OperationErrors.WithLabelValues(op).Inc()
		}
	}
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	if s.metrics != nil {
		st := s.engine.State()
		s.metrics.TotalDeposited.Set(float64(st.TotalDeposited))
		s.metrics.TotalRefunded.Set(float64(st.TotalRefunded))
		s.metrics.Participants.Set(float64(len(s.engine.Stakes())))
		if st.Paused {
			s.metrics.Paused.Set(1)
		} else {
			s.metrics.Paused.Set(0)
		}
	}
	s.writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}

// poolResponse combines state and static config for the read endpoint.
type poolResponse struct {
	State  domain.PoolState  `json:"state"`
	Phase  domain.Phase      `json:"phase"`
	Config domain.PoolConfig `json:"config"`
}

func (s *Server) handlePoolState(w http.ResponseWriter, r *http.Request) {
	st := s.engine.State()
	s.writeJSON(w, http.StatusOK, poolResponse{
		State:  st,
		Phase:  st.PhaseAt(s.now().Unix()),
		Config: s.engine.Config(),
	})
}

func (s *Server) handleStakes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Stakes())
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, "stake", err)
		return
	}
	rec := s.engine.Stake(addr)
	if rec == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no stake record"})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, "preview", err)
		return
	}
	preview, err := s.engine.Preview(addr)
	if err != nil {
		s.writeError(w, "preview", err)
		return
	}
	s.writeJSON(w, http.StatusOK, preview)
}

type allocationResponse struct {
	Allocation uint64 `json:"allocation"`
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, "allocation", err)
		return
	}
	alloc, err := s.engine.AllocationFor(addr)
	if err != nil {
		s.writeError(w, "allocation", err)
		return
	}
	s.writeJSON(w, http.StatusOK, allocationResponse{Allocation: alloc})
}

func (s *Server) handleRoleMembers(w http.ResponseWriter, r *http.Request) {
	capability, err := parseCapability(r.PathValue("capability"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Roles().Members(capability))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event journal not configured"})
		return
	}
	since := uint64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid since parameter"})
			return
		}
		since = n
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
			return
		}
		limit = n
	}
	events, err := s.events.List(r.Context(), since, limit)
	if err != nil {
		s.writeError(w, "events", err)
		return
	}
	if events == nil {
		events = []*domain.PoolEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func parseCapability(s string) (auth.Capability, error) {
	switch auth.Capability(s) {
	case auth.CapAdmin:
		return auth.CapAdmin, nil
	case auth.CapPauser:
		return auth.CapPauser, nil
	default:
		return "", errors.New("unknown capability: " + s)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps engine errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pool.ErrInvalidAddress), errors.Is(err, pool.ErrInvalidAmount),
		errors.Is(err, storage.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pool.ErrInvalidState), errors.Is(err, pool.ErrStaking),
		errors.Is(err, pool.ErrClaim), errors.Is(err, pool.ErrReentrantCall):
		status = http.StatusConflict
	case errors.Is(err, pool.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s: %v", op, err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}
