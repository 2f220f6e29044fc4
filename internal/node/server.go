package node

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
	"cryptocomm/internal/ledger"
	"cryptocomm/internal/rpc"
)

// maxTxBytes bounds POST /tx bodies. File messages carry only a locator.
const maxTxBytes = 1 << 20

// Server exposes a Ledger over JSON/HTTP.
type Server struct {
	ledger *ledger.Ledger
	log    *zap.Logger
}

// New returns a Server for l. A nil logger disables logging.
func New(l *ledger.Ledger, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{ledger: l, log: log}
}

// Handler returns the routed, access-logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /network", s.handleNetwork)
	mux.HandleFunc("POST /tx", s.handleSubmit)
	mux.HandleFunc("GET /contracts/{addr}", s.handleContract)
	mux.HandleFunc("GET /registry/{registry}/identities/{addr}/exists", s.handleExists)
	mux.HandleFunc("GET /registry/{registry}/identities/{addr}", s.handleLookup)
	mux.HandleFunc("GET /registry/{registry}/usernames", s.handleResolve)
	mux.HandleFunc("GET /ledger/{ledger}/conversations", s.handleConversation)
	mux.HandleFunc("GET /ledger/{ledger}/verify", s.handleVerify)
	return accessLog(s.log, mux)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, rpc.NetworkInfo{NetworkID: s.ledger.Network()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var stx domain.SignedTransaction
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTxBytes))
	if err := dec.Decode(&stx); err != nil {
		s.writeJSON(w, http.StatusBadRequest, rpc.ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}
	receipt, err := s.ledger.Apply(r.Context(), stx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r, "addr")
	if !ok {
		return
	}
	ct, err := s.ledger.Contract(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ct)
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	registry, ok := s.pathAddress(w, r, "registry")
	if !ok {
		return
	}
	addr, ok := s.pathAddress(w, r, "addr")
	if !ok {
		return
	}
	exists, err := s.ledger.Exists(r.Context(), registry, addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rpc.ExistsResponse{Exists: exists})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	registry, ok := s.pathAddress(w, r, "registry")
	if !ok {
		return
	}
	addr, ok := s.pathAddress(w, r, "addr")
	if !ok {
		return
	}
	id, err := s.ledger.Lookup(r.Context(), registry, addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	registry, ok := s.pathAddress(w, r, "registry")
	if !ok {
		return
	}
	addr, found, err := s.ledger.ResolveUsername(r.Context(), registry, r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rpc.ResolveResponse{Address: addr, Found: found})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	ledgerAddr, ok := s.pathAddress(w, r, "ledger")
	if !ok {
		return
	}
	q := r.URL.Query()
	a, err := crypto.ParseAddress(q.Get("a"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	b, err := crypto.ParseAddress(q.Get("b"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	msgs, err := s.ledger.Conversation(ledgerAddr, a, b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ledgerAddr, ok := s.pathAddress(w, r, "ledger")
	if !ok {
		return
	}
	report, err := s.ledger.Verify(ledgerAddr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request, name string) (domain.Address, bool) {
	addr, err := crypto.ParseAddress(r.PathValue(name))
	if err != nil {
		s.writeError(w, err)
		return domain.Address{}, false
	}
	return addr, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := domain.ErrorCode(err)
	if code == "" {
		code = "internal"
	}
	if status >= 500 {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, rpc.ErrorResponse{Code: code, Message: err.Error()})
}

// StatusFor maps a ledger error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrUnknownContract):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrAlreadyFriends),
		errors.Is(err, domain.ErrReplayedTransaction),
		errors.Is(err, domain.ErrNetworkMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrUnknownMethod),
		errors.Is(err, domain.ErrMalformedParams):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
