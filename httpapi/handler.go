package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/mylog"
	"github.com/nexuscore/negotiator/simulation"
	"github.com/nexuscore/negotiator/workflow"
)

type (
	createThreadRequest struct {
		ContractID uint `json:"contract_id"`
		SupplierID uint `json:"supplier_id"`
	}

	negotiateRequest struct {
		Text      string `json:"text"`
		ActorRole string `json:"actor_role"`
	}

	resumeRequest struct {
		Action   string `json:"action"`
		Feedback string `json:"feedback"`
	}

	simulateRequest struct {
		PersonaID string `json:"persona_id"`
		History   []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
		LatestProposal string `json:"latest_proposal"`
	}

	simulateResponse struct {
		Response string `json:"response"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

type server struct {
	logger     *mylog.Logger
	manager    workflow.Manager
	simulation simulation.Adapter
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrThreadNotFound), errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrThreadPaused),
		errors.Is(err, errors.ErrThreadCompleted),
		errors.Is(err, errors.ErrNotPaused),
		errors.Is(err, errors.ErrNoPendingContext):
		return http.StatusConflict
	case errors.Is(err, errors.ErrExecutorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrInvalidParams), errors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	code := statusCodeOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", mylog.Err(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", mylog.Err(err))
	}
}

func threadID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidParams, "invalid thread id")
	}
	return uint(id), nil
}

func (s *server) createThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidParams, "invalid body: %v", err))
		return
	}

	snapshot, err := s.manager.CreateThread(r.Context(), req.ContractID, req.SupplierID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *server) listThreads(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.manager.ListSnapshots(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshots)
}

func (s *server) getThread(w http.ResponseWriter, r *http.Request) {
	id, err := threadID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	snapshot, err := s.manager.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *server) negotiate(w http.ResponseWriter, r *http.Request) {
	id, err := threadID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req negotiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidParams, "invalid body: %v", err))
		return
	}

	snapshot, err := s.manager.Negotiate(r.Context(), id, req.ActorRole, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *server) resume(w http.ResponseWriter, r *http.Request) {
	id, err := threadID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidParams, "invalid body: %v", err))
		return
	}

	snapshot, err := s.manager.Resume(r.Context(), id, workflow.ResumeAction(req.Action), req.Feedback)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *server) closeThread(w http.ResponseWriter, r *http.Request) {
	id, err := threadID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	snapshot, err := s.manager.CloseThread(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidParams, "invalid body: %v", err))
		return
	}

	history := make([]entity.Message, 0, len(req.History))
	for _, msg := range req.History {
		history = append(history, entity.Message{Role: msg.Role, Content: msg.Content})
	}

	reply, err := s.simulation.SimulateCounterparty(r.Context(), req.PersonaID, history, req.LatestProposal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, simulateResponse{Response: reply})
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Warn("failed to write health response", "err", err)
	}
}

// NewHandler assembles the REST surface with CORS and panic recovery,
// mirroring the JSON-RPC handler's middleware stack.
func NewHandler(c *din.Container) http.Handler {
	s := &server{
		logger:     din.MustGet[*mylog.Logger](c, mylog.Key),
		manager:    din.MustGetT[workflow.Manager](c),
		simulation: din.MustGetT[simulation.Adapter](c),
	}

	router := mux.NewRouter()
	router.HandleFunc("/threads", s.createThread).Methods("POST")
	router.HandleFunc("/threads", s.listThreads).Methods("GET")
	router.HandleFunc("/threads/{id}", s.getThread).Methods("GET")
	router.HandleFunc("/threads/{id}/negotiate", s.negotiate).Methods("POST")
	router.HandleFunc("/threads/{id}/resume", s.resume).Methods("POST")
	router.HandleFunc("/threads/{id}/close", s.closeThread).Methods("POST")
	router.HandleFunc("/simulate", s.simulate).Methods("POST")
	router.HandleFunc("/health", s.health).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
	)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		router.ServeHTTP(w, r.WithContext(ctx))
	})

	return cors(recovery(handler))
}
