// Package http exposes the analytics and mutation operations as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"jizhang/internal/core"
	"jizhang/internal/log"
	"jizhang/internal/services"
)

// Reader serves the read-side operations.
type Reader interface {
	MonthOverview(ctx context.Context, userID string, year, month int) (services.Overview, error)
	View(ctx context.Context, userID string, year, month int, tab core.Tab, view core.ViewType) (services.ViewResult, error)
}

// Writer serves the mutation operations.
type Writer interface {
	UpdateTransaction(ctx context.Context, tx core.Transaction) bool
	DeleteTransaction(ctx context.Context, id string, typ core.TxType) bool
}

type Server struct {
	http.Server

	reader Reader
	writer Writer
	cal    core.Calendar
	logger *log.Logger
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, reader Reader, writer Writer, cal core.Calendar, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      log.Middleware(logger.WithComponent(log.ComponentHTTP))(mux),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reader: reader,
		writer: writer,
		cal:    cal,
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)
	mux.HandleFunc("GET /api/transactions", s.handleMonthTransactions)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDelete)

	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleMonthTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}
	year, month := s.parseYearMonth(r)

	overview, err := s.reader.MonthOverview(r.Context(), userID, year, month)
	if err != nil {
		s.logger.Error("month overview failed",
			log.FieldUser, userID, log.FieldYear, year, log.FieldMonth, month, log.FieldError, err)
		writeError(w, http.StatusBadGateway, "could not load transactions")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}
	year, month := s.parseYearMonth(r)

	tab := core.Tab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = core.TabExpense
	}
	view := core.ViewType(r.URL.Query().Get("view"))
	if view == "" {
		view = core.ViewMonth
	}

	result, err := s.reader.View(r.Context(), userID, year, month, tab, view)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case isBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("analytics view failed",
			log.FieldUser, userID, log.FieldYear, year, log.FieldMonth, month,
			log.FieldTab, string(tab), log.FieldView, string(view), log.FieldError, err)
		writeError(w, http.StatusBadGateway, "could not load analytics")
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx.ID = r.PathValue("id")
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok := s.writer.UpdateTransaction(r.Context(), tx)
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	typ := core.TxType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = core.TypeExpense
	}
	if !typ.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid transaction type")
		return
	}

	ok := s.writer.DeleteTransaction(r.Context(), r.PathValue("id"), typ)
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}
