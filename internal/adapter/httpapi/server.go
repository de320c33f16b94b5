// Package httpapi exposes the locator and its busy signal to an external
// test runner over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"behat-locator/internal/application/port/input"
	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

const (
	defaultWaitIdle = 30 * time.Second
	maxBodyBytes    = 1 << 20
)

type Navigator interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL() string
}

type Server struct {
	behat  input.Behat
	busy   output.BusyTracker
	nav    Navigator
	logger output.LoggerPort
	router chi.Router
}

// NewServer builds the router. nav may be nil when the page source cannot
// navigate, for example a static snapshot file.
func NewServer(behat input.Behat, busy output.BusyTracker, nav Navigator, logger output.LoggerPort) *Server {
	s := &Server{
		behat:  behat,
		busy:   busy,
		nav:    nav,
		logger: logger,
	}

	reqLogger := httplog.NewLogger("behat-locator", httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(reqLogger))

	r.Get("/busy", s.handleBusy)
	r.Get("/dump", s.handleDump)
	r.Post("/wait-idle", s.handleWaitIdle)
	r.Post("/find", s.handleFind)
	r.Post("/press", s.handlePress)
	r.Post("/selected", s.handleSelected)
	r.Post("/navigate", s.handleNavigate)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http harness listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type locateRequest struct {
	Locator   *entity.Locator `json:"locator"`
	Container string          `json:"container"`
}

type busyResponse struct {
	Busy    bool `json:"busy"`
	Pending int  `json:"pending"`
}

type findResponse struct {
	Count    int                  `json:"count"`
	Elements []entity.ElementInfo `json:"elements"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBusy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, busyResponse{Busy: s.busy.Busy(), Pending: s.busy.Pending()})
}

func (s *Server) handleWaitIdle(w http.ResponseWriter, r *http.Request) {
	timeout := defaultWaitIdle
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid timeout: " + err.Error()})
			return
		}
		timeout = d
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	if err := s.busy.WaitIdle(ctx); err != nil {
		writeJSON(w, http.StatusGatewayTimeout, busyResponse{Busy: true, Pending: s.busy.Pending()})
		return
	}
	writeJSON(w, http.StatusOK, busyResponse{})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLocate(w, r)
	if !ok {
		return
	}
	elements, err := s.behat.FindElements(r.Context(), req.Locator, entity.ParseContainerName(req.Container))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, findResponse{Count: len(elements), Elements: elements})
}

// handlePress answers as soon as the element is resolved; the runner polls
// /busy or calls /wait-idle for completion.
func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLocate(w, r)
	if !ok {
		return
	}
	if _, err := s.behat.StartPress(r.Context(), req.Locator, entity.ParseContainerName(req.Container)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pressing"})
}

func (s *Server) handleSelected(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLocate(w, r)
	if !ok {
		return
	}
	selected, err := s.behat.IsSelected(r.Context(), req.Locator, entity.ParseContainerName(req.Container))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": selected})
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	out, err := s.behat.Dump(r.Context(), entity.ParseContainerName(r.URL.Query().Get("container")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if s.nav == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "navigation is not available"})
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
		return
	}
	if err := s.nav.Navigate(r.Context(), req.URL); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.nav.CurrentURL()})
}

func decodeLocate(w http.ResponseWriter, r *http.Request) (*locateRequest, bool) {
	var req locateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
		return nil, false
	}
	if err := req.Locator.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return &req, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNoMatch), errors.Is(err, entity.ErrNoContainer):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrAmbiguousMatch):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrInvalidLocator), errors.Is(err, entity.ErrLocatorTooDeep),
		errors.Is(err, dom.ErrInvalidSelector):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
