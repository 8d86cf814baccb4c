package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

// serviceName labels the dashboard's HTTP metrics.
const serviceName = "web"

// Dashboard action labels.
const (
	actionSelect       = "select"
	actionAdvance      = "advance"
	actionReset        = "reset"
	actionEstimate     = "estimate"
	actionCommit       = "commit"
	actionSessionReset = "session_reset"
)

type handler struct {
	store *stateStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewHandler returns the dashboard router over content.
func NewHandler(content dashboard.Content) http.Handler {
	return newHandler(content).routes()
}

func newHandler(content dashboard.Content) *handler {
	return &handler{
		store: newStateStore(content),
		now:   time.Now,
		log:   logging.With("web"),
	}
}

func (h *handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	route := func(method, pattern string, fn http.HandlerFunc) {
		r.Method(method, pattern, metrics.Instrument(serviceName, pattern, fn))
	}
	route(http.MethodGet, "/", h.handleDashboard)
	route(http.MethodPost, "/missions/{id}/select", h.handleSelect)
	route(http.MethodPost, "/missions/advance", h.handleAdvance)
	route(http.MethodPost, "/missions/reset", h.handleReset)
	route(http.MethodPost, "/trade/estimate", h.handleEstimate)
	route(http.MethodPost, "/trade/commit", h.handleCommit)
	route(http.MethodPost, "/session/reset", h.handleSessionReset)
	route(http.MethodGet, "/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := h.store.resolve(w, r)
	var body bytes.Buffer
	err := h.store.with(id, func(state *dashboard.State) error {
		v := newPageView(state)
		if isHTMXRequest(r) {
			return dashboardBody(v).Render(r.Context(), &body)
		}
		return dashboardPage(v).Render(r.Context(), &body)
	})
	if err != nil {
		h.fail(w, "view", err)
		return
	}
	writeHTML(w, http.StatusOK, body.Bytes())
}

func (h *handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "id")
	h.act(w, r, h.store.resolve(w, r), actionSelect, func(v *pageView) error {
		return v.state.Select(missionID)
	}, dashboardBody, nil)
}

func (h *handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.store.resolve(w, r), actionAdvance, func(v *pageView) error {
		missionID := v.state.SelectedMissionID
		completed, err := v.state.Advance(h.now())
		if completed {
			h.log.Info().Str("mission", missionID).Int("credits", v.state.Credits).Msg("mission completed")
		}
		return err
	}, dashboardBody, nil)
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.store.resolve(w, r), actionReset, func(v *pageView) error {
		v.state.Reset()
		return nil
	}, dashboardBody, nil)
}

// handleEstimate plans a run without booking it. Plain form posts get the
// whole page back with the estimate filled in, since there is nothing to
// redirect to.
func (h *handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, parseErr := parseTradeRequest(r)
	h.act(w, r, h.store.resolve(w, r), actionEstimate, func(v *pageView) error {
		if parseErr != nil {
			return parseErr
		}
		outcome, err := dashboard.PlanRun(v.state.Content(), req)
		if err != nil {
			return err
		}
		v.estimate = &estimateView{request: req, outcome: outcome}
		return nil
	}, estimatePanel, dashboardPage)
}

func (h *handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	req, parseErr := parseTradeRequest(r)
	h.act(w, r, h.store.resolve(w, r), actionCommit, func(v *pageView) error {
		if parseErr != nil {
			return parseErr
		}
		outcome, err := dashboard.PlanRun(v.state.Content(), req)
		if err != nil {
			return err
		}
		if err := v.state.CompleteRun(outcome, h.now()); err != nil {
			return err
		}
		h.log.Info().Str("route", outcome.RouteID).Str("intent", string(outcome.Intent)).Int("profit", outcome.Profit).Msg("trade run booked")
		return nil
	}, dashboardBody, nil)
}

func (h *handler) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	id := h.store.resolve(w, r)
	h.store.reset(id)
	h.act(w, r, id, actionSessionReset, nil, dashboardBody, nil)
}

// act applies one transition to id's dashboard under the store lock and
// answers with fresh markup: fragment for htmx requests, full for plain ones.
// A nil full answers plain requests with a redirect to the dashboard.
func (h *handler) act(
	w http.ResponseWriter,
	r *http.Request,
	id uuid.UUID,
	action string,
	apply func(*pageView) error,
	fragment, full func(pageView) templ.Component,
) {
	htmx := isHTMXRequest(r)
	var (
		body     bytes.Buffer
		applyErr error
	)
	err := h.store.with(id, func(state *dashboard.State) error {
		v := newPageView(state)
		if apply != nil {
			if applyErr = apply(&v); applyErr != nil {
				return applyErr
			}
		}
		switch {
		case htmx:
			return fragment(v).Render(r.Context(), &body)
		case full != nil:
			return full(v).Render(r.Context(), &body)
		}
		return nil
	})
	metrics.RecordDashboardAction(action, applyErr)
	if err != nil {
		h.fail(w, action, err)
		return
	}
	if !htmx && full == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeHTML(w, http.StatusOK, body.Bytes())
}

// fail maps err's domain code to a status. Client errors echo the message.
func (h *handler) fail(w http.ResponseWriter, action string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("action", action).Msg("dashboard action failed")
		http.Error(w, "Internal server error", status)
		return
	}
	h.log.Debug().Err(err).Str("action", action).Int("status", status).Msg("dashboard action rejected")
	http.Error(w, err.Error(), status)
}

// parseTradeRequest reads a run manifest from the form. A blank quantity
// falls back to the form default.
func parseTradeRequest(r *http.Request) (dashboard.TradeRequest, error) {
	if err := r.ParseForm(); err != nil {
		return dashboard.TradeRequest{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid form body", err)
	}
	req := dashboard.TradeRequest{
		RouteID:  strings.TrimSpace(r.PostForm.Get("route")),
		CargoID:  strings.TrimSpace(r.PostForm.Get("cargo")),
		Intent:   dashboard.TradeIntent(strings.TrimSpace(r.PostForm.Get("intent"))),
		Quantity: dashboard.DefaultQuantity,
	}
	if raw := strings.TrimSpace(r.PostForm.Get("quantity")); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return req, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
				"quantity must be a whole number", map[string]string{"field": "quantity"})
		}
		req.Quantity = quantity
	}
	return req, nil
}
