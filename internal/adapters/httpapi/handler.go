package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 64 << 10

// Vetter runs the full vetting workflow for a lead
type Vetter interface {
	Vet(ctx context.Context, lead *core.Lead) (*core.VettingOutcome, error)
}

// Handler wires the lead vetting endpoints to the vetting service.
type Handler struct {
	vetter   Vetter
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewHandler constructs a handler. A nil gatherer leaves /metrics unmounted.
func NewHandler(vetter Vetter, gatherer prometheus.Gatherer, logger *zap.Logger) *Handler {
	return &Handler{
		vetter:   vetter,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/webhook/lead", h.HandleLead)
	r.Post("/v1/evaluate", h.HandleEvaluate)
	r.Get("/healthz", h.HandleHealth)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// Router builds a chi router with the endpoints mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// HandleLead handles POST /webhook/lead. The body is a one-element array,
// the shape the sign-up form reads its verdict from.
func (h *Handler) HandleLead(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req LeadRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidLead, err.Error())
		return
	}

	outcome, err := h.vetter.Vet(r.Context(), req.ToLead())
	if err != nil {
		if errors.Is(err, core.ErrInvalidLead) {
			writeError(w, http.StatusBadRequest, CodeInvalidLead, err.Error())
			return
		}
		h.logger.Error("Lead vetting failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	h.logger.Info("Lead vetted",
		zap.String("processing_id", outcome.ProcessingID),
		zap.String("source", string(outcome.Source)),
		zap.String("result", string(outcome.Verdict.Result)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	w.Header().Set(HeaderProcessingID, outcome.ProcessingID)
	w.Header().Set(HeaderVerdictSource, string(outcome.Source))
	writeJSON(w, http.StatusOK, []VerdictResponse{FromVerdict(outcome.Verdict)})
}

// HandleEvaluate handles POST /v1/evaluate: the pure evaluator over caller-supplied data.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	verdict, err := core.EvaluateChecked(req.Parsed())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, FromVerdict(verdict))
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
