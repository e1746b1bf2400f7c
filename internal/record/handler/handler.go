package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	"registrar/internal/record/models"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
)

// maxBodyBytes bounds a record submission.
const maxBodyBytes = 64 << 10

// Service defines the record operations exposed over HTTP.
type Service interface {
	Save(ctx context.Context, req *models.SaveRecordRequest) (*models.Record, error)
	Find(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context) ([]*models.Record, error)
	Reload(ctx context.Context) (int, error)
	Options() models.FormOptions
}

// Handler serves the record form endpoints.
type Handler struct {
	logger         *slog.Logger
	records        Service
	metrics        *metrics.Metrics
	adminTokenHash string
}

// New creates a new record Handler. adminTokenHash is the bcrypt hash guarding
// the admin routes; when empty those routes always answer 401.
func New(records Service, logger *slog.Logger, metrics *metrics.Metrics, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		records:        records,
		metrics:        metrics,
		adminTokenHash: adminTokenHash,
	}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	recordRouter := chi.NewRouter()
	recordRouter.Use(middleware.Recovery(h.logger))
	recordRouter.Use(middleware.RequestID)
	recordRouter.Use(middleware.RequestTime)
	recordRouter.Use(middleware.ClientMetadata)
	recordRouter.Use(middleware.Logger(h.logger))
	recordRouter.Use(chimw.Timeout(30 * time.Second))
	recordRouter.Use(middleware.ContentTypeJSON)
	recordRouter.Use(middleware.LatencyMiddleware(h.metrics))

	recordRouter.Post("/records", h.handleSave)
	recordRouter.Get("/records", h.handleList)
	recordRouter.Get("/records/options", h.handleOptions)
	recordRouter.Get("/records/{id}", h.handleFind)

	recordRouter.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		admin.Post("/admin/records/reload", h.handleReload)
	})

	r.Mount("/", recordRouter)
}

// handleSave stores the submitted record, replacing any record with the same id.
func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.SaveRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid save record request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rec, err := h.records.Save(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to save record", err)
		return
	}

	h.logger.InfoContext(ctx, "record saved",
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.records.Find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to find record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.records.List(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list records", err)
		return
	}
	if records == nil {
		records = []*models.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.RecordListResponse{
		Records: records,
		Count:   len(records),
	})
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.records.Options())
}

// handleReload re-reads the records file, discarding in-memory state.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := h.records.Reload(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to reload records", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ReloadResponse{Loaded: n})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
