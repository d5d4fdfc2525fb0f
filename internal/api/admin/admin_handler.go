package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	VerifyProfessional(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	adminService AdminService
	logger       *slog.Logger
}

func NewHandlerImpl(adminService AdminService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		adminService: adminService,
		logger:       logger,
	}
}

// VerifyProfessional godoc
// @Summary      Verify a professional
// @Description  Marks a doctor or nurse account as verified so it can log in. Verifying an already verified account is a no-op.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Identity ID"
// @Success      200 {object} types.Identity
// @Failure      400 {object} types.Response "Invalid identity ID"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Admin role required"
// @Failure      404 {object} types.Response "Identity not found"
// @Failure      409 {object} types.Response "Identity is not a doctor or nurse"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /admin/professionals/{id}/verify [patch]
func (h *HandlerImpl) VerifyProfessional(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "VerifyProfessional"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		l.WarnContext(ctx, "Invalid identity ID", slog.String("id", chi.URLParam(r, "id")))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid identity ID format")
		return
	}

	identity, err := h.adminService.VerifyProfessional(ctx, id)
	if err != nil {
		status, msg := api.StatusForError(err)
		if status >= http.StatusInternalServerError {
			l.ErrorContext(ctx, "Failed to verify professional", slog.Any("error", err))
		} else {
			l.WarnContext(ctx, "Verification rejected", slog.String("reason", err.Error()))
		}
		api.ErrorResponse(w, r, status, msg)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

// ListPending godoc
// @Summary      Pending professionals
// @Description  Lists doctor and nurse accounts waiting for verification, oldest first.
// @Tags         Admin
// @Produce      json
// @Param        role query string false "doctor or nurse"
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset"
// @Success      200 {array} types.Identity
// @Failure      400 {object} types.Response "Invalid query"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Admin role required"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /admin/professionals/pending [get]
func (h *HandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListPending"))

	limit, offset, err := api.ParsePagination(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := h.adminService.ListPending(ctx, types.ProfessionalFilter{
		Role:   types.Role(r.URL.Query().Get("role")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		status, msg := api.StatusForError(err)
		if status >= http.StatusInternalServerError {
			l.ErrorContext(ctx, "Failed to list pending professionals", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, msg)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, pending)
}
