package professionals

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// ListVerified godoc
// @Summary      Professionals directory
// @Description  Lists verified doctors and nurses with their public profile.
// @Tags         Professionals
// @Produce      json
// @Param        role query string false "doctor or nurse"
// @Param        city query string false "City"
// @Param        specialty query string false "Specialty"
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset"
// @Success      200 {array} types.PublicProfessional
// @Failure      400 {object} types.Response "Invalid query"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /professionals [get]
func (h *Handler) ListVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("method", "ListVerified"))

	limit, offset, err := api.ParsePagination(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()

	list, err := h.service.ListVerified(ctx, types.ProfessionalFilter{
		Role:      types.Role(q.Get("role")),
		City:      q.Get("city"),
		Specialty: q.Get("specialty"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		status, msg := api.StatusForError(err)
		if status >= http.StatusInternalServerError {
			l.ErrorContext(ctx, "Failed to list professionals", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, msg)
		return
	}

	l.DebugContext(ctx, "Returned professionals", slog.Int("count", len(list)))
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}
