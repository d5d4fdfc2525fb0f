package auth

import (
	"log/slog"
	"net/http"

	appMiddleware "github.com/FACorreiaa/medibook-api/app/middleware"
	"github.com/FACorreiaa/medibook-api/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Register an account
// @Description  Creates a patient, doctor or nurse account and returns a session token. Doctors and nurses must be verified by an admin before they can log in again.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body RegisterRequest true "Registration details"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      403 {object} types.Response "Admins cannot self-register"
// @Failure      409 {object} types.Response "Email already registered"
// @Failure      429 {object} types.Response "Too many requests"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		api.ValidationErrorResponse(w, r, err)
		return
	}

	result, err := h.authService.Register(ctx, req)
	if err != nil {
		h.writeError(w, r, l, "Registration failed", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, AuthResponse{
		AuthResult: *result,
		Message:    "Registration successful",
	})
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges email and password for a session token valid for five hours.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      401 {object} types.Response "Invalid email or password"
// @Failure      403 {object} types.Response "Account pending verification"
// @Failure      429 {object} types.Response "Too many requests"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		api.ValidationErrorResponse(w, r, err)
		return
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, l, "Login failed", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{
		AuthResult: *result,
		Message:    "Login successful",
	})
}

// Me godoc
// @Summary      Current identity
// @Description  Returns the account behind the bearer token, without its password hash.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Identity
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Identity no longer exists"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *HandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Me"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	identity, err := h.authService.GetCurrentIdentity(ctx, userID)
	if err != nil {
		h.writeError(w, r, l, "Failed to load current identity", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

// writeError logs client errors at warn and everything else at error, then
// writes the mapped status without internal detail.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, msg string, err error) {
	status, clientMsg := api.StatusForError(err)
	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), msg, slog.Any("error", err))
	} else {
		l.WarnContext(r.Context(), msg, slog.String("reason", err.Error()))
	}
	api.ErrorResponse(w, r, status, clientMsg)
}
