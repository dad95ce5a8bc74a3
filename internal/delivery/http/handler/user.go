package handler

import (
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/request"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/usecase/user"
)

// UserHandler serves the caller's profile
type UserHandler struct {
	service *user.Service
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *user.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  log,
	}
}

// Me handles GET /api/v1/me
// @Summary Get my profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Profile"
// @Failure 404 {object} map[string]string "Profile not created yet"
// @Router /me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.service.Get(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, u)
}

// UpdateMe handles PUT /api/v1/me
// @Summary Create or update my profile
// @Description The phone number (E.164) receives order SMS updates
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body user.ProfileInput true "Profile"
// @Success 200 {object} map[string]interface{} "Profile"
// @Failure 400 {object} map[string]interface{} "Invalid profile"
// @Failure 409 {object} map[string]string "Email already in use"
// @Router /me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var in user.ProfileInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.service.UpsertProfile(r.Context(), id.UserID, id.Role, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Success(w, u)
}
