package users

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/devtea/internal/application/usecases/user"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/json"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
)

type Handler struct {
	userUseCase user.UserUseCase
	logger      logging.Logger
}

func NewHandler(userUseCase user.UserUseCase, logger logging.Logger) *Handler {
	return &Handler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// CreateUserHandler godoc
// @Summary      Issue a user identity
// @Description  Creates an identity from sign-in profile data. The username is the name lowercased without whitespace, made unique with a numeric suffix.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body createUserRequest true "Profile"
// @Success      200 {object} userResponse
// @Failure      400 {object} json.ErrorResponse
// @Router       /users [post]
// @Router       /auth/google [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}

	identity, err := h.userUseCase.Create(r.Context(), user.CreateInput{
		Email:  req.Email,
		Name:   req.Name,
		Avatar: req.Picture,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			json.Write(w, http.StatusBadRequest, json.ErrorResponse{
				Error:   "Authentication failed",
				Message: err.Error(),
			})
			return
		}

		h.logger.Error(logging.Internal, logging.Identity, "failed to create user", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
		return
	}

	json.Write(w, http.StatusOK, userResponse{User: identity})
}

// SearchUsersHandler godoc
// @Summary      Search users
// @Description  Case-insensitive match on username, user code or name. At most 10 results; an empty query returns none.
// @Tags         users
// @Produce      json
// @Param        search query string false "Search term"
// @Success      200 {object} searchResponse
// @Router       /users [get]
// @Router       /auth/google [get]
func (h *Handler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	identities, err := h.userUseCase.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error(logging.Internal, logging.Identity, "failed to search users", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
		return
	}

	users := make([]userSummary, 0, len(identities))
	for _, identity := range identities {
		users = append(users, userSummary{
			ID:       identity.ID,
			Username: identity.Username,
			Name:     identity.Name,
			UserCode: identity.UserCode,
			Avatar:   identity.Avatar,
		})
	}

	json.Write(w, http.StatusOK, searchResponse{Users: users})
}

// DeleteUserHandler godoc
// @Summary      Delete a user identity
// @Tags         users
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} deleteResponse
// @Failure      404 {object} json.ErrorResponse "User not found"
// @Router       /users/{userId} [delete]
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteUser(w, r, chi.URLParam(r, "userId"))
}

// DeleteUserByBodyHandler godoc
// @Summary      Delete a user identity
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body deleteUserRequest true "User to delete"
// @Success      200 {object} deleteResponse
// @Failure      404 {object} json.ErrorResponse "User not found"
// @Router       /auth/google [delete]
func (h *Handler) DeleteUserByBodyHandler(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, "userId is required")
		return
	}
	h.deleteUser(w, r, req.UserID)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	err := h.userUseCase.Delete(r.Context(), userID)
	switch {
	case err == nil:
		json.Write(w, http.StatusOK, deleteResponse{Success: true})
	case errors.Is(err, domain.ErrIdentityNotFound):
		json.WriteNotFoundError(w, "User not found")
	default:
		h.logger.Error(logging.Internal, logging.Identity, "failed to delete user", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
	}
}
