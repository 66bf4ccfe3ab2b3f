package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/http/middlewares"
	"github.com/geocoder89/schoolhub/internal/security"
	"github.com/geocoder89/schoolhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	users  UsersStore
	hasher security.Hasher
	log    *slog.Logger
}

func NewUsersHandler(users UsersStore, hasher security.Hasher) *UsersHandler {
	return &UsersHandler{users: users, hasher: hasher, log: slog.Default()}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	skip, limit, err := utils.ParseSkipLimit(ctx.Query("skip"), ctx.Query("limit"))

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	items, total, err := h.users.List(cctx, user.ListUsersFilter{Limit: limit, Offset: skip})

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list users failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
		"total": total,
		"skip":  skip,
		"limit": limit,
	})
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get user failed", "err", err, "user_id", id)
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// UpdateUser lets users edit themselves; admins and managers may edit anyone
// and are the only ones allowed to change a role.
func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	actor, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authenticated")
		return
	}

	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	privileged := auth.IsPrivileged(actor)

	if actor.ID != id && !privileged {
		RespondForbidden(ctx, "You can only update your own account")
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch, ok := h.buildPatch(ctx, req, privileged)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	u, err := h.users.Update(cctx, id, patch)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		if respondUserConflict(ctx, err) {
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "update user failed", "err", err, "user_id", id)
		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// buildPatch turns the request into a store patch, hashing any new password.
func (h *UsersHandler) buildPatch(ctx *gin.Context, req user.UpdateUserRequest, privileged bool) (user.Patch, bool) {
	patch := user.Patch{
		Username: req.Username,
		Email:    req.Email,
	}

	if req.Role != nil {
		if !privileged {
			RespondForbidden(ctx, "Only admins or managers can change roles")
			return user.Patch{}, false
		}

		role, err := user.ParseRole(*req.Role)
		if err != nil {
			RespondBadRequestCode(ctx, "invalid_role", "Role must be one of "+roleNames())
			return user.Patch{}, false
		}
		patch.Role = &role
	}

	if req.Password != nil {
		hash, err := h.hasher.Hash(*req.Password)
		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return user.Patch{}, false
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		RespondBadRequest(ctx, "No fields to update", nil)
		return user.Patch{}, false
	}

	return patch, true
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	u, err := h.users.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete user failed", "err", err, "user_id", id)
		RespondInternal(ctx, "Could not delete user")
		return
	}

	RespondMessage(ctx, http.StatusOK, "User -> "+u.Username+" -> was deleted successfully!")
}
