package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/http/middlewares"
	"github.com/geocoder89/schoolhub/internal/security"
	"github.com/gin-gonic/gin"
)

const (
	loginFailedMessage = "Invalid Credentials or User not found"
	logoutMessage      = "User logged out, Please clear the token from the client side"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int, error)
	Update(ctx context.Context, id int64, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, id int64) (user.User, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (user.User, error)
}

type TokenIssuer interface {
	IssueAccessToken(subject string) (string, error)
	AccessTTL() time.Duration
}

type AuthHandler struct {
	users  UsersStore
	hasher security.Hasher
	authn  Authenticator
	tokens TokenIssuer
	log    *slog.Logger
}

func NewAuthHandler(users UsersStore, hasher security.Hasher, authn Authenticator, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:  users,
		hasher: hasher,
		authn:  authn,
		tokens: tokens,
		log:    slog.Default(),
	}
}

// LoginRequest mirrors the OAuth2 password form; JSON bodies work as well.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// binding already checked the role, this only canonicalizes it
	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondBadRequestCode(ctx, "invalid_role", "Role must be one of "+roleNames())
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	u, err := h.users.Create(cctx, user.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})

	if err != nil {
		if respondUserConflict(ctx, err) {
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "register user failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !Bind(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.authn.Authenticate(cctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			RespondUnAuthorized(ctx, "invalid_credentials", loginFailedMessage)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(u.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.AccessTTL().Seconds()),
	})
}

// Logout is advisory: tokens are stateless and stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusOK, logoutMessage)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Not authenticated")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !h.hasher.Verify(req.OldPassword, u.PasswordHash) {
		RespondBadRequestCode(ctx, "invalid_old_password", "Old password is incorrect")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.users.Update(cctx, u.ID, user.Patch{PasswordHash: &hash}); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "change password failed", "err", err, "user_id", u.ID)
		RespondInternal(ctx, "Could not change password")
		return
	}

	RespondMessage(ctx, http.StatusOK, "Password updated successfully")
}

func respondUserConflict(ctx *gin.Context, err error) bool {
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		RespondBadRequestCode(ctx, "username_taken", "Username already exists")
	case errors.Is(err, user.ErrEmailTaken):
		RespondBadRequestCode(ctx, "email_taken", "Email already exists")
	default:
		return false
	}

	return true
}
