package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/http/middlewares"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
	"github.com/alciverdev/farmatup-API/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(u user.User) (string, error)
}

type AuthHandler struct {
	users UserReader
	jwt   TokenIssuer
}

func NewAuthHandler(users UserReader, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUser is the reduced projection returned alongside a fresh token.
type AuthUser struct {
	ID       int64     `json:"id"`
	Fullname string    `json:"fullname"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
}

// Bcrypt hash of an arbitrary string, compared against when the email does
// not exist so both login failure paths cost one hash verification.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, postgres.ErrUserNotFound) {
			RespondInternal(ctx, "Could not process login")
			return
		}
		// Same work and same response as a wrong password.
		_ = security.CheckPassword(dummyPasswordHash, req.Password)
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": AuthUser{
			ID:       foundUser.ID,
			Fullname: foundUser.Fullname,
			Email:    foundUser.Email,
			Role:     foundUser.Role,
		},
	})
}

// Me returns the authenticated caller's reduced projection.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, AuthUser{
		ID:       u.ID,
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	})
}
