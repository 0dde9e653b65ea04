package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/domain/branch"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
	"github.com/alciverdev/farmatup-API/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, p user.CreateUserParams) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, p user.UpdateUserParams) (user.User, error)
	Delete(ctx context.Context, id int64) (user.User, error)
}

type BranchReader interface {
	GetByID(ctx context.Context, id int64) (branch.Branch, error)
	List(ctx context.Context) ([]branch.Branch, error)
}

type UsersHandler struct {
	store    UserStore
	branches BranchReader
}

func NewUsersHandler(store UserStore, branches BranchReader) *UsersHandler {
	return &UsersHandler{store: store, branches: branches}
}

type RegisterUserRequest struct {
	Fullname string  `json:"fullname" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Role     string  `json:"role" binding:"required"`
	NumCel   string  `json:"num_cel" binding:"required"`
	IDType   string  `json:"id_type" binding:"required"`
	NumID    string  `json:"num_id" binding:"required"`
	Image    *string `json:"image"`
	BranchID *int64  `json:"branch_id"`
}

// UpdateUserRequest uses pointers so "absent" and "present but empty" are
// distinguishable: nil fields are left untouched, present ones are applied.
type UpdateUserRequest struct {
	Fullname *string `json:"fullname"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role"`
	NumCel   *string `json:"num_cel"`
	IDType   *string `json:"id_type"`
	NumID    *string `json:"num_id"`
	Image    *string `json:"image"`
	BranchID *int64  `json:"branch_id"`
}

const invalidRoleMessage = "Invalid role. Must be ADMIN or EMPLOYED"

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req RegisterUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondBadRequest(ctx, invalidRoleMessage, nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if req.BranchID != nil {
		if _, err := h.branches.GetByID(cctx, *req.BranchID); err != nil {
			if errors.Is(err, postgres.ErrBranchNotFound) {
				RespondNotFound(ctx, "Branch not found")
				return
			}
			RespondInternal(ctx, "Could not verify branch")
			return
		}
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	u, err := h.store.Create(cctx, user.CreateUserParams{
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		NumCel:       req.NumCel,
		IDType:       req.IDType,
		NumID:        req.NumID,
		Image:        req.Image,
		BranchID:     req.BranchID,
	})
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondConflict(ctx, "user_exists", "User already exists")
		case errors.Is(err, postgres.ErrBranchNotFound):
			// branch deleted between the existence check and the insert
			RespondNotFound(ctx, "Branch not found")
		default:
			RespondInternal(ctx, err.Error())
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  u.ID,
	})
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.store.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	branches, err := h.branches.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}
	byID := make(map[int64]branch.Branch, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}

	profiles := make([]user.Profile, 0, len(users))
	for _, u := range users {
		var linked *branch.Branch
		if u.BranchID != nil {
			if b, ok := byID[*u.BranchID]; ok {
				linked = &b
			}
		}
		profiles = append(profiles, u.Profile(linked))
	}

	ctx.JSON(http.StatusOK, profiles)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	profile, err := h.profileOf(cctx, u)
	if err != nil {
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	params := user.UpdateUserParams{
		Fullname: req.Fullname,
		Email:    req.Email,
		NumCel:   req.NumCel,
		IDType:   req.IDType,
		NumID:    req.NumID,
		Image:    req.Image,
		BranchID: req.BranchID,
	}

	if req.Role != nil {
		role, err := user.ParseRole(*req.Role)
		if err != nil {
			RespondBadRequest(ctx, invalidRoleMessage, nil)
			return
		}
		params.Role = &role
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}
		params.PasswordHash = &hash
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if req.BranchID != nil {
		if _, err := h.branches.GetByID(cctx, *req.BranchID); err != nil {
			if errors.Is(err, postgres.ErrBranchNotFound) {
				RespondNotFound(ctx, "Branch not found")
				return
			}
			RespondInternal(ctx, "Could not verify branch")
			return
		}
	}

	u, err := h.store.Update(cctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUserNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondConflict(ctx, "user_exists", "Email already in use")
		case errors.Is(err, postgres.ErrBranchNotFound):
			RespondNotFound(ctx, "Branch not found")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	profile, err := h.profileOf(cctx, u)
	if err != nil {
		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "User updated successfully",
		"updatedUser": profile,
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.Delete(cctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "User deleted successfully",
		"deletedUser": u.Profile(nil),
	})
}

// profileOf resolves the user's linked branch, tolerating a dangling
// reference (the branch is simply omitted).
func (h *UsersHandler) profileOf(ctx context.Context, u user.User) (user.Profile, error) {
	if u.BranchID == nil {
		return u.Profile(nil), nil
	}

	b, err := h.branches.GetByID(ctx, *u.BranchID)
	if err != nil {
		if errors.Is(err, postgres.ErrBranchNotFound) {
			return u.Profile(nil), nil
		}
		return user.Profile{}, err
	}
	return u.Profile(&b), nil
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return 0, false
	}
	return id, true
}
