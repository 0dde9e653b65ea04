package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alciverdev/farmatup-API/internal/config"
)

type BranchesHandler struct {
	branches BranchReader
}

func NewBranchesHandler(branches BranchReader) *BranchesHandler {
	return &BranchesHandler{branches: branches}
}

func (h *BranchesHandler) ListBranches(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	branches, err := h.branches.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list branches")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": branches,
		"count": len(branches),
	})
}
