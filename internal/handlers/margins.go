package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/purecarat/diamond-backend/internal/services"
)

type MarginHandler struct {
	margins services.MarginService
}

func NewMarginHandler(margins services.MarginService) *MarginHandler {
	return &MarginHandler{margins: margins}
}

type replaceMarginsRequest struct {
	StoreID   string                 `json:"store_id" binding:"required"`
	StoneType string                 `json:"stone_type" binding:"required"`
	Rules     []services.MarginRange `json:"rules" binding:"required"`
}

// POST /api/margins
func (h *MarginHandler) Replace(c *gin.Context) {
	var req replaceMarginsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	repriced, err := h.margins.ReplaceRules(c.Request.Context(), req.StoreID, strings.ToLower(req.StoneType), req.Rules)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStoreIDRequired),
			errors.Is(err, services.ErrInvalidStoneType),
			errors.Is(err, services.ErrInvalidMarginUnit),
			errors.Is(err, services.ErrInvalidMarginRange):
			RespondError(c, http.StatusBadRequest, "invalid_margin_rules", err)
		default:
			RespondError(c, http.StatusInternalServerError, "margin_replace_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{
		"success":  true,
		"repriced": repriced,
	})
}

// GET /api/margins
func (h *MarginHandler) List(c *gin.Context) {
	groups, err := h.margins.ListRules(c.Request.Context(), c.Query("store_id"))
	if err != nil {
		if errors.Is(err, services.ErrStoreIDRequired) {
			RespondError(c, http.StatusBadRequest, "store_id_required", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "margin_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"margins": groups})
}
