package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/services"
)

type DiamondHandler struct {
	ingestion services.IngestionService
	processes services.ProcessService
	inventory services.InventoryService
}

func NewDiamondHandler(ingestion services.IngestionService, processes services.ProcessService, inventory services.InventoryService) *DiamondHandler {
	return &DiamondHandler{
		ingestion: ingestion,
		processes: processes,
		inventory: inventory,
	}
}

// POST /api/diamonds/ingest/:vendor
func (h *DiamondHandler) IngestVendor(c *gin.Context) {
	storeID := c.Query("store_id")
	proc, err := h.ingestion.Run(c.Request.Context(), c.Param("vendor"), storeID, "API")
	if err != nil {
		respondIngestionError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"process_id": proc.ID,
		"status":     proc.Status,
	})
}

// POST /api/diamonds/ingest-all
func (h *DiamondHandler) IngestAll(c *gin.Context) {
	storeID := c.Query("store_id")
	if err := h.ingestion.RunAll(c.Request.Context(), storeID, "API"); err != nil {
		respondIngestionError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "running",
		"vendors": h.ingestion.Vendors(),
	})
}

// GET /api/diamonds/processes/:id
func (h *DiamondHandler) GetProcess(c *gin.Context) {
	processID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_process_id", err)
		return
	}
	proc, err := h.processes.Get(c.Request.Context(), processID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "process_lookup_failed", err)
		return
	}
	if proc == nil {
		RespondError(c, http.StatusNotFound, "process_not_found", services.ErrProcessNotFound)
		return
	}
	RespondOK(c, gin.H{
		"process":             proc,
		"progress_percentage": proc.ProgressPercentage(),
	})
}

// GET /api/diamonds/processes
func (h *DiamondHandler) ListProcesses(c *gin.Context) {
	procs, err := h.processes.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "process_list_failed", err)
		return
	}
	out := make([]gin.H, 0, len(procs))
	for _, proc := range procs {
		out = append(out, gin.H{
			"process":             proc,
			"progress_percentage": proc.ProgressPercentage(),
		})
	}
	RespondOK(c, gin.H{"processes": out})
}

// GET /api/diamonds
func (h *DiamondHandler) ListDiamonds(c *gin.Context) {
	filter := repos.DiamondFilter{
		StoreID:      c.Query("store_id"),
		StoneType:    strings.ToLower(c.Query("type")),
		Colors:       splitUpper(c.Query("color")),
		Clarities:    splitUpper(c.Query("clarity")),
		Cuts:         splitLower(c.Query("cut")),
		Shapes:       splitLower(c.Query("shape")),
		Fluorescence: splitLower(c.Query("fluorescence")),
		Labs:         splitLower(c.Query("report")),
		Sort:         c.Query("sort"),
		Page:         intQuery(c, "page", 1),
		Limit:        intQuery(c, "limit", 10),
	}
	filter.CaratMin = floatQuery(c, "carat_min")
	filter.CaratMax = floatQuery(c, "carat_max")
	filter.PriceMin = floatQuery(c, "price_min")
	filter.PriceMax = floatQuery(c, "price_max")

	result, err := h.inventory.Search(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, services.ErrStoreIDRequired) {
			RespondError(c, http.StatusBadRequest, "store_id_required", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "diamond_search_failed", err)
		return
	}
	RespondOK(c, result)
}

func respondIngestionError(c *gin.Context, err error) {
	var conflict *services.ProcessConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error": APIError{
				Message: err.Error(),
				Code:    "process_already_running",
			},
			"process_id": conflict.ProcessID,
		})
		return
	}
	switch {
	case errors.Is(err, services.ErrUnknownVendor):
		RespondError(c, http.StatusNotFound, "unknown_vendor", err)
	case errors.Is(err, services.ErrStoreIDRequired):
		RespondError(c, http.StatusBadRequest, "store_id_required", err)
	default:
		RespondError(c, http.StatusInternalServerError, "ingestion_start_failed", err)
	}
}

func splitUpper(raw string) []string {
	return splitList(raw, strings.ToUpper)
}

func splitLower(raw string) []string {
	return splitList(raw, strings.ToLower)
}

func splitList(raw string, normalize func(string) string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, normalize(v))
		}
	}
	return out
}

func intQuery(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return v
}

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
