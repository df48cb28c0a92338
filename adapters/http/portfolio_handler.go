package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portfolioUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

type PortfolioHandler struct {
	store  *portfolioUC.Store
	logger logger.Logger
}

func NewPortfolioHandler(store *portfolioUC.Store, log logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{store: store, logger: log}
}

// GetPortfolio serves the cache as-is; it never reaches the backing store.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, ToPortfolioDTO(h.store.Snapshot()))
}

func (h *PortfolioHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	updated, err := h.store.UpdateProfile(c.Request.Context(), req.ToPatch())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(updated))
}

func (h *PortfolioHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for item", err))
		return
	}
	kind, err := portfolio.ParseKind(req.Type)
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid item type", err))
		return
	}

	created, err := h.store.AddItem(c.Request.Context(), kind, req.ToFields())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToItemDTO(created))
}

func (h *PortfolioHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for item update", err))
		return
	}

	updated, err := h.store.UpdateItem(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		c.Error(err)
		return
	}
	if updated == nil {
		c.Error(apperror.NewNotFound("portfolio item", id))
		return
	}
	c.JSON(http.StatusOK, ToItemDTO(*updated))
}

func (h *PortfolioHandler) DeleteItem(c *gin.Context) {
	if err := h.store.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh reloads the cache. Partial failures still answer with the reloaded content
// plus the error text, since whatever did load is already live.
func (h *PortfolioHandler) Refresh(c *gin.Context) {
	err := h.store.Refresh(c.Request.Context())
	body := gin.H{"portfolio": ToPortfolioDTO(h.store.Snapshot())}
	if err != nil {
		h.logger.Warn("Manual refresh completed with errors", zap.Error(err))
		body["error"] = err.Error()
		c.JSON(apperror.ToHTTPStatus(err), body)
		return
	}
	c.JSON(http.StatusOK, body)
}
