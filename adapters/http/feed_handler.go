package http

import (
	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

type FeedHandler struct {
	feedUseCase *portfolioUC.FeedUseCase
	logger      logger.Logger
}

func NewFeedHandler(uc *portfolioUC.FeedUseCase, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: uc,
		logger:      log,
	}
}

func (h *FeedHandler) GenerateRSS(c *gin.Context) {
	feed := h.feedUseCase.Execute()

	c.Header("Content-Type", "application/xml; charset=utf-8")

	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
