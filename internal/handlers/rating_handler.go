package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FSE-2025/helpdesk-service/internal/services"
	"github.com/FSE-2025/helpdesk-service/internal/utils"
)

type RatingHandler struct {
	BaseHandler
	ratingService services.RatingService
	reportService services.ReportService
}

func NewRatingHandler(ratingService services.RatingService, reportService services.ReportService, logger utils.Logger) *RatingHandler {
	return &RatingHandler{
		BaseHandler:   NewBaseHandler(logger),
		ratingService: ratingService,
		reportService: reportService,
	}
}

// RankReviewer places a reviewer in the caller's trusted list.
func (h *RatingHandler) RankReviewer(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.RankReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Ranking reviewer", "owner_id", actor.ID, "reviewer_id", req.ReviewerID)

	if err := h.ratingService.RankReviewer(c.Request.Context(), actor.ID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Reviewer ranked"})
}

func (h *RatingHandler) RemoveFromTrustedList(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}
	reviewerID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ratingService.RemoveFromTrustedList(c.Request.Context(), actor.ID, reviewerID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Reviewer removed"})
}

func (h *RatingHandler) GetTrustedList(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	list, err := h.ratingService.GetTrustedList(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: list})
}

func (h *RatingHandler) GetRating(c *gin.Context) {
	reviewerID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.GetRating(c.Request.Context(), reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: rating})
}

func (h *RatingHandler) RecomputeRating(c *gin.Context) {
	reviewerID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Recomputing rating", "reviewer_id", reviewerID)

	rating, err := h.ratingService.RecomputeRating(c.Request.Context(), reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: rating})
}

// ExportRatings streams the reviewer rating workbook.
func (h *RatingHandler) ExportRatings(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting ratings", "actor_id", actor.ID)

	data, err := h.reportService.ExportRatings(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("reviewer-ratings-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
