package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/service"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
	"github.com/peerev/peer-review-api/pkg/response"
)

// ReviewHandler wires HTTP endpoints to the review service.
type ReviewHandler struct {
	service *service.ReviewService
}

// NewReviewHandler creates a new handler.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Submit godoc
// @Summary Submit a review
// @Description Submit an anonymous peer review for an assignment
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body dto.SubmitReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reviews/submit [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	review, err := h.service.Submit(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, review)
}

// ListForAssignment godoc
// @Summary List reviews for an assignment
// @Description Returns an assignment's reviews with reviewer identities masked
// @Tags Reviews
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/assignment/{id} [get]
func (h *ReviewHandler) ListForAssignment(c *gin.Context) {
	reviews, err := h.service.ListForAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reviews, nil)
}

// Rate godoc
// @Summary Rate a review's usefulness
// @Description Assignment owners mark a received review as useful
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body dto.RateReviewRequest true "Rate payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reviews/rate [post]
func (h *ReviewHandler) Rate(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rate payload"))
		return
	}

	if err := h.service.Rate(c.Request.Context(), user.ID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": "Review rated successfully"}, nil)
}
