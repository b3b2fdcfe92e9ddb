package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/service"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
	"github.com/peerev/peer-review-api/pkg/export"
	"github.com/peerev/peer-review-api/pkg/response"
)

// InstructorHandler wires HTTP endpoints to the instructor service.
type InstructorHandler struct {
	service *service.InstructorService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewInstructorHandler creates a new handler.
func NewInstructorHandler(svc *service.InstructorService, csv *export.CSVExporter, pdf *export.PDFExporter) *InstructorHandler {
	return &InstructorHandler{service: svc, csv: csv, pdf: pdf}
}

// ListAssignments godoc
// @Summary List all assignments
// @Description Returns every assignment with its submitter's identity
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructor/assignments [get]
func (h *InstructorHandler) ListAssignments(c *gin.Context) {
	items, err := h.service.ListAssignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// CloseAssignment godoc
// @Summary Close an assignment
// @Description Closed assignments accept no further reviews
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body dto.CloseAssignmentRequest true "Close payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/close-assignment [post]
func (h *InstructorHandler) CloseAssignment(c *gin.Context) {
	var req dto.CloseAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid close payload"))
		return
	}

	assignment, err := h.service.CloseAssignment(c.Request.Context(), req.AssignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, assignment, nil)
}

// ExportReviews godoc
// @Summary Export an assignment's reviews
// @Description Downloads the reviews as CSV, or as PDF with ?format=pdf
// @Tags Instructor
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Assignment ID"
// @Param format query string false "Export format (csv or pdf)" Enums(csv, pdf)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /instructor/export/{id} [get]
func (h *InstructorHandler) ExportReviews(c *gin.Context) {
	assignmentID := c.Param("id")
	dataset, title, err := h.service.ExportDataset(c.Request.Context(), assignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		body, err := h.pdf.Render(dataset, title)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=reviews-%s.pdf", assignmentID))
		c.Data(http.StatusOK, "application/pdf", body)
		return
	}

	body, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=reviews-%s.csv", assignmentID))
	c.Data(http.StatusOK, "text/csv", body)
}
