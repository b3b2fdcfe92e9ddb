package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/service"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
	"github.com/peerev/peer-review-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment service.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Submit an assignment
// @Description Submit an assignment as a link or as a multipart file upload
// @Tags Assignments
// @Accept mpfd
// @Accept json
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param fileUrl formData string false "Link to the work (when no file is attached)"
// @Param requiredReviews formData int false "Reviews needed before the assignment counts as reviewed"
// @Param file formData file false "Uploaded work"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/create [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	var upload *dto.UploadedFile
	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		defer file.Close()
		upload = &dto.UploadedFile{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Reader:   file,
		}
	}

	assignment, err := h.service.Create(c.Request.Context(), user.ID, req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, assignment)
}

// Mine godoc
// @Summary List own assignments
// @Description Returns the caller's submissions, newest first
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/my [get]
func (h *AssignmentHandler) Mine(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.Mine(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// ToReview godoc
// @Summary List assignments to review
// @Description Returns open assignments the caller has not yet reviewed, fewest reviews first
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/to-review [get]
func (h *AssignmentHandler) ToReview(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.ToReview(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, assignment, nil)
}

// Download godoc
// @Summary Download an uploaded assignment file
// @Tags Assignments
// @Produce octet-stream
// @Param id path string true "Assignment ID"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/download/{id} [get]
func (h *AssignmentHandler) Download(c *gin.Context) {
	path, filename, err := h.service.DownloadPath(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.FileAttachment(path, filename)
}
