package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
	"github.com/peerev/peer-review-api/pkg/export"
)

// Column order of the review export.
var exportHeaders = []string{"Assignment", "Reviewer", "Strengths", "Weaknesses", "Suggestions", "Clarity", "Quality", "Effort", "Usefulness Score"}

type instructorAssignmentRepository interface {
	ListAll(ctx context.Context) ([]models.AssignmentWithSubmitter, error)
	Close(ctx context.Context, id string) (*models.Assignment, error)
}

type instructorReviewRepository interface {
	ListForExport(ctx context.Context, assignmentID string) ([]models.ReviewWithDetails, error)
}

// InstructorService covers the instructor moderation surface: the global
// assignment table, the close action and review export.
type InstructorService struct {
	assignments instructorAssignmentRepository
	reviews     instructorReviewRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInstructorService creates an instance of InstructorService.
func NewInstructorService(assignments instructorAssignmentRepository, reviews instructorReviewRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InstructorService{assignments: assignments, reviews: reviews, validator: validate, logger: logger}
}

// ListAssignments returns every assignment with its submitter's identity.
func (s *InstructorService) ListAssignments(ctx context.Context) ([]models.AssignmentWithSubmitter, error) {
	items, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// CloseAssignment marks an assignment closed. Closed assignments accept no
// further reviews.
func (s *InstructorService) CloseAssignment(ctx context.Context, assignmentID string) (*models.Assignment, error) {
	assignment, err := s.assignments.Close(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close assignment")
	}
	s.logger.Info("assignment closed", zap.String("assignment_id", assignment.ID))
	return assignment, nil
}

// ExportDataset builds the tabular review export for an assignment. The
// dataset feeds both the CSV and the PDF renderer.
func (s *InstructorService) ExportDataset(ctx context.Context, assignmentID string) (export.Dataset, string, error) {
	reviews, err := s.reviews.ListForExport(ctx, assignmentID)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviews")
	}
	if len(reviews) == 0 {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrNotFound, "no reviews found")
	}

	rows := make([]map[string]string, 0, len(reviews))
	for _, review := range reviews {
		rows = append(rows, map[string]string{
			"Assignment":       review.AssignmentTitle,
			"Reviewer":         review.ReviewerName,
			"Strengths":        review.Strengths,
			"Weaknesses":       review.Weaknesses,
			"Suggestions":      review.Suggestions,
			"Clarity":          strconv.Itoa(review.Clarity),
			"Quality":          strconv.Itoa(review.Quality),
			"Effort":           strconv.Itoa(review.Effort),
			"Usefulness Score": strconv.Itoa(review.UsefulnessScore),
		})
	}

	return export.Dataset{Headers: exportHeaders, Rows: rows}, reviews[0].AssignmentTitle, nil
}
