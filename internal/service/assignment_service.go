package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

const defaultRequiredReviews = 3

type assignmentRepository interface {
	Create(ctx context.Context, a *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListBySubmitter(ctx context.Context, userID string) ([]models.Assignment, error)
	ListReviewable(ctx context.Context, userID string) ([]models.Assignment, error)
}

type assignmentUserRepository interface {
	IncrementCreatedAssignments(ctx context.Context, id string) error
}

type uploadStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Path(filename string) string
}

// AssignmentServiceConfig tunes upload handling.
type AssignmentServiceConfig struct {
	MaxFileSizeBytes int64
}

// AssignmentService handles submission and discovery of assignments.
type AssignmentService struct {
	assignments assignmentRepository
	users       assignmentUserRepository
	store       uploadStore
	validator   *validator.Validate
	logger      *zap.Logger
	config      AssignmentServiceConfig
}

// NewAssignmentService creates an instance of AssignmentService.
func NewAssignmentService(assignments assignmentRepository, users assignmentUserRepository, store uploadStore, validate *validator.Validate, logger *zap.Logger, config AssignmentServiceConfig) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{assignments: assignments, users: users, store: store, validator: validate, logger: logger, config: config}
}

// Create persists a new assignment from either a link or an uploaded file and
// bumps the submitter's creation counter.
func (s *AssignmentService) Create(ctx context.Context, userID string, req dto.CreateAssignmentRequest, file *dto.UploadedFile) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	required := req.RequiredReviews
	if required <= 0 {
		required = defaultRequiredReviews
	}

	assignment := &models.Assignment{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		SubmittedBy:     userID,
		RequiredReviews: required,
		Status:          models.AssignmentPending,
	}

	if file != nil {
		if s.config.MaxFileSizeBytes > 0 && file.Size > s.config.MaxFileSizeBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
		}
		stored := fmt.Sprintf("%s%s", assignment.ID, filepath.Ext(file.Filename))
		path, err := s.store.SaveStream(stored, file.Reader)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
		}
		assignment.UploadType = models.UploadTypeUpload
		assignment.FilePath = &path
	} else {
		if req.FileURL == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "either a file or a fileUrl is required")
		}
		assignment.UploadType = models.UploadTypeLink
		fileURL := req.FileURL
		assignment.FileURL = &fileURL
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	if err := s.users.IncrementCreatedAssignments(ctx, userID); err != nil {
		s.logger.Warn("failed to bump created assignments counter", zap.String("user_id", userID), zap.Error(err))
	}

	return assignment, nil
}

// Mine returns the caller's own assignments, newest first.
func (s *AssignmentService) Mine(ctx context.Context, userID string) ([]models.Assignment, error) {
	items, err := s.assignments.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// ToReview returns assignments the caller can still review, fewest reviews
// first so under-reviewed work surfaces earlier.
func (s *AssignmentService) ToReview(ctx context.Context, userID string) ([]models.Assignment, error) {
	items, err := s.assignments.ListReviewable(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviewable assignments")
	}
	return items, nil
}

// Get returns one assignment by ID.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// DownloadPath resolves the on-disk path for an uploaded assignment file.
func (s *AssignmentService) DownloadPath(ctx context.Context, id string) (string, string, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if assignment.UploadType != models.UploadTypeUpload || assignment.FilePath == nil {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "this assignment does not have an uploaded file")
	}
	path := s.store.Path(*assignment.FilePath)
	return path, filepath.Base(*assignment.FilePath), nil
}
