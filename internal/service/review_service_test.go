package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/dto"
	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
)

type fakeReviewRepo struct {
	created      []*models.Review
	byID         map[string]*models.Review
	existing     bool
	listed       []models.Review
	usefulnessOf []string
}

func (f *fakeReviewRepo) Create(_ context.Context, review *models.Review) error {
	review.ID = "rev-1"
	review.CreatedAt = time.Now().UTC()
	f.created = append(f.created, review)
	return nil
}

func (f *fakeReviewRepo) FindByID(_ context.Context, id string) (*models.Review, error) {
	review, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return review, nil
}

func (f *fakeReviewRepo) ExistsForReviewer(_ context.Context, _, _ string) (bool, error) {
	return f.existing, nil
}

func (f *fakeReviewRepo) ListByAssignment(_ context.Context, _ string) ([]models.Review, error) {
	return f.listed, nil
}

func (f *fakeReviewRepo) IncrementUsefulness(_ context.Context, id string) error {
	f.usefulnessOf = append(f.usefulnessOf, id)
	return nil
}

type fakeReviewAssignments struct {
	assignment  *models.Assignment
	recorded    []string
	recordedErr error
}

func (f *fakeReviewAssignments) FindByID(_ context.Context, id string) (*models.Assignment, error) {
	if f.assignment == nil || f.assignment.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.assignment, nil
}

func (f *fakeReviewAssignments) RecordReviewReceived(_ context.Context, id string) (*models.Assignment, error) {
	if f.recordedErr != nil {
		return nil, f.recordedErr
	}
	f.recorded = append(f.recorded, id)
	f.assignment.ReceivedReviewsCount++
	if f.assignment.Status == models.AssignmentPending && f.assignment.ReceivedReviewsCount >= f.assignment.RequiredReviews {
		f.assignment.Status = models.AssignmentReviewed
	}
	return f.assignment, nil
}

type fakeScorer struct {
	submitted []string
	helpful   []string
}

func (f *fakeScorer) ReviewSubmitted(_ context.Context, reviewerID string) (*models.User, error) {
	f.submitted = append(f.submitted, reviewerID)
	return &models.User{ID: reviewerID}, nil
}

func (f *fakeScorer) ReviewMarkedHelpful(_ context.Context, reviewerID string) (*models.User, error) {
	f.helpful = append(f.helpful, reviewerID)
	return &models.User{ID: reviewerID}, nil
}

func validSubmitRequest() dto.SubmitReviewRequest {
	return dto.SubmitReviewRequest{
		AssignmentID: "a1",
		Strengths:    "clear structure",
		Weaknesses:   "thin test coverage",
		Suggestions:  "add edge case tests",
		Ratings:      dto.Ratings{Clarity: 4, Quality: 3, Effort: 5},
	}
}

func TestReviewSubmitPersistsAndScores(t *testing.T) {
	reviews := &fakeReviewRepo{}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{
		ID: "a1", SubmittedBy: "owner", RequiredReviews: 3, Status: models.AssignmentPending,
	}}
	scorer := &fakeScorer{}
	svc := NewReviewService(reviews, assignments, scorer, nil, zap.NewNop())

	review, err := svc.Submit(context.Background(), "reviewer", validSubmitRequest())
	require.NoError(t, err)

	assert.Equal(t, "rev-1", review.ID)
	assert.Equal(t, "reviewer", review.ReviewerID)
	assert.Equal(t, []string{"a1"}, assignments.recorded)
	assert.Equal(t, []string{"reviewer"}, scorer.submitted)
}

func TestReviewSubmitThirdReviewFlipsAssignmentStatus(t *testing.T) {
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{
		ID: "a1", SubmittedBy: "owner", RequiredReviews: 3,
		ReceivedReviewsCount: 2, Status: models.AssignmentPending,
	}}
	svc := NewReviewService(&fakeReviewRepo{}, assignments, &fakeScorer{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "reviewer", validSubmitRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, assignments.assignment.ReceivedReviewsCount)
	assert.Equal(t, models.AssignmentReviewed, assignments.assignment.Status)
}

func TestReviewSubmitRejectsSelfReview(t *testing.T) {
	reviews := &fakeReviewRepo{}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{
		ID: "a1", SubmittedBy: "me", RequiredReviews: 3, Status: models.AssignmentPending,
	}}
	scorer := &fakeScorer{}
	svc := NewReviewService(reviews, assignments, scorer, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "me", validSubmitRequest())
	require.Error(t, err)

	assert.Equal(t, appErrors.ErrSelfReview.Code, appErrors.FromError(err).Code)
	assert.Empty(t, reviews.created)
	assert.Empty(t, assignments.recorded)
	assert.Empty(t, scorer.submitted)
}

func TestReviewSubmitRejectsDuplicate(t *testing.T) {
	reviews := &fakeReviewRepo{existing: true}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{
		ID: "a1", SubmittedBy: "owner", RequiredReviews: 3, Status: models.AssignmentPending,
	}}
	svc := NewReviewService(reviews, assignments, &fakeScorer{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "reviewer", validSubmitRequest())
	require.Error(t, err)

	assert.Equal(t, appErrors.ErrDuplicateReview.Code, appErrors.FromError(err).Code)
	assert.Empty(t, reviews.created)
}

func TestReviewSubmitRejectsClosedAssignment(t *testing.T) {
	reviews := &fakeReviewRepo{}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{
		ID: "a1", SubmittedBy: "owner", RequiredReviews: 3, Status: models.AssignmentClosed,
	}}
	svc := NewReviewService(reviews, assignments, &fakeScorer{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "reviewer", validSubmitRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAssignmentClosed.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Empty(t, reviews.created)
}

func TestReviewSubmitUnknownAssignment(t *testing.T) {
	svc := NewReviewService(&fakeReviewRepo{}, &fakeReviewAssignments{}, &fakeScorer{}, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), "reviewer", validSubmitRequest())
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestReviewSubmitInvalidRatingRejected(t *testing.T) {
	svc := NewReviewService(&fakeReviewRepo{}, &fakeReviewAssignments{}, &fakeScorer{}, nil, zap.NewNop())

	req := validSubmitRequest()
	req.Ratings.Clarity = 6
	_, err := svc.Submit(context.Background(), "reviewer", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewListForAssignmentMasksReviewers(t *testing.T) {
	reviews := &fakeReviewRepo{listed: []models.Review{
		{ID: "r3", AssignmentID: "a1", ReviewerID: "carol", Strengths: "newest"},
		{ID: "r2", AssignmentID: "a1", ReviewerID: "bob"},
		{ID: "r1", AssignmentID: "a1", ReviewerID: "alice", Strengths: "oldest"},
	}}
	svc := NewReviewService(reviews, &fakeReviewAssignments{}, &fakeScorer{}, nil, zap.NewNop())

	masked, err := svc.ListForAssignment(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, masked, 3)

	assert.Equal(t, "Anonymous #1", masked[0].ReviewerName)
	assert.Equal(t, "Anonymous #2", masked[1].ReviewerName)
	assert.Equal(t, "Anonymous #3", masked[2].ReviewerName)
	assert.Equal(t, "newest", masked[0].Strengths)
}

func TestReviewRateOnlyOwnerMayRate(t *testing.T) {
	reviews := &fakeReviewRepo{byID: map[string]*models.Review{
		"rev-1": {ID: "rev-1", AssignmentID: "a1", ReviewerID: "reviewer"},
	}}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{ID: "a1", SubmittedBy: "owner"}}
	scorer := &fakeScorer{}
	svc := NewReviewService(reviews, assignments, scorer, nil, zap.NewNop())

	err := svc.Rate(context.Background(), "stranger", dto.RateReviewRequest{ReviewID: "rev-1", Useful: true})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
	assert.Empty(t, reviews.usefulnessOf)
	assert.Empty(t, scorer.helpful)
}

func TestReviewRateUsefulCreditsReviewer(t *testing.T) {
	reviews := &fakeReviewRepo{byID: map[string]*models.Review{
		"rev-1": {ID: "rev-1", AssignmentID: "a1", ReviewerID: "reviewer"},
	}}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{ID: "a1", SubmittedBy: "owner"}}
	scorer := &fakeScorer{}
	svc := NewReviewService(reviews, assignments, scorer, nil, zap.NewNop())

	require.NoError(t, svc.Rate(context.Background(), "owner", dto.RateReviewRequest{ReviewID: "rev-1", Useful: true}))

	assert.Equal(t, []string{"rev-1"}, reviews.usefulnessOf)
	assert.Equal(t, []string{"reviewer"}, scorer.helpful)
}

func TestReviewRateNotUsefulIsNoOp(t *testing.T) {
	reviews := &fakeReviewRepo{byID: map[string]*models.Review{
		"rev-1": {ID: "rev-1", AssignmentID: "a1", ReviewerID: "reviewer"},
	}}
	assignments := &fakeReviewAssignments{assignment: &models.Assignment{ID: "a1", SubmittedBy: "owner"}}
	scorer := &fakeScorer{}
	svc := NewReviewService(reviews, assignments, scorer, nil, zap.NewNop())

	require.NoError(t, svc.Rate(context.Background(), "owner", dto.RateReviewRequest{ReviewID: "rev-1", Useful: false}))

	assert.Empty(t, reviews.usefulnessOf)
	assert.Empty(t, scorer.helpful)
}
