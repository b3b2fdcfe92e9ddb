package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peerev/peer-review-api/internal/models"
	appErrors "github.com/peerev/peer-review-api/pkg/errors"
	"github.com/peerev/peer-review-api/pkg/export"
)

type fakeInstructorAssignments struct {
	all    []models.AssignmentWithSubmitter
	closed *models.Assignment
}

func (f *fakeInstructorAssignments) ListAll(_ context.Context) ([]models.AssignmentWithSubmitter, error) {
	return f.all, nil
}

func (f *fakeInstructorAssignments) Close(_ context.Context, id string) (*models.Assignment, error) {
	if f.closed == nil || f.closed.ID != id {
		return nil, sql.ErrNoRows
	}
	f.closed.Status = models.AssignmentClosed
	return f.closed, nil
}

type fakeInstructorReviews struct {
	reviews []models.ReviewWithDetails
}

func (f *fakeInstructorReviews) ListForExport(_ context.Context, _ string) ([]models.ReviewWithDetails, error) {
	return f.reviews, nil
}

func TestInstructorCloseAssignment(t *testing.T) {
	assignments := &fakeInstructorAssignments{closed: &models.Assignment{ID: "a1", Status: models.AssignmentPending}}
	svc := NewInstructorService(assignments, &fakeInstructorReviews{}, nil, zap.NewNop())

	assignment, err := svc.CloseAssignment(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentClosed, assignment.Status)
}

func TestInstructorCloseUnknownAssignment(t *testing.T) {
	svc := NewInstructorService(&fakeInstructorAssignments{}, &fakeInstructorReviews{}, nil, zap.NewNop())

	_, err := svc.CloseAssignment(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestInstructorExportDataset(t *testing.T) {
	reviews := &fakeInstructorReviews{reviews: []models.ReviewWithDetails{
		{
			Review: models.Review{
				Strengths:       `He said "great"`,
				Weaknesses:      "none, really",
				Suggestions:     "keep going",
				Clarity:         5,
				Quality:         4,
				Effort:          5,
				UsefulnessScore: 2,
			},
			ReviewerName:    "Alice",
			AssignmentTitle: "Essay One",
		},
	}}
	svc := NewInstructorService(&fakeInstructorAssignments{}, reviews, nil, zap.NewNop())

	dataset, title, err := svc.ExportDataset(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, "Essay One", title)
	assert.Equal(t, []string{"Assignment", "Reviewer", "Strengths", "Weaknesses", "Suggestions", "Clarity", "Quality", "Effort", "Usefulness Score"}, dataset.Headers)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "5", dataset.Rows[0]["Clarity"])
	assert.Equal(t, "2", dataset.Rows[0]["Usefulness Score"])
}

func TestInstructorExportCSVEscapesQuotes(t *testing.T) {
	reviews := &fakeInstructorReviews{reviews: []models.ReviewWithDetails{
		{
			Review:          models.Review{Strengths: `He said "great"`, Clarity: 3, Quality: 3, Effort: 3},
			ReviewerName:    "Bob",
			AssignmentTitle: "Essay, Part 2",
		},
	}}
	svc := NewInstructorService(&fakeInstructorAssignments{}, reviews, nil, zap.NewNop())

	dataset, _, err := svc.ExportDataset(context.Background(), "a1")
	require.NoError(t, err)

	body, err := export.NewCSVExporter().Render(dataset)
	require.NoError(t, err)

	csv := string(body)
	assert.Contains(t, csv, "Assignment,Reviewer,Strengths,Weaknesses,Suggestions,Clarity,Quality,Effort,Usefulness Score")
	assert.Contains(t, csv, `"He said ""great"""`)
	assert.Contains(t, csv, `"Essay, Part 2"`)
	assert.Contains(t, csv, `"Bob"`)
}

func TestInstructorExportNoReviews(t *testing.T) {
	svc := NewInstructorService(&fakeInstructorAssignments{}, &fakeInstructorReviews{}, nil, zap.NewNop())

	_, _, err := svc.ExportDataset(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
