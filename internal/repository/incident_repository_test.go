package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateFeedbackIsOncePerTypePerStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIncidentRepository(db)
	studentID := uuid.New()
	rating := 4

	require.NoError(t, repo.CreateFeedback(&domain.StudentFeedback{
		StudentID:     studentID,
		FeedbackType:  "program",
		OverallRating: &rating,
	}))

	err := repo.CreateFeedback(&domain.StudentFeedback{
		StudentID:     studentID,
		FeedbackType:  "program",
		OverallRating: &rating,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// A different category is still open.
	assert.NoError(t, repo.CreateFeedback(&domain.StudentFeedback{
		StudentID:     studentID,
		FeedbackType:  "supervisor",
		OverallRating: &rating,
	}))
}
