package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/database"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUpsertKeepsOneDocumentPerType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	studentID := uuid.New()

	first := &domain.LegalDocument{
		StudentID:    studentID,
		DocumentType: "referral",
		FilePath:     "documents/v1.pdf",
		Status:       domain.DocumentPending,
		UploadedAt:   time.Now(),
	}
	require.NoError(t, repo.Upsert(first))

	second := &domain.LegalDocument{
		StudentID:    studentID,
		DocumentType: "referral",
		FilePath:     "documents/v2.pdf",
		Status:       domain.DocumentPending,
		UploadedAt:   time.Now(),
	}
	require.NoError(t, repo.Upsert(second))

	docs, err := repo.ListByStudent(studentID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "documents/v2.pdf", docs[0].FilePath)

	// A different type is a separate row
	require.NoError(t, repo.Upsert(&domain.LegalDocument{
		StudentID:    studentID,
		DocumentType: "health",
		FilePath:     "documents/health.pdf",
		Status:       domain.DocumentPending,
		UploadedAt:   time.Now(),
	}))
	docs, err = repo.ListByStudent(studentID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCountSignedAgreementsFiltersByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDocumentRepository(db)
	studentID := uuid.New()
	now := time.Now()

	sign := func(agreementType string, signed bool) {
		require.NoError(t, repo.CreateAgreement(&domain.DigitalAgreement{
			StudentID:          studentID,
			AgreementType:      agreementType,
			Content:            "...",
			Signed:             signed,
			SignatureTimestamp: &now,
		}))
	}
	sign("confidentiality", true)
	sign("ethics", true)
	sign("discipline", false)
	sign("obsolete_policy", true) // no longer configured

	count, err := repo.CountSignedAgreements(studentID, []string{"confidentiality", "ethics", "discipline", "emergency"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBestScorePicksHighestAttempt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	studentID := uuid.New()

	for i, score := range []int{60, 85, 72} {
		require.NoError(t, repo.CreateAttempt(&domain.PreClinicalAssessment{
			StudentID:      studentID,
			AssessmentType: domain.AssessmentPosttest,
			Score:          score,
			TotalQuestions: 10,
			CorrectAnswers: score / 10,
			PassingScore:   80,
			Passed:         score >= 80,
			AttemptNumber:  i + 1,
			TakenAt:        time.Now(),
		}))
	}

	best, err := repo.BestScore(studentID, domain.AssessmentPosttest)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 85, *best)

	none, err := repo.BestScore(studentID, domain.AssessmentPretest)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetOrCreateConfigIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigRepository(db)

	first, err := repo.GetOrCreate()
	require.NoError(t, err)
	assert.Len(t, first.Documents, 4)
	assert.Len(t, first.Agreements, 4)
	assert.Len(t, first.PretestQuestions, 3)
	assert.Len(t, first.PosttestQuestions, 3)

	second, err := repo.GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Documents, second.Documents)
	assert.Equal(t, first.Agreements, second.Agreements)

	var count int64
	db.Model(&domain.ClinicalConfig{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
