package service

import (
	"testing"

	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newLogbookService(db *gorm.DB) *LogbookService {
	return NewLogbookService(
		repository.NewLogbookRepository(db),
		repository.NewProfileRepository(db),
	)
}

func createChecklist(t *testing.T, db *gorm.DB, name string, obs, assists, independent int) *domain.CompetencyChecklist {
	t.Helper()
	item := &domain.CompetencyChecklist{
		Program:             "Keperawatan",
		CompetencyName:      name,
		MinimumObservations: obs,
		MinimumAssists:      assists,
		MinimumIndependent:  independent,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func entryRequest(role, procedure string) dto.CreateLogbookEntryRequest {
	return dto.CreateLogbookEntryRequest{
		EntryDate:     "2026-03-02",
		Unit:          "IGD",
		ProcedureName: procedure,
		Role:          role,
	}
}

func TestAddEntryAccruesMatchingCounter(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, profile := createStudent(t, db, "20260001")
	checklist := createChecklist(t, db, "Pemasangan Infus", 2, 1, 1)

	_, err := svc.AddEntry(user.ID, entryRequest("observe", "Pemasangan Infus"))
	require.NoError(t, err)
	_, err = svc.AddEntry(user.ID, entryRequest("assist", "Pemasangan Infus"))
	require.NoError(t, err)

	var progress domain.CompetencyProgress
	require.NoError(t, db.Where("student_id = ? AND competency_id = ?", profile.ID, checklist.ID).First(&progress).Error)
	assert.Equal(t, 1, progress.ObservationsCount)
	assert.Equal(t, 1, progress.AssistsCount)
	assert.Equal(t, 0, progress.IndependentCount)
	assert.Equal(t, domain.LevelNotYet, progress.CompetencyLevel)
}

func TestCompetencyPromotedWhenAllMinimumsMet(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, profile := createStudent(t, db, "20260001")
	checklist := createChecklist(t, db, "Pemasangan Infus", 1, 1, 2)

	var err error
	_, err = svc.AddEntry(user.ID, entryRequest("observe", "Pemasangan Infus"))
	require.NoError(t, err)
	_, err = svc.AddEntry(user.ID, entryRequest("assist", "Pemasangan Infus"))
	require.NoError(t, err)
	_, err = svc.AddEntry(user.ID, entryRequest("independent", "Pemasangan Infus"))
	require.NoError(t, err)

	var progress domain.CompetencyProgress
	require.NoError(t, db.Where("student_id = ? AND competency_id = ?", profile.ID, checklist.ID).First(&progress).Error)
	assert.Equal(t, domain.LevelNotYet, progress.CompetencyLevel, "one independent short of the minimum")

	_, err = svc.AddEntry(user.ID, entryRequest("independent", "Pemasangan Infus"))
	require.NoError(t, err)

	require.NoError(t, db.Where("student_id = ? AND competency_id = ?", profile.ID, checklist.ID).First(&progress).Error)
	assert.Equal(t, domain.LevelCompetent, progress.CompetencyLevel)
	assert.Equal(t, 2, progress.IndependentCount)
}

func TestTeachRoleDoesNotAdvanceCounters(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, profile := createStudent(t, db, "20260001")
	checklist := createChecklist(t, db, "Pemasangan Infus", 1, 1, 1)

	_, err := svc.AddEntry(user.ID, entryRequest("teach", "Pemasangan Infus"))
	require.NoError(t, err)

	var progress domain.CompetencyProgress
	require.NoError(t, db.Where("student_id = ? AND competency_id = ?", profile.ID, checklist.ID).First(&progress).Error)
	assert.Equal(t, 0, progress.ObservationsCount)
	assert.Equal(t, 0, progress.AssistsCount)
	assert.Equal(t, 0, progress.IndependentCount)

	var entries int64
	db.Model(&domain.LogbookEntry{}).Where("student_id = ?", profile.ID).Count(&entries)
	assert.Equal(t, int64(1), entries, "the entry itself is still recorded")
}

func TestAddEntryWithoutChecklistStillRecords(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, profile := createStudent(t, db, "20260001")

	entry, err := svc.AddEntry(user.ID, entryRequest("independent", "Prosedur Tanpa Checklist"))
	require.NoError(t, err)
	assert.Equal(t, profile.ID, entry.StudentID)

	var count int64
	db.Model(&domain.CompetencyProgress{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddEntryRejectsUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, _ := createStudent(t, db, "20260001")

	_, err := svc.AddEntry(user.ID, entryRequest("spectator", "Pemasangan Infus"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidateEntryLocksPermanently(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, _ := createStudent(t, db, "20260001")
	supervisor := createUser(t, db, domain.RolePemateri)

	entry, err := svc.AddEntry(user.ID, entryRequest("observe", "Pemasangan Infus"))
	require.NoError(t, err)

	validated, err := svc.ValidateEntry(entry.ID, supervisor.ID, dto.ValidateEntryRequest{
		Method: "manual",
		Notes:  strPtr("Prosedur dilakukan dengan baik"),
	})
	require.NoError(t, err)
	assert.True(t, validated.Validated)
	assert.True(t, validated.Locked)
	require.NotNil(t, validated.SupervisorID)
	assert.Equal(t, supervisor.ID, *validated.SupervisorID)

	_, err = svc.ValidateEntry(entry.ID, supervisor.ID, dto.ValidateEntryRequest{Method: "manual"})
	assert.ErrorIs(t, err, ErrEntryLocked)
}

func TestValidateEntryWithPIN(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, _ := createStudent(t, db, "20260001")
	supervisor := createUser(t, db, domain.RolePemateri)

	entry, err := svc.AddEntry(user.ID, entryRequest("assist", "Pemasangan Infus"))
	require.NoError(t, err)

	// No PIN configured yet
	_, err = svc.ValidateEntry(entry.ID, supervisor.ID, dto.ValidateEntryRequest{
		Method: "pin",
		PIN:    strPtr("123456"),
	})
	assert.ErrorIs(t, err, ErrPINNotSet)

	require.NoError(t, svc.SetPIN(supervisor.ID, "123456"))

	_, err = svc.ValidateEntry(entry.ID, supervisor.ID, dto.ValidateEntryRequest{
		Method: "pin",
		PIN:    strPtr("654321"),
	})
	assert.ErrorIs(t, err, ErrInvalidPIN)

	validated, err := svc.ValidateEntry(entry.ID, supervisor.ID, dto.ValidateEntryRequest{
		Method: "pin",
		PIN:    strPtr("123456"),
	})
	require.NoError(t, err)
	assert.True(t, validated.Locked)
	require.NotNil(t, validated.ValidationMethod)
	assert.Equal(t, domain.ValidationPIN, *validated.ValidationMethod)
}

func TestSetPINStoresHashNotPlaintext(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	supervisor := createUser(t, db, domain.RolePemateri)

	require.NoError(t, svc.SetPIN(supervisor.ID, "123456"))

	var pin domain.SupervisorValidationPIN
	require.NoError(t, db.Where("supervisor_id = ?", supervisor.ID).First(&pin).Error)
	assert.NotEqual(t, "123456", pin.PINHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(pin.PINHash), []byte("123456")))

	// Changing the PIN replaces the row, not appends
	require.NoError(t, svc.SetPIN(supervisor.ID, "999999"))
	var count int64
	db.Model(&domain.SupervisorValidationPIN{}).Where("supervisor_id = ?", supervisor.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProgressJoinsChecklistMinimums(t *testing.T) {
	db := setupTestDB(t)
	svc := newLogbookService(db)
	user, _ := createStudent(t, db, "20260001")
	createChecklist(t, db, "Pemasangan Infus", 3, 5, 10)

	_, err := svc.AddEntry(user.ID, entryRequest("observe", "Pemasangan Infus"))
	require.NoError(t, err)

	items, err := svc.Progress(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pemasangan Infus", items[0].CompetencyName)
	assert.Equal(t, 1, items[0].ObservationsCount)
	assert.Equal(t, 3, items[0].MinimumObservations)
	assert.Equal(t, 5, items[0].MinimumAssists)
	assert.Equal(t, 10, items[0].MinimumIndependent)
	assert.Equal(t, string(domain.LevelNotYet), items[0].CompetencyLevel)
}
