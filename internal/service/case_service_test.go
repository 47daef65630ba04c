package service

import (
	"testing"
	"time"

	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCaseService(db *gorm.DB) *CaseService {
	return NewCaseService(
		repository.NewCaseRepository(db),
		repository.NewProfileRepository(db),
	)
}

func TestCreateCaseStartsActive(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, profile := createStudent(t, db, "20260001")

	c, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle:        "Pasien DM Tipe 2",
		PatientAlias:     strPtr("Tn. A"),
		InitialDiagnosis: strPtr("Diabetes Mellitus Tipe 2"),
		StartDate:        "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseActive, c.Status)
	assert.Equal(t, profile.ID, c.StudentID)
	assert.Nil(t, c.EndDate)
}

func TestAddDailyUpdateOncePerDay(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")

	c, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)

	_, err = svc.AddDailyUpdate(user.ID, c.ID, dto.CreateDailyUpdateRequest{
		EntryDate:     "2026-03-03",
		UpdateSummary: "Gula darah mulai stabil",
		Status:        strPtr("improving"),
	})
	require.NoError(t, err)

	_, err = svc.AddDailyUpdate(user.ID, c.ID, dto.CreateDailyUpdateRequest{
		EntryDate:     "2026-03-03",
		UpdateSummary: "Catatan kedua di hari yang sama",
	})
	assert.ErrorIs(t, err, ErrDuplicateUpdate)

	_, err = svc.AddDailyUpdate(user.ID, c.ID, dto.CreateDailyUpdateRequest{
		EntryDate:     "2026-03-04",
		UpdateSummary: "Hari berikutnya",
	})
	assert.NoError(t, err)
}

func TestDailyUpdateRaceSurfacesAsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")

	c, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)

	_, err = svc.AddDailyUpdate(user.ID, c.ID, dto.CreateDailyUpdateRequest{
		EntryDate:     "2026-03-03",
		UpdateSummary: "Pertama",
	})
	require.NoError(t, err)

	// A concurrent writer that got past the existence check hits the unique
	// index; the storage error must translate to the duplicate-key sentinel
	// the service maps to a conflict.
	err = repository.NewCaseRepository(db).CreateDailyUpdate(&domain.PatientCaseDailyUpdate{
		CaseID:        c.ID,
		EntryDate:     time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		UpdateSummary: "Pemenang kedua",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDailyUpdateRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	owner, _ := createStudent(t, db, "20260001")
	other, _ := createStudent(t, db, "20260002")

	c, err := svc.CreateCase(owner.ID, dto.CreateCaseRequest{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)

	_, err = svc.AddDailyUpdate(other.ID, c.ID, dto.CreateDailyUpdateRequest{
		EntryDate:     "2026-03-03",
		UpdateSummary: "Bukan kasus saya",
	})
	assert.ErrorIs(t, err, ErrCaseNotOwned)
}

func TestCloseCaseIsOneWay(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")

	c, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)

	closed, err := svc.CloseCase(user.ID, c.ID, dto.CloseCaseRequest{EndDate: strPtr("2026-03-10")})
	require.NoError(t, err)
	assert.Equal(t, domain.CaseClosed, closed.Status)
	require.NotNil(t, closed.EndDate)
	assert.Equal(t, "2026-03-10", closed.EndDate.Format("2006-01-02"))

	_, err = svc.CloseCase(user.ID, c.ID, dto.CloseCaseRequest{})
	assert.ErrorIs(t, err, ErrCaseClosed)
}

func TestCloseCaseDefaultsEndDateToToday(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")

	c, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)

	closed, err := svc.CloseCase(user.ID, c.ID, dto.CloseCaseRequest{})
	require.NoError(t, err)
	require.NotNil(t, closed.EndDate)
	// The default must be today's wall-clock date regardless of how far the
	// local zone sits from UTC.
	assert.Equal(t, time.Now().Format("2006-01-02"), closed.EndDate.Format("2006-01-02"))
}

func TestTimelineNumbersDaysFromStart(t *testing.T) {
	svc := &CaseService{}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 8)
	improving := "improving"
	c := &domain.PatientCase{
		CaseTitle:        "Pasien DM Tipe 2",
		InitialDiagnosis: strPtr("Diabetes Mellitus Tipe 2"),
		StartDate:        start,
		EndDate:          &end,
		Status:           domain.CaseClosed,
	}
	updates := []domain.PatientCaseDailyUpdate{
		{EntryDate: start.AddDate(0, 0, 1), UpdateSummary: "Hari kedua", Status: &improving},
		{EntryDate: start.AddDate(0, 0, 4), UpdateSummary: "Hari kelima"},
	}

	timeline := svc.Timeline(c, updates)
	require.Len(t, timeline.Timeline, 4)

	startNode := timeline.Timeline[0]
	assert.Equal(t, "start", startNode.Kind)
	assert.Equal(t, "Day 1", startNode.Label)
	assert.Equal(t, 1, startNode.DayNumber)
	assert.Equal(t, "2026-03-02", startNode.Date)
	require.NotNil(t, startNode.Summary)
	assert.Equal(t, "Diabetes Mellitus Tipe 2", *startNode.Summary)

	assert.Equal(t, "update", timeline.Timeline[1].Kind)
	assert.Equal(t, 2, timeline.Timeline[1].DayNumber)
	assert.Equal(t, "Day 2", timeline.Timeline[1].Label)
	require.NotNil(t, timeline.Timeline[1].Status)
	assert.Equal(t, "improving", *timeline.Timeline[1].Status)

	assert.Equal(t, 5, timeline.Timeline[2].DayNumber)
	require.NotNil(t, timeline.Timeline[2].Status)
	assert.Equal(t, "Update", *timeline.Timeline[2].Status)

	endNode := timeline.Timeline[3]
	assert.Equal(t, "end", endNode.Kind)
	assert.Equal(t, "Done", endNode.Label)
	assert.Equal(t, 9, endNode.DayNumber)
	assert.Equal(t, "2026-03-10", endNode.Date)
	require.NotNil(t, endNode.Status)
	assert.Equal(t, "Closed", *endNode.Status)
}

func TestTimelineActiveCaseHasNoEndNode(t *testing.T) {
	svc := &CaseService{}
	c := &domain.PatientCase{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:    domain.CaseActive,
	}

	timeline := svc.Timeline(c, nil)
	require.Len(t, timeline.Timeline, 1)
	assert.Equal(t, "start", timeline.Timeline[0].Kind)
	assert.Equal(t, string(domain.CaseActive), timeline.Status)
}

func TestTimelineClosedWithoutEndDateFallsBackToLastUpdate(t *testing.T) {
	svc := &CaseService{}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	c := &domain.PatientCase{
		CaseTitle: "Pasien DM Tipe 2",
		StartDate: start,
		Status:    domain.CaseClosed,
	}
	updates := []domain.PatientCaseDailyUpdate{
		{EntryDate: start.AddDate(0, 0, 3), UpdateSummary: "Terakhir"},
	}

	timeline := svc.Timeline(c, updates)
	endNode := timeline.Timeline[len(timeline.Timeline)-1]
	assert.Equal(t, "end", endNode.Kind)
	assert.Equal(t, "2026-03-05", endNode.Date)
	assert.Equal(t, 4, endNode.DayNumber)
}

func TestListCasesWithTimelinesFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")

	active, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Kasus Aktif",
		StartDate: "2026-03-02",
	})
	require.NoError(t, err)
	closedCase, err := svc.CreateCase(user.ID, dto.CreateCaseRequest{
		CaseTitle: "Kasus Selesai",
		StartDate: "2026-02-01",
	})
	require.NoError(t, err)
	_, err = svc.CloseCase(user.ID, closedCase.ID, dto.CloseCaseRequest{EndDate: strPtr("2026-02-20")})
	require.NoError(t, err)

	all, err := svc.ListCasesWithTimelines(user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := svc.ListCasesWithTimelines(user.ID, "active")
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].CaseID)
}

func TestAddJournalOncePerDay(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, profile := createStudent(t, db, "20260001")

	journal, err := svc.AddJournal(user.ID, dto.CreateJournalRequest{
		EntryDate:   "2026-03-02",
		JournalText: "Hari pertama di IGD",
		Shift:       strPtr("morning"),
	})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, journal.StudentID)

	_, err = svc.AddJournal(user.ID, dto.CreateJournalRequest{
		EntryDate:   "2026-03-02",
		JournalText: "Jurnal kedua",
	})
	assert.ErrorIs(t, err, ErrDuplicateJournal)
}

func TestGiveJournalFeedback(t *testing.T) {
	db := setupTestDB(t)
	svc := newCaseService(db)
	user, _ := createStudent(t, db, "20260001")
	supervisor := createUser(t, db, domain.RolePemateri)

	journal, err := svc.AddJournal(user.ID, dto.CreateJournalRequest{
		EntryDate:   "2026-03-02",
		JournalText: "Hari pertama di IGD",
	})
	require.NoError(t, err)

	updated, err := svc.GiveJournalFeedback(journal.ID, supervisor.ID, dto.JournalFeedbackRequest{
		Feedback: "Refleksi yang bagus, pertahankan",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorFeedback)
	assert.Equal(t, "Refleksi yang bagus, pertahankan", *updated.SupervisorFeedback)
	require.NotNil(t, updated.SupervisorID)
	assert.Equal(t, supervisor.ID, *updated.SupervisorID)
	assert.NotNil(t, updated.FeedbackTimestamp)
}
