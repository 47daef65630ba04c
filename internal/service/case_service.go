package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCaseNotOwned      = errors.New("case belongs to another student")
	ErrCaseClosed        = errors.New("case is already closed")
	ErrDuplicateUpdate   = errors.New("an update for this date already exists")
	ErrDuplicateJournal  = errors.New("a journal for this date already exists")
	ErrJournalNotAllowed = errors.New("journal belongs to a student you do not supervise")
)

type CaseService struct {
	cases    *repository.CaseRepository
	profiles *repository.ProfileRepository
}

func NewCaseService(cases *repository.CaseRepository, profiles *repository.ProfileRepository) *CaseService {
	return &CaseService{cases: cases, profiles: profiles}
}

func (s *CaseService) CreateCase(userID uuid.UUID, req dto.CreateCaseRequest) (*domain.PatientCase, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, err
	}

	c := &domain.PatientCase{
		StudentID:        profile.ID,
		CaseTitle:        req.CaseTitle,
		PatientAlias:     req.PatientAlias,
		Unit:             req.Unit,
		InitialDiagnosis: req.InitialDiagnosis,
		StartDate:        startDate,
		InitialNotes:     req.InitialNotes,
		Status:           domain.CaseActive,
	}
	if err := s.cases.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddDailyUpdate appends one update per calendar day. The case ownership and
// single-update rule are both enforced here.
func (s *CaseService) AddDailyUpdate(userID, caseID uuid.UUID, req dto.CreateDailyUpdateRequest) (*domain.PatientCaseDailyUpdate, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, err
	}
	if c.StudentID != profile.ID {
		return nil, ErrCaseNotOwned
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.cases.HasDailyUpdate(caseID, entryDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUpdate
	}

	nextControl, err := parseDatePtr(req.NextControlDate)
	if err != nil {
		return nil, err
	}

	update := &domain.PatientCaseDailyUpdate{
		CaseID:          caseID,
		EntryDate:       entryDate,
		Status:          req.Status,
		UpdateSummary:   req.UpdateSummary,
		Interventions:   req.Interventions,
		PatientResponse: req.PatientResponse,
		FollowUpPlan:    req.FollowUpPlan,
		NextControlDate: nextControl,
	}
	if err := s.cases.CreateDailyUpdate(update); err != nil {
		// Two submissions can race past the existence check; the unique
		// index catches the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUpdate
		}
		return nil, err
	}
	return update, nil
}

// CloseCase moves a case to closed. The transition is one-way; without an
// explicit end date, today's date is used.
func (s *CaseService) CloseCase(userID, caseID uuid.UUID, req dto.CloseCaseRequest) (*domain.PatientCase, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, err
	}
	if c.StudentID != profile.ID {
		return nil, ErrCaseNotOwned
	}
	if c.Status == domain.CaseClosed {
		return nil, ErrCaseClosed
	}

	endDate, err := parseDatePtr(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate == nil {
		// Truncate works on UTC, which is yesterday for anyone closing a
		// case before 07:00 WIB. Take the calendar date from the wall clock.
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		endDate = &today
	}

	c.Status = domain.CaseClosed
	c.EndDate = endDate
	if err := s.cases.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Timeline builds the visual case progression: the start node, one node per
// daily update numbered by day offset, and a closing node when the case is
// done. The closing date falls back from the recorded end date to the last
// update, then to the case's update timestamp.
func (s *CaseService) Timeline(c *domain.PatientCase, updates []domain.PatientCaseDailyUpdate) dto.CaseTimelineDTO {
	nodes := make([]dto.TimelineNodeDTO, 0, len(updates)+2)

	startSummary := c.InitialDiagnosis
	if startSummary == nil {
		startSummary = c.InitialNotes
	}
	startStatus := "Start"
	nodes = append(nodes, dto.TimelineNodeDTO{
		Kind:      "start",
		Label:     "Day 1",
		Date:      c.StartDate.Format("2006-01-02"),
		DayNumber: 1,
		Status:    &startStatus,
		Summary:   startSummary,
	})

	for i := range updates {
		u := updates[i]
		dayNumber := int(u.EntryDate.Sub(c.StartDate).Hours()/24) + 1
		status := "Update"
		if u.Status != nil {
			status = *u.Status
		}
		summary := u.UpdateSummary
		nodes = append(nodes, dto.TimelineNodeDTO{
			Kind:      "update",
			Label:     fmt.Sprintf("Day %d", dayNumber),
			Date:      u.EntryDate.Format("2006-01-02"),
			DayNumber: dayNumber,
			Status:    &status,
			Summary:   &summary,
			UpdateID:  &u.ID,
		})
	}

	if c.Status == domain.CaseClosed {
		closedDate := c.UpdatedAt
		if c.EndDate != nil {
			closedDate = *c.EndDate
		} else if len(updates) > 0 {
			closedDate = updates[len(updates)-1].EntryDate
		}
		closedStatus := "Closed"
		dayNumber := int(closedDate.Sub(c.StartDate).Hours()/24) + 1
		nodes = append(nodes, dto.TimelineNodeDTO{
			Kind:      "end",
			Label:     "Done",
			Date:      closedDate.Format("2006-01-02"),
			DayNumber: dayNumber,
			Status:    &closedStatus,
		})
	}

	return dto.CaseTimelineDTO{
		CaseID:   c.ID,
		Title:    c.CaseTitle,
		Status:   string(c.Status),
		Timeline: nodes,
	}
}

// ListCasesWithTimelines returns the student's cases with their timelines.
func (s *CaseService) ListCasesWithTimelines(userID uuid.UUID, status string) ([]dto.CaseTimelineDTO, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	cases, err := s.cases.ListByStudent(profile.ID, status)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CaseTimelineDTO, 0, len(cases))
	for i := range cases {
		updates, err := s.cases.ListDailyUpdates(cases[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, s.Timeline(&cases[i], updates))
	}
	return out, nil
}

// Journals

// AddJournal records one reflection per calendar day.
func (s *CaseService) AddJournal(userID uuid.UUID, req dto.CreateJournalRequest) (*domain.DailyJournal, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.cases.HasJournal(profile.ID, entryDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateJournal
	}

	journal := &domain.DailyJournal{
		StudentID:        profile.ID,
		EntryDate:        entryDate,
		Shift:            req.Shift,
		Unit:             req.Unit,
		JournalText:      req.JournalText,
		WhatWentWell:     req.WhatWentWell,
		ChallengesFaced:  req.ChallengesFaced,
		LearningInsights: req.LearningInsights,
		ConfidenceLevel:  req.ConfidenceLevel,
		EmotionTag:       req.EmotionTag,
	}
	if err := s.cases.CreateJournal(journal); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateJournal
		}
		return nil, err
	}
	return journal, nil
}

// GiveJournalFeedback attaches supervisor feedback to a journal entry.
func (s *CaseService) GiveJournalFeedback(journalID, supervisorID uuid.UUID, req dto.JournalFeedbackRequest) (*domain.DailyJournal, error) {
	journal, err := s.cases.FindJournalByID(journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	journal.SupervisorFeedback = &req.Feedback
	journal.SupervisorID = &supervisorID
	journal.FeedbackTimestamp = &now
	if err := s.cases.UpdateJournal(journal); err != nil {
		return nil, err
	}
	return journal, nil
}

func (s *CaseService) requireProfile(userID uuid.UUID) (*domain.StudentProfile, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
