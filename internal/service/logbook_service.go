package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEntryLocked   = errors.New("logbook entry is locked")
	ErrInvalidPIN    = errors.New("invalid validation PIN")
	ErrPINNotSet     = errors.New("validation PIN has not been set")
	ErrInvalidRole   = errors.New("invalid logbook role")
	ErrNotEntryOwner = errors.New("entry belongs to another student")
)

type LogbookService struct {
	logbook  *repository.LogbookRepository
	profiles *repository.ProfileRepository
}

func NewLogbookService(logbook *repository.LogbookRepository, profiles *repository.ProfileRepository) *LogbookService {
	return &LogbookService{logbook: logbook, profiles: profiles}
}

// AddEntry records a procedure and accrues competency progress for the
// matching checklist item. The teach role contributes the entry itself but no
// counter.
func (s *LogbookService) AddEntry(userID uuid.UUID, req dto.CreateLogbookEntryRequest) (*domain.LogbookEntry, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	role := domain.LogbookRole(req.Role)
	if !domain.ValidLogbookRole(role) {
		return nil, ErrInvalidRole
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, err
	}

	entry := &domain.LogbookEntry{
		StudentID:          profile.ID,
		EntryDate:          entryDate,
		Unit:               req.Unit,
		ProcedureName:      req.ProcedureName,
		ProcedureType:      req.ProcedureType,
		Role:               role,
		DurationMinutes:    req.DurationMinutes,
		PatientCaseSummary: req.PatientCaseSummary,
		LearningPoints:     req.LearningPoints,
		SupervisorID:       req.SupervisorID,
	}
	if err := s.logbook.CreateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.accrueCompetency(profile, req.ProcedureName, role); err != nil {
		return nil, err
	}
	return entry, nil
}

// accrueCompetency bumps the counter matching the role and promotes the
// competency level once all checklist minimums are met. The promotion is
// one-way and only from not_yet.
func (s *LogbookService) accrueCompetency(profile *domain.StudentProfile, procedureName string, role domain.LogbookRole) error {
	competency, err := s.logbook.FindChecklistByProcedure(profile.Program, procedureName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	progress, err := s.logbook.FindProgress(profile.ID, competency.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		progress = &domain.CompetencyProgress{
			StudentID:       profile.ID,
			CompetencyID:    competency.ID,
			CompetencyLevel: domain.LevelNotYet,
		}
		if err := s.logbook.CreateProgress(progress); err != nil {
			return err
		}
	}

	switch role {
	case domain.LogRoleObserve:
		progress.ObservationsCount++
	case domain.LogRoleAssist:
		progress.AssistsCount++
	case domain.LogRoleIndependent:
		progress.IndependentCount++
	case domain.LogRoleTeach:
		// teaching does not advance the counters
	}

	if progress.ObservationsCount >= competency.MinimumObservations &&
		progress.AssistsCount >= competency.MinimumAssists &&
		progress.IndependentCount >= competency.MinimumIndependent {
		if progress.CompetencyLevel == domain.LevelNotYet {
			progress.CompetencyLevel = domain.LevelCompetent
		}
	}

	progress.UpdatedAt = time.Now()
	return s.logbook.SaveProgress(progress)
}

// ValidateEntry applies a supervisor validation, permanently locking the
// entry. PIN validation checks the supervisor's bcrypt-hashed PIN.
func (s *LogbookService) ValidateEntry(entryID, supervisorID uuid.UUID, req dto.ValidateEntryRequest) (*domain.LogbookEntry, error) {
	entry, err := s.logbook.FindEntryByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry.Locked {
		return nil, ErrEntryLocked
	}

	method := domain.ValidationMethod(req.Method)
	if method == domain.ValidationPIN {
		pin, err := s.logbook.FindPIN(supervisorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPINNotSet
			}
			return nil, err
		}
		if req.PIN == nil || bcrypt.CompareHashAndPassword([]byte(pin.PINHash), []byte(*req.PIN)) != nil {
			return nil, ErrInvalidPIN
		}
	}

	now := time.Now()
	entry.SupervisorID = &supervisorID
	entry.Validated = true
	entry.ValidationMethod = &method
	entry.ValidationTimestamp = &now
	entry.SupervisorNotes = req.Notes
	entry.Locked = true
	if err := s.logbook.UpdateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetPIN stores a bcrypt hash of the supervisor's validation PIN.
func (s *LogbookService) SetPIN(supervisorID uuid.UUID, rawPIN string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	existing, err := s.logbook.FindPIN(supervisorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		existing.PINHash = string(hash)
		existing.LastChanged = time.Now()
		return s.logbook.SavePIN(existing)
	}
	return s.logbook.SavePIN(&domain.SupervisorValidationPIN{
		SupervisorID: supervisorID,
		PINHash:      string(hash),
		LastChanged:  time.Now(),
	})
}

// Progress lists competency progress joined with checklist minimums.
func (s *LogbookService) Progress(userID uuid.UUID) ([]dto.CompetencyProgressDTO, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	items, err := s.logbook.ListProgress(profile.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CompetencyProgressDTO, 0, len(items))
	for _, p := range items {
		item := dto.CompetencyProgressDTO{
			CompetencyID:      p.CompetencyID,
			ObservationsCount: p.ObservationsCount,
			AssistsCount:      p.AssistsCount,
			IndependentCount:  p.IndependentCount,
			CompetencyLevel:   string(p.CompetencyLevel),
			SupervisorSignoff: p.SupervisorSignoff,
		}
		if p.Competency != nil {
			item.CompetencyName = p.Competency.CompetencyName
			item.CompetencyCategory = p.Competency.CompetencyCategory
			item.MinimumObservations = p.Competency.MinimumObservations
			item.MinimumAssists = p.Competency.MinimumAssists
			item.MinimumIndependent = p.Competency.MinimumIndependent
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *LogbookService) requireProfile(userID uuid.UUID) (*domain.StudentProfile, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
