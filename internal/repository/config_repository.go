package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// GetOrCreate returns the singleton clinical configuration, seeding it with
// the default policy on first use.
func (r *ConfigRepository) GetOrCreate() (*domain.ClinicalConfig, error) {
	var config domain.ClinicalConfig
	err := r.db.First(&config).Error
	if err == nil {
		return &config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	config = defaultClinicalConfig()
	if err := r.db.Create(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *ConfigRepository) Update(config *domain.ClinicalConfig, updatedBy uuid.UUID) error {
	config.UpdatedAt = time.Now()
	config.UpdatedBy = &updatedBy
	return r.db.Save(config).Error
}

func defaultClinicalConfig() domain.ClinicalConfig {
	return domain.ClinicalConfig{
		ID: uuid.New(),
		Documents: domain.DocumentRuleList{
			{Type: "referral", Label: "Referral Letter", RequiresExpiration: true},
			{Type: "health", Label: "Health Letter", RequiresExpiration: true},
			{Type: "insurance", Label: "Insurance", RequiresExpiration: true},
			{Type: "integrity_pact", Label: "Integrity Pact", RequiresExpiration: false},
		},
		Agreements: domain.AgreementTemplateList{
			{Type: "confidentiality", Title: "Confidentiality", Text: "I hereby agree to maintain strict patient confidentiality and comply with all data protection regulations..."},
			{Type: "ethics", Title: "Ethics", Text: "I commit to upholding the highest standards of professional ethics in all clinical interactions..."},
			{Type: "discipline", Title: "Discipline", Text: "I acknowledge and accept the disciplinary policies and sanctions outlined by the hospital..."},
			{Type: "emergency", Title: "Emergency Procedures", Text: "I understand the emergency procedures and agree to follow all safety protocols..."},
		},
		RequiredCourseIDs: domain.UUIDList{},
		PretestQuestions: domain.QuestionList{
			{
				ID:            1,
				Question:      "Which action is most important before touching a patient?",
				Options:       []string{"Hand hygiene", "Adjust bed", "Write notes", "Check phone"},
				CorrectOption: "Hand hygiene",
			},
			{
				ID:            2,
				Question:      "What should you do if your ID badge is missing?",
				Options:       []string{"Report to supervisor", "Borrow a friend's badge", "Ignore it", "Leave the unit"},
				CorrectOption: "Report to supervisor",
			},
			{
				ID:            3,
				Question:      "Which item is part of basic PPE?",
				Options:       []string{"Gloves", "Necklace", "Perfume", "Watch"},
				CorrectOption: "Gloves",
			},
		},
		PosttestQuestions: domain.QuestionList{
			{
				ID:            1,
				Question:      "When should you perform hand hygiene?",
				Options:       []string{"Before and after patient contact", "Only after meals", "Only at shift end", "Once per day"},
				CorrectOption: "Before and after patient contact",
			},
			{
				ID:            2,
				Question:      "Which is the correct way to dispose of sharps?",
				Options:       []string{"Place in a sharps container", "Throw in regular trash", "Leave on tray", "Wrap in tissue"},
				CorrectOption: "Place in a sharps container",
			},
			{
				ID:            3,
				Question:      "If you witness a safety incident, what is the first step?",
				Options:       []string{"Ensure patient safety", "Post on chat", "Finish other tasks", "Ignore it"},
				CorrectOption: "Ensure patient safety",
			},
		},
		UpdatedAt: time.Now(),
	}
}
