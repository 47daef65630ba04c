package database

import (
	"fmt"
	"log"
	"time"

	"github.com/kgpaabangizzul/diklat/internal/config"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Jakarta",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	logLevel := logger.Warn
	if cfg.App.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database connected and migrated")
	return db, nil
}

// Migrate runs auto-migration for every model. Kept separate from Connect so
// tests can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&domain.User{},
		&domain.RefreshToken{},
		&domain.TokenBlacklist{},

		// E-learning
		&domain.Course{},
		&domain.CourseModule{},
		&domain.CourseMaterial{},
		&domain.CourseEnrollment{},
		&domain.AttendanceLog{},
		&domain.MaterialComment{},
		&domain.MaterialSubmission{},

		// Library and news
		&domain.LibraryBook{},
		&domain.News{},

		// Clinical onboarding
		&domain.ClinicalConfig{},
		&domain.StudentProfile{},
		&domain.LegalDocument{},
		&domain.DigitalAgreement{},
		&domain.PreClinicalAssessment{},

		// Practice tracking
		&domain.LogbookEntry{},
		&domain.CompetencyChecklist{},
		&domain.CompetencyProgress{},
		&domain.PatientCase{},
		&domain.PatientCaseDailyUpdate{},
		&domain.DailyJournal{},
		&domain.SupervisorValidationPIN{},

		// Assessment and certification
		&domain.WeeklyAssessment{},
		&domain.FinalExam{},
		&domain.Evaluation360{},
		&domain.ClinicalCertificate{},

		// Reporting
		&domain.IncidentReport{},
		&domain.StudentFeedback{},
		&domain.AlumniProfile{},
	)
}
