package repository

import (
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Pre/post tests

func (r *AssessmentRepository) CreateAttempt(attempt *domain.PreClinicalAssessment) error {
	return r.db.Create(attempt).Error
}

func (r *AssessmentRepository) CountAttempts(studentID uuid.UUID, assessmentType domain.AssessmentType) (int64, error) {
	var count int64
	err := r.db.Model(&domain.PreClinicalAssessment{}).
		Where("student_id = ? AND assessment_type = ?", studentID, assessmentType).
		Count(&count).Error
	return count, err
}

func (r *AssessmentRepository) ListAttempts(studentID uuid.UUID, assessmentType domain.AssessmentType) ([]domain.PreClinicalAssessment, error) {
	var attempts []domain.PreClinicalAssessment
	err := r.db.Where("student_id = ? AND assessment_type = ?", studentID, assessmentType).
		Order("taken_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// BestScore returns the highest score across attempts, or nil when the
// student has none.
func (r *AssessmentRepository) BestScore(studentID uuid.UUID, assessmentType domain.AssessmentType) (*int, error) {
	var attempts []domain.PreClinicalAssessment
	err := r.db.Where("student_id = ? AND assessment_type = ?", studentID, assessmentType).
		Order("score DESC").
		Limit(1).
		Find(&attempts).Error
	if err != nil || len(attempts) == 0 {
		return nil, err
	}
	return &attempts[0].Score, nil
}

// Weekly assessments

func (r *AssessmentRepository) CreateWeekly(assessment *domain.WeeklyAssessment) error {
	return r.db.Create(assessment).Error
}

func (r *AssessmentRepository) ListWeekly(studentID uuid.UUID) ([]domain.WeeklyAssessment, error) {
	var assessments []domain.WeeklyAssessment
	err := r.db.Where("student_id = ?", studentID).
		Order("week_number ASC, taken_at ASC").
		Find(&assessments).Error
	return assessments, err
}

// Final exams

func (r *AssessmentRepository) CreateExam(exam *domain.FinalExam) error {
	return r.db.Create(exam).Error
}

func (r *AssessmentRepository) FindExamByID(id uuid.UUID) (*domain.FinalExam, error) {
	var exam domain.FinalExam
	err := r.db.Where("id = ?", id).First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *AssessmentRepository) CountExamAttempts(studentID uuid.UUID, examType domain.ExamType) (int64, error) {
	var count int64
	err := r.db.Model(&domain.FinalExam{}).
		Where("student_id = ? AND exam_type = ?", studentID, examType).
		Count(&count).Error
	return count, err
}

func (r *AssessmentRepository) ListExams(studentID uuid.UUID) ([]domain.FinalExam, error) {
	var exams []domain.FinalExam
	err := r.db.Where("student_id = ?", studentID).Order("exam_date DESC").Find(&exams).Error
	return exams, err
}

// BestExamScore returns the best graded score for an exam type, or nil.
func (r *AssessmentRepository) BestExamScore(studentID uuid.UUID, examType domain.ExamType) (*int, error) {
	var exams []domain.FinalExam
	err := r.db.Where("student_id = ? AND exam_type = ? AND score IS NOT NULL", studentID, examType).
		Order("score DESC").
		Limit(1).
		Find(&exams).Error
	if err != nil || len(exams) == 0 {
		return nil, err
	}
	return exams[0].Score, nil
}

func (r *AssessmentRepository) UpdateExam(exam *domain.FinalExam) error {
	return r.db.Save(exam).Error
}

// 360 evaluations

func (r *AssessmentRepository) CreateEvaluation(eval *domain.Evaluation360) error {
	return r.db.Create(eval).Error
}

func (r *AssessmentRepository) ListEvaluations(studentID uuid.UUID) ([]domain.Evaluation360, error) {
	var evals []domain.Evaluation360
	err := r.db.Where("student_id = ?", studentID).Order("submitted_at ASC").Find(&evals).Error
	return evals, err
}

// Certificates

func (r *AssessmentRepository) CreateCertificate(cert *domain.ClinicalCertificate) error {
	return r.db.Create(cert).Error
}

func (r *AssessmentRepository) FindCertificateByStudent(studentID uuid.UUID) (*domain.ClinicalCertificate, error) {
	var cert domain.ClinicalCertificate
	err := r.db.Where("student_id = ?", studentID).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *AssessmentRepository) FindCertificateByNumber(number string) (*domain.ClinicalCertificate, error) {
	var cert domain.ClinicalCertificate
	err := r.db.Where("certificate_number = ?", number).First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}
