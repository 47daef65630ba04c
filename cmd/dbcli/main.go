package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/config"
	"github.com/kgpaabangizzul/diklat/internal/database"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		printMenu()
		fmt.Print("Pilih menu: ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		switch input {
		case "1":
			createDatabase(cfg)
		case "2":
			migrateSchema(cfg)
		case "3":
			truncateTables(cfg)
		case "4":
			seedData(cfg)
		case "5":
			deleteDatabase(cfg)
		case "0":
			fmt.Println("Keluar...")
			os.Exit(0)
		default:
			fmt.Println("Pilihan tidak valid")
		}

		fmt.Println()
		fmt.Print("Tekan Enter untuk melanjutkan...")
		reader.ReadString('\n')
	}
}

func printMenu() {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("      DIKLAT DATABASE CLI MANAGER")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("1. Buat Database (jika belum ada) + Migrasi Schema")
	fmt.Println("2. Migrasi Schema (tanpa buat database)")
	fmt.Println("3. Truncate Tables")
	fmt.Println("4. Seed Data (generate dummy data)")
	fmt.Println("5. Hapus Database")
	fmt.Println("0. Keluar")
	fmt.Println()
	fmt.Println("----------------------------------------")
}

func getPostgresConn(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode,
	)
	return sql.Open("postgres", connStr)
}

func getDBConn(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode,
	)
	return sql.Open("postgres", connStr)
}

func databaseExists(cfg *config.Config) (bool, error) {
	db, err := getPostgresConn(cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.Name).Scan(&exists)
	return exists, err
}

func createDatabase(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Buat Database + Migrasi Schema ---")

	exists, err := databaseExists(cfg)
	if err != nil {
		fmt.Printf("Error cek database: %v\n", err)
		return
	}

	if exists {
		fmt.Printf("Database '%s' sudah ada.\n", cfg.Database.Name)
	} else {
		db, err := getPostgresConn(cfg)
		if err != nil {
			fmt.Printf("Error koneksi: %v\n", err)
			return
		}
		defer db.Close()

		_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name))
		if err != nil {
			fmt.Printf("Error buat database: %v\n", err)
			return
		}
		fmt.Printf("Database '%s' berhasil dibuat.\n", cfg.Database.Name)
	}

	migrateSchema(cfg)
}

// migrateSchema runs the gorm auto-migration against the configured database.
func migrateSchema(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Migrasi Schema ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	fmt.Println()
	fmt.Println("Migrasi schema selesai!")
}

func truncateTables(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Truncate Tables ---")
	fmt.Println("PERINGATAN: Seluruh data aplikasi akan dihapus!")
	fmt.Print("Ketik 'TRUNCATE' untuk konfirmasi: ")

	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	if strings.TrimSpace(input) != "TRUNCATE" {
		fmt.Println("Dibatalkan.")
		return
	}

	db, err := getDBConn(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	defer db.Close()

	tables := []string{
		"token_blacklist",
		"refresh_tokens",
		"clinical_certificates",
		"evaluations_360",
		"final_exams",
		"weekly_assessments",
		"student_feedbacks",
		"incident_reports",
		"alumni_profiles",
		"daily_journals",
		"patient_case_daily_updates",
		"patient_cases",
		"competency_progress",
		"competency_checklists",
		"logbook_entries",
		"supervisor_validation_pins",
		"preclinical_assessments",
		"digital_agreements",
		"legal_documents",
		"student_profiles",
		"clinical_configs",
		"material_submissions",
		"material_comments",
		"attendance_logs",
		"course_enrollments",
		"course_materials",
		"course_modules",
		"courses",
		"library_books",
		"news",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			fmt.Printf("Skip %s: %v\n", table, err)
			continue
		}
		fmt.Printf("Truncated %s\n", table)
	}

	fmt.Println()
	fmt.Println("Selesai!")
}

// seedData fills the database with a demo cohort: one admin, two clinical
// supervisors, a handful of students with profiles, and a starter course.
func seedData(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Seed Data ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	hash := func(password string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return string(h)
	}

	admin := domain.User{
		Username:     "admin",
		Email:        "admin@diklat.local",
		PasswordHash: hash("admin12345"),
		Role:         domain.RoleAdmin,
	}
	if err := db.Where("username = ?", admin.Username).FirstOrCreate(&admin).Error; err != nil {
		fmt.Printf("Error seed admin: %v\n", err)
		return
	}
	fmt.Println("Admin: admin / admin12345")

	division := "Keperawatan"
	supervisors := make([]domain.User, 0, 2)
	for i := 1; i <= 2; i++ {
		supervisor := domain.User{
			Username:     fmt.Sprintf("pembimbing%d", i),
			Email:        fmt.Sprintf("pembimbing%d@diklat.local", i),
			PasswordHash: hash("pembimbing123"),
			Role:         domain.RolePemateri,
			Division:     &division,
		}
		if err := db.Where("username = ?", supervisor.Username).FirstOrCreate(&supervisor).Error; err != nil {
			fmt.Printf("Error seed supervisor: %v\n", err)
			return
		}
		supervisors = append(supervisors, supervisor)
	}
	fmt.Println("Pembimbing: pembimbing1, pembimbing2 / pembimbing123")

	course := domain.Course{
		Title:        "Orientasi Keselamatan Pasien",
		InstructorID: supervisors[0].ID,
		Category:     domain.CategoryClinical,
	}
	if err := db.Where("title = ?", course.Title).FirstOrCreate(&course).Error; err != nil {
		fmt.Printf("Error seed course: %v\n", err)
		return
	}

	startDate := time.Now().AddDate(0, 0, -14)
	endDate := time.Now().AddDate(0, 3, 0)
	for i := 1; i <= 5; i++ {
		user := domain.User{
			Username:     fmt.Sprintf("mahasiswa%d", i),
			Email:        fmt.Sprintf("mahasiswa%d@kampus.ac.id", i),
			PasswordHash: hash("mahasiswa123"),
			Role:         domain.RoleUser,
		}
		if err := db.Where("username = ?", user.Username).FirstOrCreate(&user).Error; err != nil {
			fmt.Printf("Error seed mahasiswa: %v\n", err)
			return
		}

		supervisorID := supervisors[(i-1)%len(supervisors)].ID
		profile := domain.StudentProfile{
			UserID:            user.ID,
			StudentID:         fmt.Sprintf("2026%04d", i),
			Institution:       "STIKes Harapan Bangsa",
			Program:           "Keperawatan",
			PracticeStartDate: &startDate,
			PracticeEndDate:   &endDate,
			SupervisorID:      &supervisorID,
		}
		if err := db.Where("user_id = ?", user.ID).FirstOrCreate(&profile).Error; err != nil {
			fmt.Printf("Error seed profil: %v\n", err)
			return
		}

		enrollment := domain.CourseEnrollment{
			ID:       uuid.New(),
			UserID:   user.ID,
			CourseID: course.ID,
		}
		db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).FirstOrCreate(&enrollment)
	}
	fmt.Println("Mahasiswa: mahasiswa1..mahasiswa5 / mahasiswa123")

	competencies := []domain.CompetencyChecklist{
		{Program: "Keperawatan", CompetencyName: "Pemasangan Infus", MinimumObservations: 3, MinimumAssists: 5, MinimumIndependent: 10},
		{Program: "Keperawatan", CompetencyName: "Pemberian Obat Oral", MinimumObservations: 2, MinimumAssists: 3, MinimumIndependent: 5},
		{Program: "Keperawatan", CompetencyName: "Perawatan Luka", MinimumObservations: 3, MinimumAssists: 4, MinimumIndependent: 8},
	}
	for i := range competencies {
		db.Where("program = ? AND competency_name = ?", competencies[i].Program, competencies[i].CompetencyName).
			FirstOrCreate(&competencies[i])
	}
	fmt.Println("Checklist kompetensi: 3 prosedur Keperawatan")

	fmt.Println()
	fmt.Println("Seed selesai!")
}

func deleteDatabase(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Hapus Database ---")
	fmt.Printf("PERINGATAN: Database '%s' akan dihapus permanen!\n", cfg.Database.Name)
	fmt.Print("Ketik nama database untuk konfirmasi: ")

	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	if strings.TrimSpace(input) != cfg.Database.Name {
		fmt.Println("Dibatalkan.")
		return
	}

	db, err := getPostgresConn(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	defer db.Close()

	_, _ = db.Exec(fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()",
		cfg.Database.Name,
	))
	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", cfg.Database.Name)); err != nil {
		fmt.Printf("Error hapus database: %v\n", err)
		return
	}
	fmt.Printf("Database '%s' berhasil dihapus.\n", cfg.Database.Name)
}
