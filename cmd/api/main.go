package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kgpaabangizzul/diklat/internal/auth"
	"github.com/kgpaabangizzul/diklat/internal/config"
	"github.com/kgpaabangizzul/diklat/internal/database"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/handler"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
	"github.com/kgpaabangizzul/diklat/internal/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize MinIO client
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewAuthRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	configRepo := repository.NewConfigRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	logbookRepo := repository.NewLogbookRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)

	// Initialize services
	onboardingService := service.NewOnboardingService(profileRepo, documentRepo, assessmentRepo, courseRepo, configRepo)
	logbookService := service.NewLogbookService(logbookRepo, profileRepo)
	caseService := service.NewCaseService(caseRepo, profileRepo)
	assessmentService := service.NewAssessmentService(assessmentRepo, profileRepo, logbookRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo, authRepo, jwtService, cfg)
	profileHandler := handler.NewProfileHandler(userRepo, minioClient)
	courseHandler := handler.NewCourseHandler(courseRepo, userRepo)
	libraryHandler := handler.NewLibraryHandler(libraryRepo, minioClient)
	newsHandler := handler.NewNewsHandler(newsRepo)
	clinicalHandler := handler.NewClinicalHandler(onboardingService, documentRepo, courseRepo, configRepo, minioClient)
	logbookHandler := handler.NewLogbookHandler(logbookService, logbookRepo, profileRepo)
	caseHandler := handler.NewCaseHandler(caseService, caseRepo, profileRepo)
	supervisorHandler := handler.NewSupervisorHandler(profileRepo, logbookRepo, caseRepo, incidentRepo, logbookService)
	evaluationHandler := handler.NewEvaluationHandler(assessmentService, assessmentRepo, incidentRepo, profileRepo, userRepo, cfg.App.URL)
	incidentHandler := handler.NewIncidentHandler(incidentRepo, profileRepo)
	adminHandler := handler.NewAdminHandler(userRepo, profileRepo, documentRepo, configRepo, logbookRepo, libraryRepo, caseRepo, incidentRepo, onboardingService)
	importHandler := handler.NewImportHandler(userRepo, profileRepo)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, db)
	staffOnly := authMiddleware.RolesAllowed(domain.RolePemateri)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": err.Error(),
				},
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.Origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	// API v1 routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authRoutes.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authRoutes.Post("/setup-admin", authHandler.SetupAdmin)

	// Profile routes (me)
	api.Get("/me", authMiddleware.Required(), profileHandler.GetMe)
	api.Patch("/me", authMiddleware.Required(), profileHandler.UpdateMe)
	api.Patch("/me/password", authMiddleware.Required(), profileHandler.UpdatePassword)
	api.Post("/me/avatar", authMiddleware.Required(), profileHandler.UploadAvatar)
	api.Post("/me/role-request", authMiddleware.Required(), profileHandler.RequestRole)
	api.Delete("/me/role-request", authMiddleware.Required(), profileHandler.RevokeRoleRequest)

	// Course routes
	courseRoutes := api.Group("/courses")
	courseRoutes.Get("/", authMiddleware.Optional(), courseHandler.List)
	courseRoutes.Post("/", authMiddleware.Required(), staffOnly, courseHandler.Create)
	courseRoutes.Get("/:id", authMiddleware.Optional(), courseHandler.Get)
	courseRoutes.Patch("/:id", authMiddleware.Required(), staffOnly, courseHandler.Update)
	courseRoutes.Delete("/:id", authMiddleware.Required(), staffOnly, courseHandler.Delete)
	courseRoutes.Post("/:id/enroll", authMiddleware.Required(), courseHandler.Enroll)
	courseRoutes.Post("/:id/modules", authMiddleware.Required(), staffOnly, courseHandler.CreateModule)
	courseRoutes.Patch("/modules/:moduleId", authMiddleware.Required(), staffOnly, courseHandler.UpdateModule)
	courseRoutes.Delete("/modules/:moduleId", authMiddleware.Required(), staffOnly, courseHandler.DeleteModule)
	courseRoutes.Post("/modules/:moduleId/materials", authMiddleware.Required(), staffOnly, courseHandler.CreateMaterial)
	courseRoutes.Delete("/materials/:materialId", authMiddleware.Required(), staffOnly, courseHandler.DeleteMaterial)
	courseRoutes.Get("/materials/:materialId/comments", authMiddleware.Required(), courseHandler.ListComments)
	courseRoutes.Post("/materials/:materialId/comments", authMiddleware.Required(), courseHandler.CreateComment)
	courseRoutes.Delete("/comments/:commentId", authMiddleware.Required(), courseHandler.DeleteComment)
	courseRoutes.Post("/materials/:materialId/submissions", authMiddleware.Required(), courseHandler.SubmitAssignment)
	courseRoutes.Get("/materials/:materialId/submissions", authMiddleware.Required(), staffOnly, courseHandler.ListSubmissions)
	courseRoutes.Patch("/submissions/:submissionId/grade", authMiddleware.Required(), staffOnly, courseHandler.GradeSubmission)

	api.Get("/enrollments", authMiddleware.Required(), courseHandler.MyEnrollments)
	api.Post("/attendance", authMiddleware.Required(), courseHandler.LogAttendance)
	api.Get("/attendance", authMiddleware.Required(), courseHandler.MyAttendance)

	// Library routes
	libraryRoutes := api.Group("/library")
	libraryRoutes.Get("/", authMiddleware.Optional(), libraryHandler.List)
	libraryRoutes.Post("/", authMiddleware.Required(), libraryHandler.Upload)
	libraryRoutes.Get("/mine", authMiddleware.Required(), libraryHandler.MyUploads)
	libraryRoutes.Get("/:id/download", authMiddleware.Required(), libraryHandler.Download)
	libraryRoutes.Delete("/:id", authMiddleware.Required(), libraryHandler.Delete)

	// News routes
	newsRoutes := api.Group("/news")
	newsRoutes.Get("/", newsHandler.List)
	newsRoutes.Get("/:id", newsHandler.Get)
	newsRoutes.Post("/", authMiddleware.Required(), staffOnly, newsHandler.Create)
	newsRoutes.Patch("/:id", authMiddleware.Required(), staffOnly, newsHandler.Update)
	newsRoutes.Delete("/:id", authMiddleware.Required(), staffOnly, newsHandler.Delete)

	// Clinical placement routes
	clinical := api.Group("/clinical", authMiddleware.Required())
	clinical.Post("/register", clinicalHandler.Register)
	clinical.Get("/me", clinicalHandler.MyProfile)
	clinical.Get("/onboarding", clinicalHandler.OnboardingStatus)
	clinical.Get("/documents", clinicalHandler.MyDocuments)
	clinical.Post("/documents", clinicalHandler.UploadDocument)
	clinical.Get("/agreements", clinicalHandler.ListAgreements)
	clinical.Post("/agreements/sign", clinicalHandler.SignAgreement)
	clinical.Get("/elearning", clinicalHandler.RequiredCourses)
	clinical.Get("/pretest/questions", clinicalHandler.PretestQuestions)
	clinical.Post("/pretest", clinicalHandler.TakePretest)
	clinical.Get("/posttest/questions", clinicalHandler.PosttestQuestions)
	clinical.Post("/posttest", clinicalHandler.TakePosttest)

	// Logbook routes
	logbook := api.Group("/logbook", authMiddleware.Required())
	logbook.Get("/", logbookHandler.MyEntries)
	logbook.Post("/", logbookHandler.AddEntry)
	logbook.Get("/progress", logbookHandler.MyProgress)
	logbook.Get("/pending", staffOnly, logbookHandler.PendingValidation)
	logbook.Post("/pin", staffOnly, logbookHandler.SetPIN)
	logbook.Get("/:id", logbookHandler.GetEntry)
	logbook.Post("/:id/validate", staffOnly, logbookHandler.ValidateEntry)

	// Patient case routes
	cases := api.Group("/cases", authMiddleware.Required())
	cases.Get("/", caseHandler.MyCases)
	cases.Post("/", caseHandler.CreateCase)
	cases.Get("/:id", caseHandler.GetCase)
	cases.Post("/:id/updates", caseHandler.AddDailyUpdate)
	cases.Post("/:id/close", caseHandler.CloseCase)

	// Journal routes
	journals := api.Group("/journals", authMiddleware.Required())
	journals.Get("/", caseHandler.MyJournals)
	journals.Post("/", caseHandler.AddJournal)
	journals.Post("/:id/feedback", staffOnly, caseHandler.JournalFeedback)

	// Evaluation routes
	evaluations := api.Group("/evaluations", authMiddleware.Required())
	evaluations.Post("/weekly", evaluationHandler.SubmitWeekly)
	evaluations.Get("/weekly", evaluationHandler.MyWeekly)
	evaluations.Post("/exams", evaluationHandler.SubmitExam)
	evaluations.Get("/exams", evaluationHandler.MyExams)
	evaluations.Patch("/exams/:id/grade", staffOnly, evaluationHandler.GradeExam)
	evaluations.Post("/360", evaluationHandler.SubmitEvaluation360)
	evaluations.Get("/360/:studentId", staffOnly, evaluationHandler.StudentEvaluations)
	evaluations.Post("/feedback", evaluationHandler.SubmitFeedback)

	// Certificate routes
	api.Get("/clinical/certificates/me", authMiddleware.Required(), evaluationHandler.MyCertificate)
	api.Get("/clinical/certificates/verify/:number", evaluationHandler.VerifyCertificate)

	// Incident routes
	incidents := api.Group("/incidents", authMiddleware.Required())
	incidents.Post("/", incidentHandler.Report)
	incidents.Get("/mine", incidentHandler.MyReports)
	incidents.Get("/", staffOnly, incidentHandler.List)
	incidents.Get("/:id", staffOnly, incidentHandler.Get)
	incidents.Patch("/:id", staffOnly, incidentHandler.UpdateStatus)

	// Alumni routes
	api.Put("/alumni/me", authMiddleware.Required(), evaluationHandler.UpdateAlumniProfile)
	api.Get("/alumni/mentors", authMiddleware.Required(), evaluationHandler.Mentors)

	// Supervisor routes
	supervisor := api.Group("/supervisor", authMiddleware.Required(), staffOnly)
	supervisor.Get("/dashboard", supervisorHandler.Dashboard)
	supervisor.Get("/students", supervisorHandler.MyStudents)
	supervisor.Get("/students/:id", supervisorHandler.StudentDetail)

	// Admin routes
	adminRoutes := api.Group("/admin", authMiddleware.Required(), authMiddleware.AdminOnly())

	// Admin - Users
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Post("/users", adminHandler.CreateUser)
	adminRoutes.Patch("/users/:id/role", adminHandler.UpdateUserRole)
	adminRoutes.Delete("/users/:id", adminHandler.DeleteUser)
	adminRoutes.Get("/role-requests", adminHandler.PendingRoleRequests)
	adminRoutes.Post("/role-requests/:id/approve", adminHandler.ApproveRoleRequest)
	adminRoutes.Post("/role-requests/:id/reject", adminHandler.RejectRoleRequest)

	// Admin - Clinical configuration
	adminRoutes.Get("/clinical/config", adminHandler.GetClinicalConfig)
	adminRoutes.Patch("/clinical/config", adminHandler.UpdateClinicalConfig)

	// Admin - Document verification
	adminRoutes.Get("/clinical/documents/pending", adminHandler.PendingDocuments)
	adminRoutes.Post("/clinical/documents/:id/verify", adminHandler.VerifyDocument)

	// Admin - Competency checklist
	adminRoutes.Get("/clinical/competencies", adminHandler.ListCompetencies)
	adminRoutes.Post("/clinical/competencies", adminHandler.CreateCompetency)
	adminRoutes.Delete("/clinical/competencies/:id", adminHandler.DeleteCompetency)

	// Admin - Students
	adminRoutes.Get("/clinical/students", adminHandler.ListStudents)
	adminRoutes.Post("/clinical/students/:id/supervisor", adminHandler.AssignSupervisor)
	adminRoutes.Get("/supervisors", adminHandler.ListSupervisors)
	adminRoutes.Post("/clinical/students/import", importHandler.ImportStudents)
	adminRoutes.Post("/clinical/students/:studentId/certificate", evaluationHandler.IssueCertificate)

	// Admin - Library review
	adminRoutes.Get("/library/pending", libraryHandler.PendingQueue)
	adminRoutes.Post("/library/:id/approve", libraryHandler.Approve)
	adminRoutes.Post("/library/:id/reject", libraryHandler.Reject)

	// Admin - Program feedback
	adminRoutes.Get("/feedback", evaluationHandler.ListFeedback)

	// Admin - Dashboard
	adminRoutes.Get("/dashboard/stats", adminHandler.Dashboard)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
