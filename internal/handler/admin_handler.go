package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
	"golang.org/x/crypto/bcrypt"
)

type AdminHandler struct {
	userRepo     *repository.UserRepository
	profileRepo  *repository.ProfileRepository
	documentRepo *repository.DocumentRepository
	configRepo   *repository.ConfigRepository
	logbookRepo  *repository.LogbookRepository
	libraryRepo  *repository.LibraryRepository
	caseRepo     *repository.CaseRepository
	incidentRepo *repository.IncidentRepository
	onboarding   *service.OnboardingService
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	documentRepo *repository.DocumentRepository,
	configRepo *repository.ConfigRepository,
	logbookRepo *repository.LogbookRepository,
	libraryRepo *repository.LibraryRepository,
	caseRepo *repository.CaseRepository,
	incidentRepo *repository.IncidentRepository,
	onboarding *service.OnboardingService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		documentRepo: documentRepo,
		configRepo:   configRepo,
		logbookRepo:  logbookRepo,
		libraryRepo:  libraryRepo,
		caseRepo:     caseRepo,
		incidentRepo: incidentRepo,
		onboarding:   onboarding,
	}
}

// User management

func toAdminUserDTO(user *domain.User) dto.AdminUserDTO {
	d := dto.AdminUserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Division:  user.Division,
		CreatedAt: user.CreatedAt,
	}
	if user.PendingRole != nil {
		pending := string(*user.PendingRole)
		d.PendingRole = &pending
	}
	return d
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	users, total, err := h.userRepo.List(page, perPage, c.Query("role"))
	if err != nil {
		return internalError(c)
	}

	items := make([]dto.AdminUserDTO, 0, len(users))
	for i := range users {
		items = append(items, toAdminUserDTO(&users[i]))
	}
	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if !parseBody(c, &req) {
		return nil
	}

	if taken, err := h.userRepo.UsernameExists(req.Username); err != nil {
		return internalError(c)
	} else if taken {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Username sudah digunakan",
		))
	}
	if taken, err := h.userRepo.EmailExists(req.Email); err != nil {
		return internalError(c)
	} else if taken {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Email sudah terdaftar",
		))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.UserRole(req.Role),
		Division:     req.Division,
	}
	if err := h.userRepo.Create(user); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(toAdminUserDTO(user), "User berhasil dibuat"))
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	user, err := h.userRepo.FindByID(id)
	if err != nil {
		return notFound(c, "User tidak ditemukan")
	}

	var req dto.AdminUpdateRoleRequest
	if !parseBody(c, &req) {
		return nil
	}

	user.Role = domain.UserRole(req.Role)
	user.PendingRole = nil
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toAdminUserDTO(user), "Role berhasil diubah"))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	callerID := middleware.GetUserID(c)
	if callerID != nil && *callerID == id {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Tidak bisa menghapus akun sendiri",
		))
	}

	if _, err := h.userRepo.FindByID(id); err != nil {
		return notFound(c, "User tidak ditemukan")
	}
	if err := h.userRepo.Delete(id); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "User berhasil dihapus"))
}

func (h *AdminHandler) PendingRoleRequests(c *fiber.Ctx) error {
	users, err := h.userRepo.ListPendingRoleRequests()
	if err != nil {
		return internalError(c)
	}
	items := make([]dto.AdminUserDTO, 0, len(users))
	for i := range users {
		items = append(items, toAdminUserDTO(&users[i]))
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

func (h *AdminHandler) ApproveRoleRequest(c *fiber.Ctx) error {
	return h.resolveRoleRequest(c, true)
}

func (h *AdminHandler) RejectRoleRequest(c *fiber.Ctx) error {
	return h.resolveRoleRequest(c, false)
}

func (h *AdminHandler) resolveRoleRequest(c *fiber.Ctx, approve bool) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	user, err := h.userRepo.FindByID(id)
	if err != nil {
		return notFound(c, "User tidak ditemukan")
	}
	if user.PendingRole == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "User tidak memiliki permintaan role",
		))
	}

	message := "Permintaan role ditolak"
	if approve {
		user.Role = *user.PendingRole
		message = "Permintaan role disetujui"
	}
	user.PendingRole = nil
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toAdminUserDTO(user), message))
}

// Clinical configuration

func (h *AdminHandler) GetClinicalConfig(c *fiber.Ctx) error {
	config, err := h.configRepo.GetOrCreate()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(config, ""))
}

// UpdateClinicalConfig applies a partial config update. Each provided section
// replaces its stored counterpart wholesale; a malformed entry rejects the
// whole request.
func (h *AdminHandler) UpdateClinicalConfig(c *fiber.Ctx) error {
	var req dto.UpdateClinicalConfigRequest
	if !parseBody(c, &req) {
		return nil
	}

	config, err := h.configRepo.GetOrCreate()
	if err != nil {
		return internalError(c)
	}

	if req.Documents != nil {
		rules := make(domain.DocumentRuleList, 0, len(*req.Documents))
		for _, p := range *req.Documents {
			if err := validate.Struct(p); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
					"VALIDATION_ERROR", "Aturan dokumen tidak valid", validationDetails(err)...,
				))
			}
			rules = append(rules, domain.DocumentRule{
				Type:               p.Type,
				Label:              p.Label,
				RequiresExpiration: p.RequiresExpiration,
			})
		}
		config.Documents = rules
	}

	if req.Agreements != nil {
		templates := make(domain.AgreementTemplateList, 0, len(*req.Agreements))
		for _, p := range *req.Agreements {
			if err := validate.Struct(p); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
					"VALIDATION_ERROR", "Template perjanjian tidak valid", validationDetails(err)...,
				))
			}
			templates = append(templates, domain.AgreementTemplate{
				Type:  p.Type,
				Title: p.Title,
				Text:  p.Text,
			})
		}
		config.Agreements = templates
	}

	if req.RequiredCourseIDs != nil {
		config.RequiredCourseIDs = domain.UUIDList(*req.RequiredCourseIDs)
	}

	if req.PretestQuestions != nil {
		questions, err := questionPayloadList(*req.PretestQuestions)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
				"VALIDATION_ERROR", "Soal pre-test tidak valid", validationDetails(err)...,
			))
		}
		config.PretestQuestions = questions
	}

	if req.PosttestQuestions != nil {
		questions, err := questionPayloadList(*req.PosttestQuestions)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
				"VALIDATION_ERROR", "Soal post-test tidak valid", validationDetails(err)...,
			))
		}
		config.PosttestQuestions = questions
	}

	updatedBy := middleware.GetUserID(c)
	if err := h.configRepo.Update(config, *updatedBy); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(config, "Konfigurasi klinik diperbarui"))
}

func questionPayloadList(payloads []dto.QuestionPayload) (domain.QuestionList, error) {
	questions := make(domain.QuestionList, 0, len(payloads))
	for i, p := range payloads {
		if err := validate.Struct(p); err != nil {
			return nil, err
		}
		id := p.ID
		if id == 0 {
			id = i + 1
		}
		questions = append(questions, domain.Question{
			ID:            id,
			Question:      p.Question,
			Options:       p.Options,
			CorrectOption: p.CorrectOption,
		})
	}
	return questions, nil
}

// Document verification

func (h *AdminHandler) PendingDocuments(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	docs, total, err := h.documentRepo.ListPending(page, perPage)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessWithMeta(docs, paginationMeta(page, perPage, total)))
}

func (h *AdminHandler) VerifyDocument(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.VerifyDocumentRequest
	if !parseBody(c, &req) {
		return nil
	}

	reviewerID := middleware.GetUserID(c)
	doc, err := h.onboarding.VerifyDocument(id, *reviewerID, req)
	if err != nil {
		return serviceError(c, err)
	}

	message := "Dokumen diverifikasi"
	if doc.Status == domain.DocumentRejected {
		message = "Dokumen ditolak"
	}
	return c.JSON(dto.SuccessResponse(doc, message))
}

// Competency checklist

func (h *AdminHandler) CreateCompetency(c *fiber.Ctx) error {
	var req dto.CreateCompetencyRequest
	if !parseBody(c, &req) {
		return nil
	}

	item := &domain.CompetencyChecklist{
		Program:             req.Program,
		CompetencyName:      req.CompetencyName,
		CompetencyCategory:  req.CompetencyCategory,
		Description:         req.Description,
		MinimumObservations: req.MinimumObservations,
		MinimumAssists:      req.MinimumAssists,
		MinimumIndependent:  req.MinimumIndependent,
		LearningObjectives:  req.LearningObjectives,
		IsMandatory:         true,
	}
	if req.IsMandatory != nil {
		item.IsMandatory = *req.IsMandatory
	}

	if err := h.logbookRepo.CreateChecklist(item); err != nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Kompetensi dengan nama tersebut sudah ada untuk program ini",
		))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(item, "Kompetensi berhasil ditambahkan"))
}

func (h *AdminHandler) ListCompetencies(c *fiber.Ctx) error {
	items, err := h.logbookRepo.ListChecklistByProgram(c.Query("program"))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

func (h *AdminHandler) DeleteCompetency(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	if _, err := h.logbookRepo.FindChecklistByID(id); err != nil {
		return notFound(c, "Kompetensi tidak ditemukan")
	}
	if err := h.logbookRepo.DeleteChecklist(id); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Kompetensi berhasil dihapus"))
}

// Student management

func (h *AdminHandler) ListStudents(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	profiles, total, err := h.profileRepo.List(page, perPage)
	if err != nil {
		return internalError(c)
	}
	items := make([]dto.StudentProfileDTO, 0, len(profiles))
	for i := range profiles {
		items = append(items, toStudentProfileDTO(&profiles[i]))
	}
	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

func (h *AdminHandler) AssignSupervisor(c *fiber.Ctx) error {
	profileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	profile, err := h.profileRepo.FindByID(profileID)
	if err != nil {
		return notFound(c, "Profil mahasiswa tidak ditemukan")
	}

	var req dto.AssignSupervisorRequest
	if !parseBody(c, &req) {
		return nil
	}

	supervisor, err := h.userRepo.FindByID(req.SupervisorID)
	if err != nil {
		return notFound(c, "Supervisor tidak ditemukan")
	}
	if !supervisor.CanManageCourses() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "User tersebut bukan pembimbing klinik",
		))
	}

	profile.SupervisorID = &supervisor.ID
	if req.CurrentUnit != nil {
		profile.CurrentUnit = req.CurrentUnit
	}
	if err := h.profileRepo.Update(profile); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toStudentProfileDTO(profile), "Pembimbing berhasil ditetapkan"))
}

func (h *AdminHandler) ListSupervisors(c *fiber.Ctx) error {
	supervisors, err := h.userRepo.ListSupervisors()
	if err != nil {
		return internalError(c)
	}
	items := make([]dto.AdminUserDTO, 0, len(supervisors))
	for i := range supervisors {
		items = append(items, toAdminUserDTO(&supervisors[i]))
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

// Dashboard

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var stats dto.DashboardStatsDTO
	var err error

	if stats.TotalUsers, err = h.userRepo.Count(); err != nil {
		return internalError(c)
	}
	if stats.TotalStudents, err = h.profileRepo.Count(); err != nil {
		return internalError(c)
	}
	if stats.OnboardingComplete, err = h.profileRepo.CountOnboardingComplete(); err != nil {
		return internalError(c)
	}
	if stats.PendingDocuments, err = h.documentRepo.CountPending(); err != nil {
		return internalError(c)
	}
	if stats.PendingLibraryBooks, err = h.libraryRepo.CountPending(); err != nil {
		return internalError(c)
	}
	if stats.ActiveCases, err = h.caseRepo.CountActive(); err != nil {
		return internalError(c)
	}
	if stats.OpenIncidents, err = h.incidentRepo.CountOpen(); err != nil {
		return internalError(c)
	}

	pending, err := h.userRepo.ListPendingRoleRequests()
	if err != nil {
		return internalError(c)
	}
	stats.PendingRoleRequests = int64(len(pending))

	return c.JSON(dto.SuccessResponse(stats, ""))
}
