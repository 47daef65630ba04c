package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RolePemateri UserRole = "pemateri"
	RoleUser     UserRole = "user"
)

// ValidRequestableRole reports whether a role can be requested or revoked by
// a user through account settings.
func ValidRequestableRole(r UserRole) bool {
	return r == RolePemateri || r == RoleAdmin
}

type CourseCategory string

const (
	CategoryMedical  CourseCategory = "medical"
	CategoryAdmin    CourseCategory = "admin"
	CategoryIT       CourseCategory = "it"
	CategoryClinical CourseCategory = "clinical"
)

type MaterialType string

const (
	MaterialPDF        MaterialType = "pdf"
	MaterialVideo      MaterialType = "video"
	MaterialAssignment MaterialType = "assignment"
)

type LibraryStatus string

const (
	LibraryPending  LibraryStatus = "pending"
	LibraryApproved LibraryStatus = "approved"
	LibraryRejected LibraryStatus = "rejected"
)

// Base model shared by most entities
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// User
type User struct {
	BaseModel
	Username     string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	PendingRole  *UserRole `gorm:"type:varchar(20)" json:"pending_role,omitempty"`
	Division     *string   `gorm:"type:varchar(100)" json:"division,omitempty"`
	ProfileImage *string   `gorm:"type:text" json:"profile_image,omitempty"`
	Bio          *string   `gorm:"type:text" json:"bio,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsPemateri() bool { return u.Role == RolePemateri }

// CanManageCourses reports whether the user may create courses and validate
// clinical logbook entries.
func (u *User) CanManageCourses() bool {
	return u.Role == RoleAdmin || u.Role == RolePemateri
}

// Course
type Course struct {
	BaseModel
	Title        string         `gorm:"type:varchar(255);not null;index" json:"title"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	ThumbnailURL *string        `gorm:"type:text" json:"thumbnail_url,omitempty"`
	InstructorID uuid.UUID      `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Category     CourseCategory `gorm:"type:varchar(50);not null;default:'medical';index" json:"category"`
	Instructor   *User          `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Modules      []CourseModule `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (Course) TableName() string { return "courses" }

// CourseModule - a "pertemuan" within a course
type CourseModule struct {
	BaseModel
	CourseID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"course_id"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Description *string          `gorm:"type:text" json:"description,omitempty"`
	ImagePath   *string          `gorm:"type:text" json:"image_path,omitempty"`
	OrderIndex  int              `gorm:"not null;default:0" json:"order_index"`
	Materials   []CourseMaterial `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
}

func (CourseModule) TableName() string { return "course_modules" }

// CourseMaterial
type CourseMaterial struct {
	BaseModel
	ModuleID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"module_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	ImagePath   *string      `gorm:"type:text" json:"image_path,omitempty"`
	FilePath    *string      `gorm:"type:text" json:"file_path,omitempty"`
	Type        MaterialType `gorm:"type:varchar(50);not null;default:'pdf'" json:"type"`
}

func (CourseMaterial) TableName() string { return "course_materials" }

// CourseEnrollment - unique per (user, course)
type CourseEnrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_course" json:"user_id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"enrolled_at"`
	Course     *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CourseEnrollment) TableName() string { return "course_enrollments" }

// AttendanceLog - daily presence, optionally tied to a course
type AttendanceLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID  *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Timestamp time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
	Status    string     `gorm:"type:varchar(20);not null;default:'present'" json:"status"`
}

func (AttendanceLog) TableName() string { return "attendance_logs" }

// MaterialComment
type MaterialComment struct {
	BaseModel
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (MaterialComment) TableName() string { return "material_comments" }

// MaterialSubmission - one submission per (user, material)
type MaterialSubmission struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_user_material" json:"material_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_user_material" json:"user_id"`
	FilePath    *string    `gorm:"type:text" json:"file_path,omitempty"`
	TextContent *string    `gorm:"type:text" json:"text_content,omitempty"`
	Score       *int       `json:"score,omitempty"`
	Feedback    *string    `gorm:"type:text" json:"feedback,omitempty"`
	SubmittedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (MaterialSubmission) TableName() string { return "material_submissions" }

// LibraryBook - shared document library, user uploads pend admin review
type LibraryBook struct {
	BaseModel
	UploaderID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	FilePath    string        `gorm:"type:text;not null" json:"file_path"`
	Status      LibraryStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Uploader    *User         `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}

func (LibraryBook) TableName() string { return "library_books" }

// News
type News struct {
	BaseModel
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImagePath *string   `gorm:"type:text" json:"image_path,omitempty"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (News) TableName() string { return "news" }

// RefreshToken
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	IsRevoked bool       `gorm:"not null;default:false" json:"is_revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// TokenBlacklist
type TokenBlacklist struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JTI           string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"jti"`
	UserID        *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	BlacklistedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"blacklisted_at"`
	Reason        *string    `gorm:"type:varchar(100)" json:"reason,omitempty"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

// ============================================================================
// HOOKS FOR UUID GENERATION
// ============================================================================

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&b.ID)
	return nil
}

func (m *CourseEnrollment) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *AttendanceLog) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *MaterialSubmission) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *TokenBlacklist) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}
