package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgc/inscriptions/internal/app/models"
	"github.com/mgc/inscriptions/internal/app/models/dto"
	"github.com/mgc/inscriptions/internal/app/services"
	"github.com/mgc/inscriptions/internal/pkg/logger"
)

// telegramDataHeader carries the raw WebApp init-data string.
const telegramDataHeader = "X-Telegram-Data"

// adminDeniedMessage is the fixed message returned on a password mismatch.
const adminDeniedMessage = "Accès refusé. Mot de passe incorrect."

// AdminCredentials holds the listing-endpoint credential. When Hash is set
// it takes precedence over the plain password.
type AdminCredentials struct {
	Password string
	Hash     string
}

// StudentController handles registration endpoints
type StudentController struct {
	studentService services.StudentService
	admin          AdminCredentials
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, admin AdminCredentials) *StudentController {
	return &StudentController{
		studentService: studentService,
		admin:          admin,
	}
}

// CreateStudent handles POST /api/students
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.FailureResponse{
			Success: false,
			Message: "Requête invalide",
		})
		return
	}

	student, err := c.studentService.Register(ctx.Request.Context(), &req, ctx.GetHeader(telegramDataHeader))
	if err != nil {
		logger.Error().Err(err).Msg("Registration failed")
		ctx.JSON(http.StatusInternalServerError, dto.FailureResponse{
			Success: false,
			Message: "Erreur enregistrement",
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.CreateStudentResponse{
		Success: true,
		ID:      student.ReadableID,
	})
}

// CheckDuplicates handles POST /api/check-duplicates
func (c *StudentController) CheckDuplicates(ctx *gin.Context) {
	var req dto.CheckDuplicatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.FailureResponse{
			Success: false,
			Message: "Requête invalide",
		})
		return
	}

	candidates, err := c.studentService.CheckDuplicates(ctx.Request.Context(), req.NomComplet, req.Telephone)
	if err != nil {
		logger.Error().Err(err).Msg("Duplicate check failed")
		ctx.JSON(http.StatusInternalServerError, dto.FailureResponse{
			Success: false,
			Message: "Erreur recherche doublons",
		})
		return
	}

	if candidates == nil {
		candidates = []*models.Student{}
	}
	ctx.JSON(http.StatusOK, dto.CheckDuplicatesResponse{
		Found:      len(candidates) > 0,
		Candidates: candidates,
	})
}

// ListStudents handles GET /api/students. The password travels as a plain
// query parameter; the comparison itself is constant-time.
func (c *StudentController) ListStudents(ctx *gin.Context) {
	if !c.adminPasswordMatches(ctx.Query("pwd")) {
		ctx.JSON(http.StatusForbidden, dto.AdminErrorResponse{
			Error: adminDeniedMessage,
		})
		return
	}

	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Listing students failed")
		ctx.JSON(http.StatusInternalServerError, dto.AdminErrorResponse{
			Error: "Erreur serveur",
		})
		return
	}

	ctx.JSON(http.StatusOK, students)
}

func (c *StudentController) adminPasswordMatches(pwd string) bool {
	if pwd == "" {
		return false
	}
	if c.admin.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.admin.Hash), []byte(pwd)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.admin.Password), []byte(pwd)) == 1
}
