package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mgc/inscriptions/internal/app/models"
	"github.com/mgc/inscriptions/internal/app/models/dto"
	"github.com/mgc/inscriptions/internal/pkg/apperrors"
	"github.com/mgc/inscriptions/internal/pkg/logger"
	"github.com/mgc/inscriptions/internal/pkg/webapp"
)

// ticketIDAttempts bounds the regenerate-on-collision loop for readable IDs.
const ticketIDAttempts = 3

// notifyTimeout bounds the background confirmation send.
const notifyTimeout = 10 * time.Second

// StudentStore is the persistence surface the service needs.
type StudentStore interface {
	Insert(ctx context.Context, student *models.Student) error
	FindDuplicates(ctx context.Context, nomComplet, telephone string) ([]*models.Student, error)
	FindAll(ctx context.Context) ([]*models.Student, error)
}

// Notifier delivers the registration confirmation to a Telegram user.
type Notifier interface {
	NotifyRegistration(ctx context.Context, chatID int64, nomComplet, ticketID string) error
}

// StudentService defines the interface for registration operations
type StudentService interface {
	Register(ctx context.Context, req *dto.CreateStudentRequest, initData string) (*models.Student, error)
	CheckDuplicates(ctx context.Context, nomComplet, telephone string) ([]*models.Student, error)
	ListStudents(ctx context.Context) ([]*models.Student, error)
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	store    StudentStore
	notifier Notifier
	botToken string
}

// NewStudentService creates a new student service instance. notifier may be
// nil when no bot is configured.
func NewStudentService(store StudentStore, notifier Notifier, botToken string) StudentService {
	return &studentServiceImpl{
		store:    store,
		notifier: notifier,
		botToken: botToken,
	}
}

// Register stores a submission and, when it was attributed to a verified
// Telegram user, sends the confirmation message in the background. An
// unverified or absent signature never rejects the submission.
func (s *studentServiceImpl) Register(ctx context.Context, req *dto.CreateStudentRequest, initData string) (*models.Student, error) {
	if strings.TrimSpace(req.NomComplet) == "" {
		return nil, fmt.Errorf("%w: nomComplet is required", apperrors.ErrValidationFailed)
	}

	telegramID := s.attributeUser(initData)

	student := &models.Student{
		NomComplet:          req.NomComplet,
		Telephone:           req.Telephone,
		DateNaissance:       req.DateNaissance,
		Adresse:             req.Adresse,
		Eglise:              req.Eglise,
		Profession:          req.Profession,
		Option:              req.Option,
		IDApp:               req.IDApp,
		NomTree:             req.NomTree,
		TelTree:             req.TelTree,
		Liaison:             req.Liaison,
		Departement:         req.Departement,
		CreatedByTelegramID: telegramID,
		DateAjout:           time.Now().UTC(),
	}

	if err := s.insertWithFreshTicketID(ctx, student); err != nil {
		return nil, err
	}

	logger.Info().Str("nomComplet", student.NomComplet).Str("ticketId", student.ReadableID).Msg("Student saved")

	if s.notifier != nil && telegramID != nil {
		chatID := *telegramID
		name := student.NomComplet
		ticket := student.ReadableID
		// Delivery never affects the HTTP outcome; failures are logged
		// and swallowed.
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.notifier.NotifyRegistration(nctx, chatID, name, ticket); err != nil {
				logger.Error().Err(err).Int64("chatId", chatID).Msg("Confirmation send failed")
			}
		}()
	}

	return student, nil
}

// insertWithFreshTicketID generates a readable ID and inserts the document,
// regenerating on a unique-index collision up to ticketIDAttempts times.
func (s *studentServiceImpl) insertWithFreshTicketID(ctx context.Context, student *models.Student) error {
	var err error
	for attempt := 0; attempt < ticketIDAttempts; attempt++ {
		student.ReadableID = newTicketID()
		err = s.store.Insert(ctx, student)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrDuplicateTicketID) {
			return err
		}
		logger.Warn().Str("ticketId", student.ReadableID).Msg("Ticket ID collision, regenerating")
	}
	return err
}

// attributeUser verifies the init-data payload and returns the embedded user
// ID, or nil when the submission cannot be attributed.
func (s *studentServiceImpl) attributeUser(initData string) *int64 {
	if initData == "" || s.botToken == "" {
		logger.Warn().Msg("Submission outside Telegram or without signature")
		return nil
	}

	if !webapp.Verify(initData, s.botToken) {
		logger.Warn().Msg("Submission with invalid Telegram signature")
		return nil
	}

	user, err := webapp.User(initData)
	if err != nil {
		logger.Warn().Err(err).Msg("Verified payload carried no parsable user")
		return nil
	}

	logger.Info().Int64("telegramId", user.ID).Str("firstName", user.FirstName).Msg("Submission by verified Telegram user")
	return &user.ID
}

// CheckDuplicates returns candidate records matching the supplied criteria.
// With both criteria empty it reports no candidates without querying.
func (s *studentServiceImpl) CheckDuplicates(ctx context.Context, nomComplet, telephone string) ([]*models.Student, error) {
	if nomComplet == "" && telephone == "" {
		return nil, nil
	}
	return s.store.FindDuplicates(ctx, nomComplet, telephone)
}

// ListStudents returns all records, newest first.
func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.store.FindAll(ctx)
}

// newTicketID renders a random integer in [100000, 999999] as a string.
func newTicketID() string {
	return fmt.Sprintf("%d", 100000+rand.Intn(900000))
}
