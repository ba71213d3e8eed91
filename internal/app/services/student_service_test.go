package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/mgc/inscriptions/internal/app/models"
	"github.com/mgc/inscriptions/internal/app/models/dto"
	"github.com/mgc/inscriptions/internal/pkg/apperrors"
)

var ticketRE = regexp.MustCompile(`^[1-9][0-9]{5}$`)

const testBotToken = "123456:TEST-TOKEN"

// fakeStore records inserts and serves canned duplicate/listing results.
type fakeStore struct {
	inserted       []*models.Student
	insertErrs     []error // consumed one per Insert call, nil when exhausted
	duplicates     []*models.Student
	duplicateCalls int
}

func (f *fakeStore) Insert(_ context.Context, student *models.Student) error {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	copied := *student
	f.inserted = append(f.inserted, &copied)
	return nil
}

func (f *fakeStore) FindDuplicates(_ context.Context, _, _ string) ([]*models.Student, error) {
	f.duplicateCalls++
	return f.duplicates, nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]*models.Student, error) {
	return f.inserted, nil
}

// fakeNotifier signals each delivery attempt on a channel.
type fakeNotifier struct {
	err   error
	calls chan int64
}

func newFakeNotifier(err error) *fakeNotifier {
	return &fakeNotifier{err: err, calls: make(chan int64, 1)}
}

func (f *fakeNotifier) NotifyRegistration(_ context.Context, chatID int64, _, _ string) error {
	f.calls <- chatID
	return f.err
}

// signedInitData builds a valid init-data payload for testBotToken carrying
// the given Telegram user ID.
func signedInitData(t *testing.T, userID string) string {
	t.Helper()

	userJSON := `{"id":` + userID + `,"first_name":"Test"}`
	dataCheckString := "auth_date=1700000000\nuser=" + userJSON

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))

	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("user", userJSON)
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestRegister_MinimalSubmission(t *testing.T) {
	store := &fakeStore{}
	svc := NewStudentService(store, nil, "")

	student, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean Dupont"}, "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if !ticketRE.MatchString(student.ReadableID) {
		t.Errorf("ReadableID %q does not match ^[1-9][0-9]{5}$", student.ReadableID)
	}
	if student.CreatedByTelegramID != nil {
		t.Errorf("CreatedByTelegramID = %v, want nil for an unattributed submission", *student.CreatedByTelegramID)
	}
	if student.DateAjout.IsZero() {
		t.Error("DateAjout was not set")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(store.inserted))
	}
}

func TestRegister_MissingName(t *testing.T) {
	store := &fakeStore{}
	svc := NewStudentService(store, nil, "")

	_, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "  "}, "")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("Register() error = %v, want ErrValidationFailed", err)
	}
	if len(store.inserted) != 0 {
		t.Error("record was inserted despite a missing name")
	}
}

func TestRegister_AttributesVerifiedUser(t *testing.T) {
	store := &fakeStore{}
	notifier := newFakeNotifier(nil)
	svc := NewStudentService(store, notifier, testBotToken)

	student, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean"}, signedInitData(t, "74500665"))
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if student.CreatedByTelegramID == nil || *student.CreatedByTelegramID != 74500665 {
		t.Fatalf("CreatedByTelegramID = %v, want 74500665", student.CreatedByTelegramID)
	}

	select {
	case chatID := <-notifier.calls:
		if chatID != 74500665 {
			t.Errorf("notification chat ID = %d, want 74500665", chatID)
		}
	case <-time.After(2 * time.Second):
		t.Error("confirmation was never sent")
	}
}

func TestRegister_InvalidSignatureStillAccepted(t *testing.T) {
	store := &fakeStore{}
	svc := NewStudentService(store, nil, testBotToken)

	initData := signedInitData(t, "74500665") + "&extra=tamper"
	student, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean"}, initData)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if student.CreatedByTelegramID != nil {
		t.Error("a tampered payload must not attribute a user")
	}
	if len(store.inserted) != 1 {
		t.Error("an unverified submission must still be stored")
	}
}

func TestRegister_NotificationFailureSwallowed(t *testing.T) {
	store := &fakeStore{}
	notifier := newFakeNotifier(errors.New("chat not found"))
	svc := NewStudentService(store, notifier, testBotToken)

	_, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean"}, signedInitData(t, "42"))
	if err != nil {
		t.Fatalf("Register() error = %v, want nil despite a failing notification", err)
	}

	select {
	case <-notifier.calls:
	case <-time.After(2 * time.Second):
		t.Error("notification was never attempted")
	}
}

func TestRegister_TicketCollisionRetries(t *testing.T) {
	store := &fakeStore{insertErrs: []error{apperrors.ErrDuplicateTicketID}}
	svc := NewStudentService(store, nil, "")

	student, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean"}, "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !ticketRE.MatchString(student.ReadableID) {
		t.Errorf("ReadableID %q invalid after a collision retry", student.ReadableID)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(store.inserted))
	}
}

func TestRegister_TicketCollisionExhausted(t *testing.T) {
	store := &fakeStore{insertErrs: []error{
		apperrors.ErrDuplicateTicketID,
		apperrors.ErrDuplicateTicketID,
		apperrors.ErrDuplicateTicketID,
	}}
	svc := NewStudentService(store, nil, "")

	_, err := svc.Register(context.Background(), &dto.CreateStudentRequest{NomComplet: "Jean"}, "")
	if !errors.Is(err, apperrors.ErrDuplicateTicketID) {
		t.Errorf("Register() error = %v, want ErrDuplicateTicketID after exhausted retries", err)
	}
}

func TestCheckDuplicates_EmptyCriteria(t *testing.T) {
	store := &fakeStore{duplicates: []*models.Student{{NomComplet: "ghost"}}}
	svc := NewStudentService(store, nil, "")

	candidates, err := svc.CheckDuplicates(context.Background(), "", "")
	if err != nil {
		t.Fatalf("CheckDuplicates() error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0 for empty criteria", len(candidates))
	}
	if store.duplicateCalls != 0 {
		t.Errorf("storage was queried %d times, want 0", store.duplicateCalls)
	}
}

func TestCheckDuplicates_ByPhone(t *testing.T) {
	match := &models.Student{NomComplet: "Jean", Telephone: "0101"}
	store := &fakeStore{duplicates: []*models.Student{match}}
	svc := NewStudentService(store, nil, "")

	candidates, err := svc.CheckDuplicates(context.Background(), "", "0101")
	if err != nil {
		t.Fatalf("CheckDuplicates() error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Telephone != "0101" {
		t.Errorf("candidates = %v, want the stored record", candidates)
	}
	if store.duplicateCalls != 1 {
		t.Errorf("storage was queried %d times, want 1", store.duplicateCalls)
	}
}

func TestNewTicketID_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := newTicketID()
		if !ticketRE.MatchString(id) {
			t.Fatalf("newTicketID() = %q, want a 6-digit value in [100000, 999999]", id)
		}
	}
}
