package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskflow/marketplace-api/internal/models"
)

// newTestDB opens an isolated in-memory database. A single connection keeps
// concurrent transactions serialized the same way the production database's
// row locks do.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TaskCategory{},
		&models.Task{},
		&models.Proposal{},
		&models.Payment{},
		&models.Notification{},
	))
	return db
}

// recordingMailer captures sent mail for assertions.
type recordingMailer struct {
	mu    sync.Mutex
	sends []sentMail
}

type sentMail struct {
	To      string
	Subject string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, sentMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sends))
	copy(out, m.sends)
	return out
}

// stubProcessor returns canned checkout sessions and verified events.
type stubProcessor struct {
	session    *CheckoutSession
	sessionErr error

	event    *ProcessorEvent
	eventErr error
}

func (p *stubProcessor) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	if p.session != nil {
		return p.session, nil
	}
	return &CheckoutSession{SessionID: "cs_test", CheckoutURL: "https://checkout.example/cs_test"}, nil
}

func (p *stubProcessor) VerifyEvent(payload []byte, signature string) (*ProcessorEvent, error) {
	if p.eventErr != nil {
		return nil, p.eventErr
	}
	return p.event, nil
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, clientID uint64, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:    "Build a landing page",
		Status:   status,
		Deadline: time.Now().AddDate(0, 0, 14).UTC().Truncate(24 * time.Hour),
		ClientID: clientID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func createProposal(t *testing.T, db *gorm.DB, taskID, freelancerID uint64, status models.ProposalStatus, bid string) *models.Proposal {
	t.Helper()
	amount, err := decimal.NewFromString(bid)
	require.NoError(t, err)
	proposal := &models.Proposal{
		CoverLetter:  "I can do this",
		BidAmount:    amount,
		SubmittedAt:  time.Now(),
		Status:       status,
		TaskID:       taskID,
		FreelancerID: freelancerID,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}
