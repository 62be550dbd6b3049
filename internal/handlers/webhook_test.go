package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
	"github.com/taskflow/marketplace-api/internal/services"
)

type fakeProcessor struct {
	event    *services.ProcessorEvent
	eventErr error
}

func (p *fakeProcessor) CreateCheckoutSession(ctx context.Context, params services.CheckoutParams) (*services.CheckoutSession, error) {
	return &services.CheckoutSession{SessionID: "cs_test", CheckoutURL: "https://checkout.example"}, nil
}

func (p *fakeProcessor) VerifyEvent(payload []byte, signature string) (*services.ProcessorEvent, error) {
	if p.eventErr != nil {
		return nil, p.eventErr
	}
	return p.event, nil
}

type nullMailer struct{}

func (nullMailer) Send(to, subject, body string) error { return nil }

type webhookFixture struct {
	db        *gorm.DB
	processor *fakeProcessor
	router    *gin.Engine

	client     *models.User
	freelancer *models.User
	task       *models.Task
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.TaskCategory{}, &models.Task{},
		&models.Proposal{}, &models.Payment{}, &models.Notification{},
	))

	f := &webhookFixture{db: db, processor: &fakeProcessor{}}

	f.client = &models.User{Name: "c", Email: "c@example.com", PasswordHash: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(f.client).Error)
	f.freelancer = &models.User{Name: "f", Email: "f@example.com", PasswordHash: "x", Role: models.RoleFreelancer}
	require.NoError(t, db.Create(f.freelancer).Error)

	f.task = &models.Task{
		Title:        "Webhook target",
		Status:       models.TaskStatusInProgress,
		Deadline:     time.Now().AddDate(0, 1, 0),
		ClientID:     f.client.ID,
		FreelancerID: &f.freelancer.ID,
	}
	require.NoError(t, db.Create(f.task).Error)

	notifications := services.NewNotificationService(repository.NewGormNotificationRepository(db))
	paymentService := services.NewPaymentService(
		repository.NewGormPaymentRepository(db),
		repository.NewGormTaskRepository(db),
		repository.NewGormProposalRepository(db),
		notifications, nullMailer{}, services.SyncDispatcher{}, f.processor,
		"usd", decimal.NewFromInt(15),
	)

	f.router = gin.New()
	f.router.POST("/webhooks/payments", NewWebhookHandler(paymentService).HandleProcessorEvent)
	return f
}

func (f *webhookFixture) deliver(body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestWebhookSettledEvent(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.event = &services.ProcessorEvent{
		Kind:         services.EventCheckoutCompleted,
		EventID:      "evt_1",
		SessionID:    "cs_1",
		TaskID:       f.task.ID,
		ClientID:     f.client.ID,
		FreelancerID: f.freelancer.ID,
		AmountMinor:  25000,
		Currency:     "usd",
	}

	w := f.deliver(`{"id":"evt_1"}`, "t=1,v1=valid")
	require.Equal(t, http.StatusOK, w.Code)

	var payment models.Payment
	require.NoError(t, f.db.Where("task_id = ?", f.task.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusHeld, payment.Status)
}

func TestWebhookReplayReturnsOK(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.event = &services.ProcessorEvent{
		Kind:         services.EventCheckoutCompleted,
		EventID:      "evt_1",
		SessionID:    "cs_1",
		TaskID:       f.task.ID,
		ClientID:     f.client.ID,
		FreelancerID: f.freelancer.ID,
		AmountMinor:  25000,
		Currency:     "usd",
	}

	require.Equal(t, http.StatusOK, f.deliver(`{}`, "sig").Code)
	require.Equal(t, http.StatusOK, f.deliver(`{}`, "sig").Code)

	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWebhookBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.eventErr = services.ErrInvalidSignature

	w := f.deliver(`{}`, "t=1,v1=garbage")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookMissingMetadata(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.eventErr = services.ErrInvalidMetadata

	w := f.deliver(`{}`, "sig")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownTask(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.event = &services.ProcessorEvent{
		Kind:         services.EventCheckoutCompleted,
		EventID:      "evt_1",
		SessionID:    "cs_1",
		TaskID:       999999,
		ClientID:     f.client.ID,
		FreelancerID: f.freelancer.ID,
		AmountMinor:  25000,
		Currency:     "usd",
	}

	w := f.deliver(`{}`, "sig")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookFailedPayment(t *testing.T) {
	f := newWebhookFixture(t)
	f.processor.event = &services.ProcessorEvent{Kind: services.EventPaymentFailed, EventID: "evt_f"}

	w := f.deliver(`{}`, "sig")
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
