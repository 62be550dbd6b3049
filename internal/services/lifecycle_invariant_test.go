package services

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

// TestAssignmentInvariantUnderRandomInterleaving drives the proposal, task
// and payment services through randomized operation sequences and checks
// after every mutation that a task carries a freelancer exactly when it is
// IN_PROGRESS or COMPLETED. Individual operations are allowed to fail with
// state errors; the invariant must hold regardless.
func TestAssignmentInvariantUnderRandomInterleaving(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			runLifecycleInterleaving(t, rand.New(rand.NewSource(seed)))
		})
	}
}

func runLifecycleInterleaving(t *testing.T, rng *rand.Rand) {
	db := newTestDB(t)
	mailer := &recordingMailer{}

	taskRepo := repository.NewGormTaskRepository(db)
	proposalRepo := repository.NewGormProposalRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	notifications := NewNotificationService(repository.NewGormNotificationRepository(db))

	payments := NewPaymentService(paymentRepo, taskRepo, proposalRepo, notifications,
		mailer, SyncDispatcher{}, &stubProcessor{}, "usd", decimal.NewFromInt(15))
	tasks := NewTaskService(taskRepo, categoryRepo, userRepo, payments, mailer, SyncDispatcher{})
	proposals := NewProposalService(proposalRepo, taskRepo, notifications, mailer, SyncDispatcher{})

	client := createUser(t, db, "lifecycleclient", models.RoleClient)
	freelancers := make([]*models.User, 3)
	for i := range freelancers {
		freelancers[i] = createUser(t, db, fmt.Sprintf("lifecyclefreelancer%d", i), models.RoleFreelancer)
	}

	var taskIDs []uint64
	for i := 0; i < 4; i++ {
		task, err := tasks.CreateTask(client.ID, CreateTaskInput{
			Title:    fmt.Sprintf("task %d", i),
			Deadline: time.Now().AddDate(0, 0, 14),
		})
		require.NoError(t, err)
		taskIDs = append(taskIDs, task.ID)
	}

	var proposalIDs []uint64

	pickTask := func() uint64 { return taskIDs[rng.Intn(len(taskIDs))] }
	pickFreelancer := func() *models.User { return freelancers[rng.Intn(len(freelancers))] }

	for step := 0; step < 200; step++ {
		switch rng.Intn(6) {
		case 0:
			proposal, err := proposals.Submit(pickFreelancer().ID, pickTask(),
				"ready to start", decimal.NewFromInt(int64(100+rng.Intn(400))))
			if err == nil {
				proposalIDs = append(proposalIDs, proposal.ID)
			}
		case 1:
			if len(proposalIDs) > 0 {
				proposals.Accept(client.ID, proposalIDs[rng.Intn(len(proposalIDs))])
			}
		case 2:
			if len(proposalIDs) > 0 {
				proposals.Reject(client.ID, proposalIDs[rng.Intn(len(proposalIDs))])
			}
		case 3:
			tasks.SubmitWork(pickFreelancer().ID, pickTask(), "https://example.com/work")
		case 4:
			tasks.CompleteTask(pickFreelancer().ID, pickTask())
		case 5:
			holdEscrowIfAssigned(t, db, pickTask())
			payments.ReleasePayment(pickTask())
		}

		assertAssignmentMatchesStatus(t, db, step)
	}
}

// holdEscrowIfAssigned simulates a settled checkout for an assigned task. The
// unique index on task_id makes repeat holds a no-op.
func holdEscrowIfAssigned(t *testing.T, db *gorm.DB, taskID uint64) {
	var task models.Task
	require.NoError(t, db.First(&task, taskID).Error)
	if task.FreelancerID == nil {
		return
	}
	db.Create(&models.Payment{
		Amount:       decimal.NewFromInt(100),
		Currency:     "usd",
		Status:       models.PaymentStatusHeld,
		PaymentDate:  time.Now(),
		TaskID:       task.ID,
		ClientID:     task.ClientID,
		FreelancerID: *task.FreelancerID,
	})
}

func assertAssignmentMatchesStatus(t *testing.T, db *gorm.DB, step int) {
	var all []models.Task
	require.NoError(t, db.Find(&all).Error)
	for _, task := range all {
		assigned := task.FreelancerID != nil
		working := task.Status == models.TaskStatusInProgress || task.Status == models.TaskStatusCompleted
		require.Equalf(t, working, assigned,
			"step %d: task %d has status %s with freelancer %v", step, task.ID, task.Status, task.FreelancerID)
	}
}
