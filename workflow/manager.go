package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/config"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/executor"
	"github.com/nexuscore/negotiator/gate"
	"github.com/nexuscore/negotiator/internal/db"
	"github.com/nexuscore/negotiator/internal/locker"
	"github.com/nexuscore/negotiator/internal/mylog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResumeAction string

const (
	ResumeApproved ResumeAction = "APPROVED"
	ResumeRejected ResumeAction = "REJECTED"
)

type (
	// Manager owns thread lifecycle transitions and is the sole writer
	// of thread state. Operations on the same thread are serialized;
	// distinct threads proceed in parallel.
	Manager interface {
		CreateThread(ctx context.Context, contractID, supplierID uint) (*ThreadSnapshot, error)
		Negotiate(ctx context.Context, threadID uint, actorRole, text string) (*ThreadSnapshot, error)
		Resume(ctx context.Context, threadID uint, action ResumeAction, feedback string) (*ThreadSnapshot, error)
		Snapshot(ctx context.Context, threadID uint) (*ThreadSnapshot, error)
		ListSnapshots(ctx context.Context) ([]*ThreadSnapshot, error)
		CloseThread(ctx context.Context, threadID uint) (*ThreadSnapshot, error)
	}

	manager struct {
		logger   *mylog.Logger
		db       *gorm.DB
		executor executor.Executor
		gate     gate.Gate
		locks    *locker.KeyedLock

		executorTimeout time.Duration
		snapshotWait    time.Duration
	}
)

var _ Manager = (*manager)(nil)

var emptyContext = datatypes.NewJSONType[*entity.DecisionContext](nil)

func (m *manager) loadThread(tx *gorm.DB, threadID uint) (*entity.Thread, error) {
	var thread entity.Thread
	r := tx.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("messages.id ASC")
	}).Find(&thread, threadID)
	if r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find thread")
	}
	if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrThreadNotFound, "thread %d", threadID)
	}
	return &thread, nil
}

func (m *manager) snapshot(tx *gorm.DB, thread *entity.Thread) *ThreadSnapshot {
	var (
		contractTitle string
		riskScore     float64
	)

	if thread.ContractID != 0 {
		var contract entity.Contract
		if r := tx.Find(&contract, thread.ContractID); r.Error == nil && r.RowsAffected > 0 {
			contractTitle = contract.Title
		}
	}
	if thread.SupplierID != 0 {
		var sup entity.Supplier
		if r := tx.Find(&sup, thread.SupplierID); r.Error == nil && r.RowsAffected > 0 {
			riskScore = sup.RiskScore
		}
	}

	return newSnapshot(thread, contractTitle, riskScore)
}

func (m *manager) CreateThread(ctx context.Context, contractID, supplierID uint) (*ThreadSnapshot, error) {
	_, tx := db.OpenSession(ctx, m.db)

	thread := entity.Thread{
		Status:     entity.ThreadStatusActive,
		ContractID: contractID,
		SupplierID: supplierID,
	}
	if err := tx.Create(&thread).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create thread")
	}

	return m.snapshot(tx, &thread), nil
}

func (m *manager) Negotiate(ctx context.Context, threadID uint, actorRole, text string) (*ThreadSnapshot, error) {
	switch actorRole {
	case "":
		actorRole = entity.RoleBuyer
	case entity.RoleBuyer, entity.RoleSupplier:
	default:
		return nil, errors.Wrapf(errors.ErrInvalidParams, "unknown actor role %q", actorRole)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "text is required")
	}

	if err := m.locks.Acquire(ctx, threadID); err != nil {
		return nil, errors.WithStack(err)
	}
	defer m.locks.Release(threadID)

	ctx, tx := db.OpenSession(ctx, m.db)

	thread, err := m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}
	switch thread.Status {
	case entity.ThreadStatusPaused:
		return nil, errors.Wrapf(errors.ErrThreadPaused, "thread %d awaits a decision", threadID)
	case entity.ThreadStatusCompleted:
		return nil, errors.Wrapf(errors.ErrThreadCompleted, "thread %d", threadID)
	}

	execCtx, cancel := context.WithTimeout(ctx, m.executorTimeout)
	defer cancel()

	candidate, err := m.executor.Execute(execCtx, thread, thread.Messages, text, thread.PendingFeedback)
	if err != nil {
		if errors.Is(err, errors.ErrExecutorRejected) {
			return m.commitRejectedTurn(tx, thread, actorRole, text, err)
		}
		// Anything else is transient from the client's perspective: the
		// thread stays in its prior state and the call is retryable.
		m.logger.Warn("turn executor failed", "thread", threadID, mylog.Err(err))
		if errors.Is(err, errors.ErrExecutorUnavailable) {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrExecutorUnavailable, "turn execution failed: %v", err)
	}

	if err := tx.Transaction(func(tx *gorm.DB) error {
		inbound := entity.Message{
			ThreadID:     thread.ID,
			Role:         actorRole,
			Content:      text,
			SourceTurnID: candidate.TurnID,
		}
		if err := tx.Create(&inbound).Error; err != nil {
			return errors.Wrapf(err, "failed to append inbound message")
		}

		updates := map[string]any{
			"pending_feedback": "",
		}
		switch m.gate.Evaluate(candidate) {
		case gate.OutcomeCommitDirectly:
			reply := entity.Message{
				ThreadID:     thread.ID,
				Role:         entity.RoleBuyer,
				Content:      candidate.Message,
				SourceTurnID: candidate.TurnID,
			}
			if err := tx.Create(&reply).Error; err != nil {
				return errors.Wrapf(err, "failed to append reply message")
			}
			updates["status"] = entity.ThreadStatusActive
			updates["current_context"] = emptyContext
		case gate.OutcomeRequireApproval:
			updates["status"] = entity.ThreadStatusPaused
			updates["current_context"] = datatypes.NewJSONType(candidate)
		}

		return errors.Wrapf(
			tx.Model(&entity.Thread{}).Where("id = ?", thread.ID).Updates(updates).Error,
			"failed to update thread",
		)
	}); err != nil {
		return nil, err
	}

	thread, err = m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(tx, thread), nil
}

// commitRejectedTurn surfaces a declined turn as a no-op with an
// explanatory note; the thread stays active.
func (m *manager) commitRejectedTurn(tx *gorm.DB, thread *entity.Thread, actorRole, text string, cause error) (*ThreadSnapshot, error) {
	if err := tx.Transaction(func(tx *gorm.DB) error {
		messages := []entity.Message{
			{ThreadID: thread.ID, Role: actorRole, Content: text},
			{ThreadID: thread.ID, Role: entity.RoleBuyer, Content: "The negotiation agent declined to act on this input: " + cause.Error()},
		}
		if err := tx.Create(&messages).Error; err != nil {
			return errors.Wrapf(err, "failed to append messages")
		}
		return errors.Wrapf(
			tx.Model(&entity.Thread{}).Where("id = ?", thread.ID).Update("pending_feedback", "").Error,
			"failed to update thread",
		)
	}); err != nil {
		return nil, err
	}

	thread, err := m.loadThread(tx, thread.ID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(tx, thread), nil
}

func (m *manager) Resume(ctx context.Context, threadID uint, action ResumeAction, feedback string) (*ThreadSnapshot, error) {
	if action != ResumeApproved && action != ResumeRejected {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "unknown resume action %q", action)
	}

	if err := m.locks.Acquire(ctx, threadID); err != nil {
		return nil, errors.WithStack(err)
	}
	defer m.locks.Release(threadID)

	_, tx := db.OpenSession(ctx, m.db)

	thread, err := m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status != entity.ThreadStatusPaused {
		return nil, errors.Wrapf(errors.ErrNotPaused, "thread %d is %s", threadID, thread.Status)
	}
	candidate := thread.PendingContext()
	if candidate == nil {
		return nil, errors.Wrapf(errors.ErrNoPendingContext, "thread %d", threadID)
	}

	if err := tx.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"current_context": emptyContext,
		}

		switch action {
		case ResumeApproved:
			reply := entity.Message{
				ThreadID:     thread.ID,
				Role:         entity.RoleBuyer,
				Content:      candidate.Message,
				SourceTurnID: candidate.TurnID,
			}
			if err := tx.Create(&reply).Error; err != nil {
				return errors.Wrapf(err, "failed to append approved message")
			}

			if candidate.Strategy == executor.DecisionAccept {
				// An approved acceptance finalizes the contract.
				updates["status"] = entity.ThreadStatusCompleted
				if thread.ContractID != 0 {
					if err := tx.Model(&entity.Contract{}).
						Where("id = ?", thread.ContractID).
						Update("status", "finalized").Error; err != nil {
						return errors.Wrapf(err, "failed to finalize contract")
					}
				}
			} else {
				updates["status"] = entity.ThreadStatusActive
			}
			updates["pending_feedback"] = ""
		case ResumeRejected:
			updates["status"] = entity.ThreadStatusActive
			updates["pending_feedback"] = feedback
		}

		return errors.Wrapf(
			tx.Model(&entity.Thread{}).Where("id = ?", thread.ID).Updates(updates).Error,
			"failed to update thread",
		)
	}); err != nil {
		return nil, err
	}

	thread, err = m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(tx, thread), nil
}

// Snapshot waits at most snapshotWait for an in-flight turn, then reads
// the last committed state either way.
func (m *manager) Snapshot(ctx context.Context, threadID uint) (*ThreadSnapshot, error) {
	if m.locks.TryAcquire(threadID, m.snapshotWait) {
		m.locks.Release(threadID)
	}

	_, tx := db.OpenSession(ctx, m.db)

	thread, err := m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(tx, thread), nil
}

func (m *manager) ListSnapshots(ctx context.Context) ([]*ThreadSnapshot, error) {
	_, tx := db.OpenSession(ctx, m.db)

	var threads []entity.Thread
	if err := tx.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("messages.id ASC")
	}).Order("id ASC").Find(&threads).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list threads")
	}

	snapshots := make([]*ThreadSnapshot, 0, len(threads))
	for i := range threads {
		snapshots = append(snapshots, m.snapshot(tx, &threads[i]))
	}
	return snapshots, nil
}

func (m *manager) CloseThread(ctx context.Context, threadID uint) (*ThreadSnapshot, error) {
	if err := m.locks.Acquire(ctx, threadID); err != nil {
		return nil, errors.WithStack(err)
	}
	defer m.locks.Release(threadID)

	_, tx := db.OpenSession(ctx, m.db)

	thread, err := m.loadThread(tx, threadID)
	if err != nil {
		return nil, err
	}

	if thread.Status != entity.ThreadStatusCompleted {
		if err := tx.Model(&entity.Thread{}).Where("id = ?", thread.ID).Updates(map[string]any{
			"status":           entity.ThreadStatusCompleted,
			"current_context":  emptyContext,
			"pending_feedback": "",
		}).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to close thread")
		}

		thread, err = m.loadThread(tx, threadID)
		if err != nil {
			return nil, err
		}
	}

	return m.snapshot(tx, thread), nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Manager, error) {
		logger, err := din.Get[*slog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}
		conf, err := din.GetT[*config.CoreConfig](c)
		if err != nil {
			return nil, err
		}

		return &manager{
			logger:          logger,
			db:              din.MustGet[*gorm.DB](c, db.Key),
			executor:        din.MustGetT[executor.Executor](c),
			gate:            din.MustGetT[gate.Gate](c),
			locks:           locker.NewKeyedLock(),
			executorTimeout: conf.ExecutorTimeout(),
			snapshotWait:    conf.SnapshotWait(),
		}, nil
	})
}
