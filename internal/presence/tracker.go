package presence

import (
	"context"
	"errors"
	"time"

	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/model"
	"github.com/w0nsdoof/diplomatch/params"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatusRepository interface {
	Upsert(ctx context.Context, status *model.UserStatus) error
	FirstByUserID(ctx context.Context, userID uint) (*model.UserStatus, error)
}

type statusRepository struct {
	db *gorm.DB
}

func (r *statusRepository) Upsert(ctx context.Context, status *model.UserStatus) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen"}),
	}).Create(status).Error
}

func (r *statusRepository) FirstByUserID(ctx context.Context, userID uint) (*model.UserStatus, error) {
	var status model.UserStatus
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

// Status is a user's presence as reported to clients. Online is derived from
// the last heartbeat, never read straight from storage.
type Status struct {
	UserID   uint      `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Tracker records heartbeats and answers presence queries. A user counts as
// online while their last heartbeat is within params.PresenceWindow, so a
// stale stored flag heals itself on the next read.
type Tracker struct {
	statusRepo StatusRepository
	clock      common.Clock
}

// MarkOnline records a heartbeat for userID.
func (t *Tracker) MarkOnline(ctx context.Context, userID uint) error {
	return t.statusRepo.Upsert(ctx, &model.UserStatus{
		UserID:   userID,
		IsOnline: true,
		LastSeen: t.clock.Now(),
	})
}

// MarkOffline clears the stored flag when a connection closes and stamps the
// disconnect as the last time the user was seen.
func (t *Tracker) MarkOffline(ctx context.Context, userID uint) error {
	status, err := t.statusRepo.FirstByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	status.IsOnline = false
	status.LastSeen = t.clock.Now()
	return t.statusRepo.Upsert(ctx, status)
}

// GetStatus returns the presence of userID. Users never seen report offline
// with a zero last seen time.
func (t *Tracker) GetStatus(ctx context.Context, userID uint) (*Status, error) {
	status, err := t.statusRepo.FirstByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Status{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	online := t.clock.Now().Sub(status.LastSeen) <= params.PresenceWindow
	return &Status{
		UserID:   userID,
		IsOnline: online,
		LastSeen: status.LastSeen,
	}, nil
}

func NewTracker(statusRepo StatusRepository, clock common.Clock) *Tracker {
	return &Tracker{statusRepo: statusRepo, clock: clock}
}
