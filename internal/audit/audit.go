package audit

import (
	"context"
	"sync"

	"github.com/w0nsdoof/diplomatch/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeLoginSuccess   = "login_success"
	EventTypeLoginFailure   = "login_failure"
	EventTypeAccountBlocked = "account_blocked"
	EventTypeIPBlocked      = "ip_blocked"
	EventTypePasswordReset  = "password_reset"
)

type LoginRecord struct {
	UserID    uint
	Email     string
	IP        string
	UserAgent string
	Success   bool
	Reason    string
}

type BlockRecord struct {
	UserID    uint
	Email     string
	IP        string
	UserAgent string
	Reason    string
}

func RecordLogin(ctx context.Context, record LoginRecord) error {
	loginEventType := EventTypeLoginFailure
	if record.Success {
		loginEventType = EventTypeLoginSuccess
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    record.UserID,
		Email:     record.Email,
		EventType: loginEventType,
		IP:        record.IP,
		UserAgent: record.UserAgent,
		Reason:    record.Reason,
	})
}

func RecordAccountBlocked(ctx context.Context, record BlockRecord) error {
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    record.UserID,
		Email:     record.Email,
		EventType: EventTypeAccountBlocked,
		IP:        record.IP,
		UserAgent: record.UserAgent,
		Reason:    record.Reason,
	})
}

func RecordIPBlocked(ctx context.Context, record BlockRecord) error {
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		Email:     record.Email,
		EventType: EventTypeIPBlocked,
		IP:        record.IP,
		UserAgent: record.UserAgent,
		Reason:    record.Reason,
	})
}

func RecordPasswordReset(ctx context.Context, record BlockRecord) error {
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    record.UserID,
		Email:     record.Email,
		EventType: EventTypePasswordReset,
		IP:        record.IP,
		UserAgent: record.UserAgent,
	})
}
