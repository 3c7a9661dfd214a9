package model

import "time"

type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"index"`                  // zero for unknown accounts
	Email     string    `gorm:"size:254;index"`         // submitted email at event time
	EventType string    `gorm:"size:64;not null;index"` // login_success, login_failure...
	Reason    string    `gorm:"size:512"`               // failure reason or context
	IP        string    `gorm:"size:45;not null"`       // IPv4/IPv6
	UserAgent string    `gorm:"size:512"`               // user agent string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
