package model

import (
	"time"

	"gorm.io/gorm"
)

// Role identifies the kind of profile attached to an account. It is resolved
// once at registration time from the email local part and never re-derived.
type Role string

const (
	RoleStudent    Role = "Student"
	RoleSupervisor Role = "Supervisor"
	RoleDeanOffice Role = "Dean Office"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleDeanOffice:
		return true
	}
	return false
}

// User stores account credentials together with the login security counters.
// The security fields are only ever mutated inside a row-locked transaction,
// one update per login attempt.
type User struct {
	ID                 uint   `gorm:"primarykey"`
	Email              string `gorm:"uniqueIndex;size:256;not null"`
	Password           string `gorm:"size:64;not null"`
	Role               Role   `gorm:"size:20;not null"`
	IsProfileCompleted bool   `gorm:"default:false;not null"`
	Disabled           bool   `gorm:"default:false;not null"`

	FailedLoginAttempts int        `gorm:"default:0;not null"`
	BlockedUntil        *time.Time `gorm:""`
	BlockDuration       int        `gorm:"default:5;not null"` // minutes, escalates 5 -> 30
	LastFailedLogin     *time.Time `gorm:""`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
