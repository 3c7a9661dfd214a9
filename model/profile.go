package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentProfile holds student-specific profile data. Profile rows are created
// by an explicit step in the registration workflow, never by save hooks.
type StudentProfile struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FullName  string `gorm:"size:128"`
	Degree    string `gorm:"size:64"`
	Skills    string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SupervisorProfile struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"uniqueIndex;not null"`
	User       User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FullName   string `gorm:"size:128"`
	Department string `gorm:"size:128"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type DeanOfficeProfile struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FullName  string `gorm:"size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}

func (p *SupervisorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}

func (p *DeanOfficeProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}
