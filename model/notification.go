package model

import (
	"time"

	"gorm.io/gorm"
)

// Notification stores a notification for a user.
type Notification struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"index;not null"`
	User      User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Message   string `gorm:"type:text;not null"`
	IsRead    bool   `gorm:"default:false;not null"`
	CreatedAt time.Time
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == 0 {
		n.ID = GenerateID()
	}
	return nil
}
