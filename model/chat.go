package model

import (
	"time"

	"gorm.io/gorm"
)

// Chat is a direct conversation between two users.
type Chat struct {
	ID           uint   `gorm:"primarykey"`
	Participants []User `gorm:"many2many:chat_participant;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}

// HasParticipant reports whether userID is a member of the chat. Participants
// must be preloaded.
func (c *Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Message is persisted before it is fanned out; a failed fan-out never rolls
// it back.
type Message struct {
	ID        uint   `gorm:"primarykey"`
	ChatID    uint   `gorm:"index;not null"`
	Chat      Chat   `gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	SenderID  uint   `gorm:"index;not null"`
	Sender    User   `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Content   string `gorm:"type:text;not null"`
	IsRead    bool   `gorm:"default:false;not null"`
	CreatedAt time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = GenerateID()
	}
	return nil
}

// UserStatus is a presence hint. The stored IsOnline flag is not authoritative;
// readers recompute it from LastSeen (see internal/presence).
type UserStatus struct {
	ID       uint      `gorm:"primarykey"`
	UserID   uint      `gorm:"uniqueIndex;not null"`
	IsOnline bool      `gorm:"default:false;not null"`
	LastSeen time.Time `gorm:"not null"`
}

func (s *UserStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = GenerateID()
	}
	return nil
}
