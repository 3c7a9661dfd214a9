package chat

import (
	"context"
	"fmt"

	"github.com/w0nsdoof/diplomatch/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FirstByID(ctx context.Context, chatID uint) (*model.Chat, error)
	FirstBetween(ctx context.Context, userA, userB uint) (*model.Chat, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.Chat, error)
	Create(ctx context.Context, chat *model.Chat) error
	ListMessages(ctx context.Context, chatID uint) ([]model.Message, error)
	FirstMessage(ctx context.Context, messageID uint) (*model.Message, error)
	CreateMessage(ctx context.Context, message *model.Message) error
	MarkMessageRead(ctx context.Context, messageID uint) error
}

type chatRepository struct {
	db *gorm.DB
}

func (r *chatRepository) FirstByID(ctx context.Context, chatID uint) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).Preload("Participants").First(&chat, chatID).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// chatTable and participantTable resolve the physical table names through the
// session's naming strategy, so a TablePrefix or singular naming keeps working.
func (r *chatRepository) chatTable() string {
	return r.db.NamingStrategy.TableName("Chat")
}

func (r *chatRepository) participantTable() string {
	return r.db.NamingStrategy.JoinTableName("chat_participant")
}

// FirstBetween finds the direct chat whose participant set is exactly the two
// given users.
func (r *chatRepository) FirstBetween(ctx context.Context, userA, userB uint) (*model.Chat, error) {
	var chatID uint
	err := r.db.WithContext(ctx).
		Table(r.participantTable()).
		Select("chat_id").
		Where("user_id IN ?", []uint{userA, userB}).
		Group("chat_id").
		Having("COUNT(DISTINCT user_id) = 2").
		Limit(1).
		Scan(&chatID).Error
	if err != nil {
		return nil, err
	}
	if chatID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FirstByID(ctx, chatID)
}

func (r *chatRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Chat, error) {
	chats := []model.Chat{}
	chatTable, participantTable := r.chatTable(), r.participantTable()
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins(fmt.Sprintf("JOIN %s ON %s.chat_id = %s.id", participantTable, participantTable, chatTable)).
		Where(participantTable+".user_id = ?", userID).
		Order(chatTable + ".created_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) FirstMessage(ctx context.Context, messageID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).First(&message, messageID).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) MarkMessageRead(ctx context.Context, messageID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}
