package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/model"
	"gorm.io/gorm"
)

// Publisher is the fan-out side of the realtime bus the service needs.
type Publisher interface {
	Publish(channel string, event any) error
}

// UserGetter is the slice of the user service the chat workflow depends on.
type UserGetter interface {
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

type ChatService struct {
	chatRepo  ChatRepository
	users     UserGetter
	publisher Publisher
}

// StartOrGetChat returns the direct chat between the two users, creating it on
// first use. Creation is idempotent from the caller's point of view.
func (s *ChatService) StartOrGetChat(ctx context.Context, userID, peerID uint) (*model.Chat, error) {
	if userID == peerID {
		return nil, ErrSelfChat
	}
	peer, err := s.users.GetUserByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	chat, err := s.chatRepo.FirstBetween(ctx, userID, peerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	chat = &model.Chat{Participants: []model.User{*user, *peer}}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]model.Chat, error) {
	return s.chatRepo.ListByUserID(ctx, userID)
}

// GetChat returns the chat only to its participants.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uint) (*model.Chat, error) {
	chat, err := s.chatRepo.FirstByID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

func (s *ChatService) ListMessages(ctx context.Context, chatID, userID uint) ([]model.Message, error) {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, chatID)
}

// SendMessage stores the message and then fans it out to the chat channel. A
// failed fan-out is logged, not surfaced; the stored message is the source of
// truth and clients recover it on the next fetch.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uint, content string) (*model.Message, error) {
	if _, err := s.GetChat(ctx, chatID, senderID); err != nil {
		return nil, err
	}
	message := &model.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	event := realtime.MessageEvent{
		ChatID:    chatID,
		Message:   message.Content,
		Sender:    senderID,
		Timestamp: message.CreatedAt,
	}
	if err := s.publisher.Publish(realtime.ChatChannel(chatID), event); err != nil {
		slog.Error("Could not fan out chat message", "chatId", chatID, "messageId", message.ID, "error", err)
	}
	return message, nil
}

// NotifyTyping fans out an ephemeral typing indicator. Nothing is stored.
func (s *ChatService) NotifyTyping(ctx context.Context, chatID, userID uint) error {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return err
	}
	return s.publisher.Publish(realtime.ChatChannel(chatID), realtime.TypingEvent{Type: "typing", User: userID})
}

// MarkMessageRead flags a message as read. Only a participant of the message's
// chat other than the sender may do so.
func (s *ChatService) MarkMessageRead(ctx context.Context, messageID, userID uint) error {
	message, err := s.chatRepo.FirstMessage(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	if _, err := s.GetChat(ctx, message.ChatID, userID); err != nil {
		return err
	}
	if message.SenderID == userID {
		return nil
	}
	return s.chatRepo.MarkMessageRead(ctx, messageID)
}

func NewChatService(chatRepo ChatRepository, users UserGetter, publisher Publisher) *ChatService {
	return &ChatService{
		chatRepo:  chatRepo,
		users:     users,
		publisher: publisher,
	}
}
