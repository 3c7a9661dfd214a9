package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w0nsdoof/diplomatch/internal/realtime"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
	"gorm.io/gorm"
)

type memChatRepository struct {
	chats    map[uint]*model.Chat
	messages map[uint]*model.Message
	nextID   uint
}

func newMemChatRepository() *memChatRepository {
	return &memChatRepository{
		chats:    make(map[uint]*model.Chat),
		messages: make(map[uint]*model.Message),
		nextID:   1,
	}
}

func (r *memChatRepository) FirstByID(ctx context.Context, chatID uint) (*model.Chat, error) {
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return chat, nil
}

func (r *memChatRepository) FirstBetween(ctx context.Context, userA, userB uint) (*model.Chat, error) {
	for _, chat := range r.chats {
		if chat.HasParticipant(userA) && chat.HasParticipant(userB) {
			return chat, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memChatRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			chats = append(chats, *chat)
		}
	}
	return chats, nil
}

func (r *memChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	chat.ID = r.nextID
	r.nextID++
	r.chats[chat.ID] = chat
	return nil
}

func (r *memChatRepository) ListMessages(ctx context.Context, chatID uint) ([]model.Message, error) {
	var messages []model.Message
	for _, msg := range r.messages {
		if msg.ChatID == chatID {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

func (r *memChatRepository) FirstMessage(ctx context.Context, messageID uint) (*model.Message, error) {
	msg, ok := r.messages[messageID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return msg, nil
}

func (r *memChatRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	message.ID = r.nextID
	r.nextID++
	message.CreatedAt = time.Now()
	r.messages[message.ID] = message
	return nil
}

func (r *memChatRepository) MarkMessageRead(ctx context.Context, messageID uint) error {
	msg, ok := r.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.IsRead = true
	return nil
}

type fakeUserGetter struct {
	users map[uint]*model.User
}

func (g *fakeUserGetter) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, ok := g.users[userID]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

type publishedEvent struct {
	channel string
	event   any
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(channel string, event any) error {
	p.events = append(p.events, publishedEvent{channel: channel, event: event})
	return nil
}

func newTestChatService() (*ChatService, *memChatRepository, *fakePublisher) {
	repo := newMemChatRepository()
	getter := &fakeUserGetter{users: map[uint]*model.User{
		1: {ID: 1, Email: "alice_a@kbtu.kz", Role: model.RoleStudent},
		2: {ID: 2, Email: "bob.b@kbtu.kz", Role: model.RoleSupervisor},
		3: {ID: 3, Email: "carol_c@kbtu.kz", Role: model.RoleStudent},
	}}
	publisher := &fakePublisher{}
	return NewChatService(repo, getter, publisher), repo, publisher
}

func TestStartOrGetChatIdempotent(t *testing.T) {
	svc, _, _ := newTestChatService()
	ctx := context.Background()

	first, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)
	second, err := svc.StartOrGetChat(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestStartOrGetChatRejectsSelf(t *testing.T) {
	svc, _, _ := newTestChatService()
	_, err := svc.StartOrGetChat(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestStartOrGetChatUnknownPeer(t *testing.T) {
	svc, _, _ := newTestChatService()
	_, err := svc.StartOrGetChat(context.Background(), 1, 404)
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestGetChatNonParticipant(t *testing.T) {
	svc, _, _ := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.GetChat(ctx, chat.ID, 3)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessagePersistsThenPublishes(t *testing.T) {
	svc, repo, publisher := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, chat.ID, 1, "hello")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	stored, err := repo.FirstMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, realtime.ChatChannel(chat.ID), publisher.events[0].channel)
	event, ok := publisher.events[0].event.(realtime.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hello", event.Message)
	assert.Equal(t, uint(1), event.Sender)
}

func TestSendMessageNonParticipant(t *testing.T) {
	svc, _, publisher := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, chat.ID, 3, "hello")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Empty(t, publisher.events)
}

func TestNotifyTypingIsEphemeral(t *testing.T) {
	svc, repo, publisher := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, svc.NotifyTyping(ctx, chat.ID, 1))
	assert.Empty(t, repo.messages)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, realtime.TypingEvent{Type: "typing", User: 1}, publisher.events[0].event)
}

func TestMarkMessageRead(t *testing.T) {
	svc, repo, _ := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)
	msg, err := svc.SendMessage(ctx, chat.ID, 1, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkMessageRead(ctx, msg.ID, 2))
	stored, err := repo.FirstMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
}

func TestMarkMessageReadBySenderIsNoop(t *testing.T) {
	svc, repo, _ := newTestChatService()
	ctx := context.Background()

	chat, err := svc.StartOrGetChat(ctx, 1, 2)
	require.NoError(t, err)
	msg, err := svc.SendMessage(ctx, chat.ID, 1, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkMessageRead(ctx, msg.ID, 1))
	stored, err := repo.FirstMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)
}
