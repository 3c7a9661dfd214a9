package api

import (
	"context"

	"github.com/w0nsdoof/diplomatch/internal/auth"
	"github.com/w0nsdoof/diplomatch/internal/presence"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
)

type LoginGuard interface {
	Authenticate(ctx context.Context, email string, password string, ip string) (*model.User, error)
}

type TokenService interface {
	IssuePair(user *model.User) (*auth.TokenPair, error)
	VerifyRefresh(tokenStr string) (*auth.Claims, error)
}

type UserService interface {
	RegisterUser(ctx context.Context, opts users.RegisterUserOptions) (*model.User, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token string, newPassword string) error
	SetProfileCompleted(ctx context.Context, userID uint, completed bool) error
}

type ChatService interface {
	StartOrGetChat(ctx context.Context, userID, peerID uint) (*model.Chat, error)
	ListChats(ctx context.Context, userID uint) ([]model.Chat, error)
	GetChat(ctx context.Context, chatID, userID uint) (*model.Chat, error)
	ListMessages(ctx context.Context, chatID, userID uint) ([]model.Message, error)
	SendMessage(ctx context.Context, chatID, senderID uint, content string) (*model.Message, error)
	MarkMessageRead(ctx context.Context, messageID, userID uint) error
}

type NotificationService interface {
	List(ctx context.Context, userID uint) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, notificationID, userID uint) error
}

type PresenceTracker interface {
	GetStatus(ctx context.Context, userID uint) (*presence.Status, error)
}

type userInfoResponse struct {
	UserID             uint       `json:"userId"`
	Email              string     `json:"email"`
	Role               model.Role `json:"role"`
	IsProfileCompleted bool       `json:"isProfileCompleted"`
}

func newUserInfoResponse(user *model.User) userInfoResponse {
	return userInfoResponse{
		UserID:             user.ID,
		Email:              user.Email,
		Role:               user.Role,
		IsProfileCompleted: user.IsProfileCompleted,
	}
}
