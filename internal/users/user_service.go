package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/w0nsdoof/diplomatch/internal/common"
	"github.com/w0nsdoof/diplomatch/internal/store"
	"github.com/w0nsdoof/diplomatch/model"
	"github.com/w0nsdoof/diplomatch/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterUserOptions struct {
	Email    string
	Password string
}

type ResetToken struct {
	UserID uint   `redis:"user_id"`
	Email  string `redis:"email"`
}

type UserService struct {
	db         *gorm.DB
	userRepo   UserRepository
	resetStore store.Store[ResetToken]
}

// DeriveRole resolves the profile kind from the email local part, once, at
// registration: "jane-doe" is dean office staff, "jane.doe" a supervisor,
// "jane_doe" (or anything else) a student.
func DeriveRole(email string) model.Role {
	local, _, _ := strings.Cut(email, "@")
	switch {
	case strings.Contains(local, "-"):
		return model.RoleDeanOffice
	case strings.Contains(local, "."):
		return model.RoleSupervisor
	default:
		return model.RoleStudent
	}
}

func createProfile(tx *gorm.DB, user *model.User) error {
	switch user.Role {
	case model.RoleStudent:
		return tx.Create(&model.StudentProfile{UserID: user.ID}).Error
	case model.RoleSupervisor:
		return tx.Create(&model.SupervisorProfile{UserID: user.ID}).Error
	case model.RoleDeanOffice:
		return tx.Create(&model.DeanOfficeProfile{UserID: user.ID}).Error
	}
	return nil
}

// RegisterUser creates the account and its role profile in one transaction.
// The profile row is an explicit step of the workflow, not a save hook.
func (s *UserService) RegisterUser(ctx context.Context, opts RegisterUserOptions) (*model.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:    opts.Email,
		Password: string(passwordHash),
		Role:     DeriveRole(opts.Email),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, &user); err != nil {
			return err
		}
		return createProfile(tx, &user)
	})
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrEmailRegistered
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FirstByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FirstByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateAccountLocked runs fn against the account row for email while holding
// a row lock. The row is written back and committed even when fn rejects the
// attempt, so concurrent logins against one account serialize and no counter
// update is lost. fn's error is surfaced after the commit.
func (s *UserService) UpdateAccountLocked(ctx context.Context, email string, fn func(user *model.User) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		fnErr = fn(&user)
		return tx.Save(&user).Error
	})
	if err != nil {
		return err
	}
	return fnErr
}

// RequestPasswordReset issues a short-lived reset token for email. The caller
// is responsible for delivering it; unknown emails return ErrUserNotFound so
// the handler can answer without disclosing registration status.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token, err := common.GenerateSecret(32)
	if err != nil {
		return "", err
	}
	reset := ResetToken{UserID: user.ID, Email: user.Email}
	if err := s.resetStore.Set(ctx, token, reset, params.ResetTokenExpiration); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resetStore.Get(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if err := s.UpdatePassword(ctx, reset.Email, newPassword); err != nil {
		return err
	}
	// a token is single use; expiry handles the rare delete failure
	if err := s.resetStore.Delete(ctx, token); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, email string, newPassword string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.userRepo.Updates(ctx, user.ID, map[string]interface{}{"password": string(passwordHash)})
}

// SetProfileCompleted flips the completion flag once the role profile is
// filled in.
func (s *UserService) SetProfileCompleted(ctx context.Context, userID uint, completed bool) error {
	return s.userRepo.Updates(ctx, userID, map[string]interface{}{"is_profile_completed": completed})
}

func NewUserService(db *gorm.DB, userRepo UserRepository, storage store.Storage) *UserService {
	return &UserService{
		db:         db,
		userRepo:   userRepo,
		resetStore: store.New[ResetToken](storage, params.ResetTokenKeyPrefix),
	}
}
