package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/authsvc/auth-service/database"
	"github.com/authsvc/auth-service/database/model"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// WithDB returns a copy of the service bound to d, typically a transaction.
func (s *UserService) WithDB(d *gorm.DB) *UserService {
	return &UserService{db: d}
}

// Create inserts user. A unique violation on email is reported as ErrEmailTaken.
func (s *UserService) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	err := s.db.WithContext(ctx).Create(user).Error
	if database.IsDuplicateKey(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return count > 0, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindById(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// List returns one page of users ordered by id together with the total count.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	users := make([]model.User, 0)
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}
