package service

import (
	"context"
	"errors"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	store *repository.Store
	jwt   config.JWTConfig
}

func NewAuthService(store *repository.Store, jwt config.JWTConfig) *AuthService {
	return &AuthService{store: store, jwt: jwt}
}

type Registration struct {
	Name       string
	Email      string
	Password   string
	Role       model.UserRole
	StudyGroup string
	Department string
}

// Register creates the user together with its student or teacher record.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*model.User, error) {
	if reg.Role != model.RoleStudent && reg.Role != model.RoleTeacher {
		return nil, errors.New("role must be student or teacher")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: string(hashedPassword),
		Role:     reg.Role,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, err := tx.Users.FindByEmail(reg.Email)
		if err == nil {
			return util.ErrEmailRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Users.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrEmailRegistered
			}
			return err
		}

		if reg.Role == model.RoleStudent {
			return tx.Users.CreateStudent(&model.Student{ID: user.ID, StudyGroup: reg.StudyGroup})
		}
		return tx.Users.CreateTeacher(&model.Teacher{ID: user.ID, Department: reg.Department})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.store.WithContext(ctx).Users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.jwt.Secret, s.jwt.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
