package service

import (
	"context"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AdminService interface {
	Login(ctx context.Context, req *v1.LoginRequest) (string, error)
	// EnsureAdmin 账号不存在时创建，返回是否新建
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

func NewAdminService(
	service *Service,
	adminRepo repository.AdminRepository,
) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		Service:   service,
	}
}

type adminService struct {
	adminRepo repository.AdminRepository
	*Service
}

func (s *adminService) Login(ctx context.Context, req *v1.LoginRequest) (string, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Account)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get admin", zap.Error(err))
		return "", v1.ErrInternalServerError
	}
	if admin == nil {
		return "", v1.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return "", v1.ErrInvalidCredentials
	}
	token, err := s.jwt.GenToken(admin.UserId, time.Now().Add(tokenTTL))
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to generate token", zap.Error(err))
		return "", v1.ErrInternalServerError
	}
	return token, nil
}

func (s *adminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	created := false
	err := s.tm.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.adminRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		userId, err := s.sid.GenString()
		if err != nil {
			return err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := s.adminRepo.Create(ctx, &model.Admin{
			UserId:     userId,
			Username:   username,
			Password:   string(hashed),
			CreateTime: now,
			UpdateTime: now,
		}); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
