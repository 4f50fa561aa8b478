package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"trivia_web/internal/repository"
	"trivia_web/pkg/utils"
)

type AuthService struct {
	adminRepo repository.AdminRepository
}

func NewAuthService(adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{adminRepo: adminRepo}
}

// Login 驗證管理員帳號密碼，成功時回傳 JWT token
func (s *AuthService) Login(username, password string) (string, error) {
	admin, err := s.adminRepo.FindByUsername(username)
	if err != nil {
		return "", errors.New("帳號或密碼錯誤")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", errors.New("帳號或密碼錯誤")
	}

	return utils.GenerateToken(admin.ID, admin.Username)
}
