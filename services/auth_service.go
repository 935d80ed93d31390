package services

import (
	"strings"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService จัดการ business logic ของการ login/register
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(repo *repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:  repo,
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

// Register สร้าง user ใหม่ ถ้า email ซ้ำจะ error
func (s *AuthService) Register(email, password, firstName, lastName, phone string) (*entity.User, error) {
	// trim และ normalize email
	email = strings.ToLower(strings.TrimSpace(email))

	// ตรวจซ้ำ email
	count, err := s.userRepo.CountByEmail(email)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if count > 0 {
		return nil, apperr.BadRequestf("email already registered")
	}

	// hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password failed", err)
	}

	user := &entity.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
		Role:      entity.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return user, nil
}

// Login ตรวจสอบ user + สร้าง JWT
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return "", nil, errInvalidCredentials
	}

	// เทียบรหัสผ่าน
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, errInvalidCredentials
	}

	token, err := s.TokenFor(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

var errInvalidCredentials = apperr.New(apperr.BadRequest, "invalid credentials")

// IsInvalidCredentials ให้ controller ตอบ 401 แทน 400
func IsInvalidCredentials(err error) bool { return err == errInvalidCredentials }

// TokenFor ออก token ใหม่ (ใช้หลังสมัครร้านด้วย เพราะ tenantId เปลี่ยน)
func (s *AuthService) TokenFor(user *entity.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Role, user.TenantID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "cannot generate token", err)
	}
	return token, nil
}

// GetProfile
func (s *AuthService) GetProfile(userID uint) (*entity.User, error) {
	u, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.FromDB(err, "user not found")
	}
	return u, nil
}
