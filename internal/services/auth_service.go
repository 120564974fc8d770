package services

import (
	"crypto/subtle"
	"errors"
	"log"

	"authcore/internal/models"
	"authcore/internal/repositories"
)

var (
	ErrEmailTaken        = errors.New("user with the same email exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("password is incorrect")
	ErrCodeNotFound      = errors.New("verification code not found")
	ErrCodeMismatch      = errors.New("verification code is incorrect")
)

type AuthService interface {
	SignUp(req *models.SignUpRequest) (*models.User, error)
	SignIn(email, password string) (*models.User, string, error)
	ForgotPassword(email string) error
	ResetPassword(email, code, newPassword string) error
	Profile(email string) (*models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	codes  repositories.VerificationCodeRepository
	hasher PasswordHasher
	tokens TokenService
	emails EmailService
}

func NewAuthService(
	users repositories.UserRepository,
	codes repositories.VerificationCodeRepository,
	hasher PasswordHasher,
	tokens TokenService,
	emails EmailService,
) AuthService {
	return &authService{
		users:  users,
		codes:  codes,
		hasher: hasher,
		tokens: tokens,
		emails: emails,
	}
}

func (s *authService) SignUp(req *models.SignUpRequest) (*models.User, error) {
	existing, err := s.users.GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	}
	if err := s.users.Create(user); err != nil {
		// гонка двух sign-up: уникальный индекс решает
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) SignIn(email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if !s.hasher.Check(user.PasswordHash, password) {
		return nil, "", ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) ForgotPassword(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	code, err := NewResetCode()
	if err != nil {
		return err
	}

	if err := s.emails.SendVerificationCodeEmail(user.Email, code); err != nil {
		// код всё равно сохраняем: письмо можно переотправить
		log.Printf("[auth][forgot-password] failed to send code to %s: %v", user.Email, err)
	}

	if _, err := s.codes.Create(user.ID, code, models.CodeTypeResetPassword); err != nil {
		return err
	}
	return nil
}

func (s *authService) ResetPassword(email, code, newPassword string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	stored, err := s.codes.GetLatestByUserID(user.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrCodeNotFound
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return ErrCodeMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	// удаление кода — условие коммита для смены пароля;
	// параллельный reset с тем же кодом увидит, что кода уже нет
	ok, err := s.codes.Consume(stored.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeNotFound
	}

	return s.users.UpdatePassword(user.ID, hash)
}

func (s *authService) Profile(email string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
