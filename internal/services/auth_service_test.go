package services

import (
	"fmt"
	"strings"
	"testing"

	"authcore/internal/models"
	"authcore/internal/repositories"

	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return repositories.ErrEmailTaken
	}
	user.ID = r.nextID
	r.nextID++
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, hash string) error {
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return fmt.Errorf("no such user: %d", userID)
}

type fakeCodeRepo struct {
	codes  []*models.VerificationCode
	nextID int
}

func (r *fakeCodeRepo) Create(userID int, code, codeType string) (*models.VerificationCode, error) {
	r.nextID++
	vc := &models.VerificationCode{
		ID:     fmt.Sprintf("code-%d", r.nextID),
		UserID: userID,
		Code:   code,
		Type:   codeType,
	}
	r.codes = append(r.codes, vc)
	return vc, nil
}

func (r *fakeCodeRepo) GetLatestByUserID(userID int) (*models.VerificationCode, error) {
	for i := len(r.codes) - 1; i >= 0; i-- {
		if r.codes[i].UserID == userID {
			return r.codes[i], nil
		}
	}
	return nil, nil
}

func (r *fakeCodeRepo) Consume(id string, code string) (bool, error) {
	for i, vc := range r.codes {
		if vc.ID == id && vc.Code == code {
			r.codes = append(r.codes[:i], r.codes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type sentMail struct {
	email string
	code  string
}

type fakeEmailService struct {
	sent []sentMail
	fail bool
}

func (s *fakeEmailService) SendVerificationCodeEmail(email, code string) error {
	if s.fail {
		return fmt.Errorf("smtp down")
	}
	s.sent = append(s.sent, sentMail{email: email, code: code})
	return nil
}

type authFixture struct {
	users  *fakeUserRepo
	codes  *fakeCodeRepo
	emails *fakeEmailService
	tokens TokenService
	svc    AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUserRepo(),
		codes:  &fakeCodeRepo{},
		emails: &fakeEmailService{},
		tokens: NewTokenService([]byte("test-key")),
	}
	f.svc = NewAuthService(f.users, f.codes, NewPasswordHasher(), f.tokens, f.emails)
	return f
}

func signUpReq() *models.SignUpRequest {
	return &models.SignUpRequest{
		FullName:    "Alice Smith",
		Email:       "a@b.com",
		Password:    "longpass1",
		PhoneNumber: "+15550001111",
		Address:     "1 Main St",
	}
}

func TestAuthService_SignUp(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "a@b.com", user.Email)
	// в хранилище никогда не попадает открытый пароль
	require.NotEqual(t, "longpass1", user.PasswordHash)
	require.True(t, strings.HasPrefix(user.PasswordHash, "$2"))
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	dup := signUpReq()
	dup.FullName = "Someone Else"
	dup.Password = "otherpass9"
	_, err = f.svc.SignUp(dup)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_SignIn(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	user, token, err := f.svc.SignIn("a@b.com", "longpass1")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", user.Email)

	email, expired, err := f.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", email)
	require.False(t, expired)
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	_, _, err = f.svc.SignIn("a@b.com", "wrongpass")
	require.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestAuthService_SignIn_UnknownUser(t *testing.T) {
	f := newAuthFixture()

	_, _, err := f.svc.SignIn("nobody@b.com", "whatever1")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	f := newAuthFixture()
	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword("a@b.com"))

	stored, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Code, 6)
	require.Equal(t, models.CodeTypeResetPassword, stored.Type)

	require.Len(t, f.emails.sent, 1)
	require.Equal(t, "a@b.com", f.emails.sent[0].email)
	require.Equal(t, stored.Code, f.emails.sent[0].code)
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	err := f.svc.ForgotPassword("nobody@b.com")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, f.codes.codes)
	require.Empty(t, f.emails.sent)
}

func TestAuthService_ForgotPassword_MailFailureStillStoresCode(t *testing.T) {
	f := newAuthFixture()
	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	f.emails.fail = true
	require.NoError(t, f.svc.ForgotPassword("a@b.com"))

	stored, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newAuthFixture()
	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword("a@b.com"))

	stored, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPassword("a@b.com", stored.Code, "freshpass2"))

	// старый пароль больше не подходит, новый работает
	_, _, err = f.svc.SignIn("a@b.com", "longpass1")
	require.ErrorIs(t, err, ErrIncorrectPassword)
	_, _, err = f.svc.SignIn("a@b.com", "freshpass2")
	require.NoError(t, err)

	// код потреблён, второй заход не пройдёт
	err = f.svc.ResetPassword("a@b.com", stored.Code, "anotherpass3")
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	f := newAuthFixture()
	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword("a@b.com"))

	err = f.svc.ResetPassword("a@b.com", "XXXXXX", "freshpass2")
	require.ErrorIs(t, err, ErrCodeMismatch)

	// код остаётся пригодным, пароль не тронут
	stored, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	_, _, err = f.svc.SignIn("a@b.com", "longpass1")
	require.NoError(t, err)
}

func TestAuthService_ResetPassword_NoCode(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	err = f.svc.ResetPassword("a@b.com", "ABC123", "freshpass2")
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestAuthService_ResetPassword_UsesLatestCode(t *testing.T) {
	f := newAuthFixture()
	user, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword("a@b.com"))
	first, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword("a@b.com"))
	second, err := f.codes.GetLatestByUserID(user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// сравнение идёт с последним сохранённым кодом
	if first.Code != second.Code {
		err = f.svc.ResetPassword("a@b.com", first.Code, "freshpass2")
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	require.NoError(t, f.svc.ResetPassword("a@b.com", second.Code, "freshpass2"))
}

func TestAuthService_Profile(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.SignUp(signUpReq())
	require.NoError(t, err)

	user, err := f.svc.Profile("a@b.com")
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", user.FullName)

	_, err = f.svc.Profile("gone@b.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}
