package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicateEntry
		}
	}
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.users[stored.ID] = &stored
	r.nextID++
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) UpdateOTP(_ context.Context, id int, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.OtpCode = null.StringFrom(code)
	u.OtpExpiresAt = null.TimeFrom(expiresAt)
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	u.OtpCode = null.String{}
	u.OtpExpiresAt = null.Time{}
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name = user.Name
	u.Email = user.Email
	u.Password = user.Password
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) Find(_ context.Context, _ string, _ domain.Page) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// otpFor reads the stored code directly, standing in for the mailed message.
func (r *fakeUserRepo) otpFor(id int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].OtpCode.String
}

func (r *fakeUserRepo) expireOTP(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].OtpExpiresAt = null.TimeFrom(time.Now().Add(-time.Minute))
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	users := newFakeUserRepo()
	mailer := newFakeMailer()
	svc := NewAuthService(users, &fakeLogRepo{}, mailer, "test-secret", time.Hour)
	return svc, users, mailer
}

func registerVerified(t *testing.T, svc *AuthService, users *fakeUserRepo, email, password string) *domain.User {
	t.Helper()
	user, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Test User", Email: email, Password: password,
	})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{
		UserID: user.ID, OtpCode: users.otpFor(user.ID),
	}))
	return user
}

func TestRegister_SendsOTP(t *testing.T) {
	svc, users, mailer := newAuthFixture(t)

	user, mailStatus, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	assert.False(t, user.IsVerified)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.Password)
	assert.Equal(t, notify.StatusSent, mailStatus)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "otp", mailer.sent[0].kind)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Len(t, users.otpFor(user.ID), 6)
	assert.Equal(t, users.otpFor(user.ID), mailer.sent[0].detail)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	dto := domain.RegisterUserDTO{Name: "Alice", Email: "alice@example.com", Password: "secret123"}

	_, _, err := svc.Register(context.Background(), dto)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), dto)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestVerifyOTP_CompletesRegistration(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	err = svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{UserID: user.ID, OtpCode: users.otpFor(user.ID)})
	require.NoError(t, err)

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	// A second attempt is refused, the account is already verified.
	err = svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{UserID: user.ID, OtpCode: "000000"})
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	wrong := "000000"
	if users.otpFor(user.ID) == wrong {
		wrong = "000001"
	}
	err = svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{UserID: user.ID, OtpCode: wrong})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	users.expireOTP(user.ID)
	err = svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{UserID: user.ID, OtpCode: users.otpFor(user.ID)})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResendOTP_ReplacesCode(t *testing.T) {
	svc, users, mailer := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	users.expireOTP(user.ID)
	mailStatus, err := svc.ResendOTP(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, mailStatus)
	require.Len(t, mailer.sent, 2)

	// The freshly mailed code verifies.
	err = svc.VerifyOTP(context.Background(), domain.VerifyOtpDTO{UserID: user.ID, OtpCode: users.otpFor(user.ID)})
	assert.NoError(t, err)
}

func TestResendOTP_VerifiedAccountRefused(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := registerVerified(t, svc, users, "alice@example.com", "secret123")

	_, err := svc.ResendOTP(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := registerVerified(t, svc, users, "alice@example.com", "secret123")

	resp, err := svc.Login(context.Background(), domain.LoginUserDTO{
		Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	actor, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, domain.RoleUser, actor.Role)
	assert.False(t, actor.IsAdmin())
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, _, err := svc.Register(context.Background(), domain.RegisterUserDTO{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginUserDTO{
		Email: "alice@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrAccountNotVerified)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	registerVerified(t, svc, users, "alice@example.com", "secret123")

	_, err := svc.Login(context.Background(), domain.LoginUserDTO{
		Email: "alice@example.com", Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), domain.LoginUserDTO{
		Email: "nobody@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	registerVerified(t, svc, users, "alice@example.com", "secret123")
	resp, err := svc.Login(context.Background(), domain.LoginUserDTO{
		Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	other := NewAuthService(users, &fakeLogRepo{}, newFakeMailer(), "different-secret", time.Hour)
	_, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
