package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworx/triage-agent/internal/config"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/types"
)

// fakeUserDB is an in-memory DBClient
type fakeUserDB struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserDB() *fakeUserDB {
	return &fakeUserDB{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserDB) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()
	f.users[id] = &db.User{
		ID:        id,
		Name:      name,
		Email:     strings.ToLower(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

func (f *fakeUserDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	return f.users[id], nil
}

func (f *fakeUserDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUserDB) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func testUserService() (*UserService, *fakeUserDB) {
	fake := newFakeUserDB()
	// Minimum allowed cost keeps the test suite fast.
	svc := NewUserService(fake, &config.PasswordConfig{BcryptCost: 10})
	return svc, fake
}

func TestRegister(t *testing.T) {
	svc, _ := testUserService()

	user, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Artem",
		Email:    "artem@floworx.example",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Artem", user.Name)
	assert.Equal(t, "artem@floworx.example", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testUserService()

	req := &types.CreateUserRequest{Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.IsType(t, &ErrEmailAlreadyExists{}, err)
}

func TestLogin(t *testing.T) {
	svc, _ := testUserService()

	_, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), &types.LoginRequest{
		Email:    "artem@floworx.example",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Artem", user.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := testUserService()

	_, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email:    "artem@floworx.example",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := testUserService()

	_, err := svc.Login(context.Background(), &types.LoginRequest{
		Email:    "nobody@floworx.example",
		Password: "whatever",
	})
	require.Error(t, err)
	// Same generic error as a wrong password; no account enumeration.
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := testUserService()

	user, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "hunter2hunter2", "n3w-password!")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &types.LoginRequest{
		Email: "artem@floworx.example", Password: "n3w-password!",
	})
	assert.NoError(t, err)
}

func TestUpdatePasswordMismatch(t *testing.T) {
	svc, _ := testUserService()

	user, err := svc.Register(context.Background(), &types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), user.ID, "wrong-current", "n3w-password!")
	require.Error(t, err)
	assert.IsType(t, &ErrPasswordMismatch{}, err)
}

func TestUpdatePasswordUnknownUser(t *testing.T) {
	svc, _ := testUserService()

	err := svc.UpdatePassword(context.Background(), uuid.New(), "a", "b")
	require.Error(t, err)
	assert.IsType(t, &ErrUserNotFound{}, err)
}
