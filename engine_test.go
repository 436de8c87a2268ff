package betterauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockUserStore struct {
	mu      sync.Mutex
	users   map[string]*User
	nextID  int
	findErr error

	createErr error
	updateErr error

	findByPhoneCalls int
	createCalls      int
	updateCalls      int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[string]*User{}}
}

func (m *mockUserStore) addUser(u User) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		m.nextID++
		u.ID = "user-" + strconv.Itoa(m.nextID)
	}
	m.users[u.ID] = &u
	return &u
}

func (m *mockUserStore) FindUserByPhoneNumber(_ context.Context, phoneNumber string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByPhoneCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.PhoneNumber == phoneNumber {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) FindUserByID(_ context.Context, userID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, input CreateUserInput) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	u := &User{
		ID:                  "user-" + strconv.Itoa(m.nextID),
		Email:               input.Email,
		Name:                input.Name,
		PhoneNumber:         input.PhoneNumber,
		PhoneNumberVerified: input.PhoneNumberVerified,
	}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, userID string, input UpdateUserInput) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user %s", userID)
	}
	if input.PhoneNumber != nil {
		u.PhoneNumber = *input.PhoneNumber
	}
	if input.PhoneNumberVerified != nil {
		u.PhoneNumberVerified = *input.PhoneNumberVerified
	}
	copied := *u
	return &copied, nil
}

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string][]Account

	findErr   error
	updateErr error

	updatePasswordCalls int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: map[string][]Account{}}
}

func (m *mockAccountStore) setPassword(userID, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = []Account{{
		ID:           "acct-" + userID,
		UserID:       userID,
		ProviderID:   CredentialProviderID,
		PasswordHash: hash,
	}}
}

func (m *mockAccountStore) FindAccountsByUserID(_ context.Context, userID string) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return append([]Account(nil), m.accounts[userID]...), nil
}

func (m *mockAccountStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, acct := range m.accounts[userID] {
		if acct.ProviderID == CredentialProviderID {
			m.accounts[userID][i].PasswordHash = passwordHash
			return nil
		}
	}
	m.accounts[userID] = append(m.accounts[userID], Account{
		ID:           "acct-" + userID,
		UserID:       userID,
		ProviderID:   CredentialProviderID,
		PasswordHash: passwordHash,
	})
	return nil
}

type mockSessionService struct {
	mu       sync.Mutex
	sessions map[string]*Session
	nextID   int

	createErr error

	createCalls int
}

func newMockSessionService() *mockSessionService {
	return &mockSessionService{sessions: map[string]*Session{}}
}

func (m *mockSessionService) CreateSession(_ context.Context, userID string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	sess := &Session{
		ID:        "sess-" + strconv.Itoa(m.nextID),
		UserID:    userID,
		IP:        opts.IP,
		UserAgent: opts.UserAgent,
		Remember:  opts.Remember,
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *mockSessionService) GetSession(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

func (m *mockSessionService) Token(sess *Session) (string, error) {
	return sess.ID, nil
}

func (m *mockSessionService) SetSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{Name: "test_session", Value: sess.ID})
}

func (m *mockSessionService) TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie("test_session")
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type testHasher struct{}

func (testHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (testHasher) Verify(password, encodedHash string) (bool, error) {
	return encodedHash == "hashed:"+password, nil
}

type testEnv struct {
	engine   *Engine
	users    *mockUserStore
	accounts *mockAccountStore
	sessions *mockSessionService
	store    *RedisVerificationStore
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Delivery.SendVerificationOTP = func(context.Context, string, string) (*DeliveryVeto, error) {
		return nil, nil
	}
	cfg.Delivery.SendPasswordResetOTP = func(context.Context, string, string) error {
		return nil
	}
	if mutate != nil {
		mutate(&cfg)
	}

	users := newMockUserStore()
	accounts := newMockAccountStore()
	sessions := newMockSessionService()
	store := NewVerificationStore(newTestRedis(t), "", cfg.OTP.Retention)

	engine, err := New().
		WithConfig(cfg).
		WithUserStore(users).
		WithAccountStore(accounts).
		WithVerificationStore(store).
		WithPasswordHasher(testHasher{}).
		WithSessionService(sessions).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	clock := newTestClock()
	engine.now = clock.Now
	store.now = clock.Now

	return &testEnv{
		engine:   engine,
		users:    users,
		accounts: accounts,
		sessions: sessions,
		store:    store,
		clock:    clock,
	}
}
