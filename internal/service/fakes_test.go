package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ecobazaar/internal/config"
	"ecobazaar/internal/models"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/security"
	"ecobazaar/internal/storage"
	"ecobazaar/internal/validation"
)

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]models.User
	saves   int
	saveErr error
	// onCreate, when set, runs before the insert and can fail it.
	onCreate func(models.User) error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]models.User)}
}

func (m *memoryUsers) Create(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onCreate != nil {
		if err := m.onCreate(user); err != nil {
			return err
		}
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memoryUsers) FindByResetToken(_ context.Context, tokenHash []byte) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if len(tokenHash) > 0 && bytes.Equal(u.ResetTokenHash, tokenHash) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) Save(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return models.User{}, m.saveErr
	}
	if _, ok := m.byID[user.ID]; !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	m.saves++
	m.byID[user.ID] = user
	return user, nil
}

func (m *memoryUsers) SetResetToken(_ context.Context, userID string, tokenHash []byte, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	m.saves++
	m.byID[userID] = u.WithResetToken(tokenHash, expiry)
	return nil
}

func (m *memoryUsers) byEmail(email string) models.User {
	u, _ := m.FindByEmail(context.Background(), email)
	return u
}

type sentLink struct {
	Email string
	Token string
}

type recordingSender struct {
	sent []sentLink
	err  error
}

func (r *recordingSender) SendResetLink(_ context.Context, email string, token string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentLink{Email: email, Token: token})
	return nil
}

func (r *recordingSender) last() sentLink {
	if len(r.sent) == 0 {
		return sentLink{}
	}
	return r.sent[len(r.sent)-1]
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testArgon2 = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type authFixture struct {
	svc    *AuthService
	users  *memoryUsers
	sender *recordingSender
	clock  *fakeClock
}

func newAuthFixture() *authFixture {
	users := newMemoryUsers()
	sender := &recordingSender{}
	clock := &fakeClock{t: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
	sec := config.SecurityConfig{
		JWTAccessSecret: "test-secret",
		JWTAccessTTL:    time.Hour,
		ResetTokenTTL:   15 * time.Minute,
	}

	tokens := NewTokenIssuer(users, sec.ResetTokenTTL, clock.Now)
	svc := NewAuthService(
		users,
		security.NewPasswordHasher(testArgon2),
		tokens,
		sender,
		validation.New(),
		sec,
		zerolog.Nop(),
	)
	return &authFixture{svc: svc, users: users, sender: sender, clock: clock}
}

type memoryProducts struct {
	byID map[string]models.Product
	seq  int
}

func newMemoryProducts(seed ...models.Product) *memoryProducts {
	m := &memoryProducts{byID: make(map[string]models.Product)}
	for _, p := range seed {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memoryProducts) Create(_ context.Context, p models.Product) (models.Product, error) {
	m.seq++
	p.CreatedAt = time.Unix(int64(m.seq), 0)
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return p, nil
}

func (m *memoryProducts) GetByID(_ context.Context, id string) (models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *memoryProducts) List(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryProducts) Update(_ context.Context, p models.Product) (models.Product, error) {
	if _, ok := m.byID[p.ID]; !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	m.byID[p.ID] = p
	return p, nil
}

func (m *memoryProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

type memoryOrders struct {
	orders []models.Order
	err    error
}

func (m *memoryOrders) Create(_ context.Context, order models.Order) error {
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *memoryOrders) ListByUserEmail(_ context.Context, email string) ([]models.Order, error) {
	var out []models.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserEmail == email {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

type memoryImages struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryImages() *memoryImages {
	return &memoryImages{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryImages) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	if m.err != nil {
		return storage.ObjectInfo{}, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if int64(len(data)) != size {
		return storage.ObjectInfo{}, errors.New("size mismatch")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return storage.ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

type recordingQueue struct {
	tasks []queue.Task
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, task queue.Task) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}
