package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ecobazaar/internal/config"
	"ecobazaar/internal/models"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/security"
	"ecobazaar/internal/service"
	"ecobazaar/internal/storage"
	"ecobazaar/internal/validation"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func (m *memUsers) find(match func(models.User) bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user models.User) error {
	if _, err := m.find(func(u models.User) bool { return u.Email == user.Email }); err == nil {
		return repository.ErrDuplicateEmail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.ID] = user
	return nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) FindByResetToken(_ context.Context, hash []byte) (models.User, error) {
	return m.find(func(u models.User) bool { return len(hash) > 0 && bytes.Equal(u.ResetTokenHash, hash) })
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUsers) Save(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) SetResetToken(_ context.Context, userID string, tokenHash []byte, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	m.byID[userID] = u.WithResetToken(tokenHash, expiry)
	return nil
}

type memProducts struct {
	byID map[string]models.Product
	seq  int64
}

func (m *memProducts) Create(_ context.Context, p models.Product) (models.Product, error) {
	m.seq++
	p.CreatedAt = time.Unix(m.seq, 0).UTC()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return p, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *memProducts) List(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memProducts) Update(_ context.Context, p models.Product) (models.Product, error) {
	if _, ok := m.byID[p.ID]; !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	m.byID[p.ID] = p
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

type memOrders struct {
	orders []models.Order
}

func (m *memOrders) Create(_ context.Context, o models.Order) error {
	m.orders = append(m.orders, o)
	return nil
}

func (m *memOrders) ListByUserEmail(_ context.Context, email string) ([]models.Order, error) {
	var out []models.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserEmail == email {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

type memObjects struct {
	data  map[string][]byte
	types map[string]string
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.data[key] = b
	m.types[key] = contentType
	return storage.ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

func (m *memObjects) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: m.types[key]}, nil
}

type noopQueue struct{}

func (noopQueue) Enqueue(context.Context, queue.Task) error { return nil }

type captureSender struct {
	tokens []string
	err    error
}

func (s *captureSender) SendResetLink(_ context.Context, _ string, token string) error {
	if s.err != nil {
		return s.err
	}
	s.tokens = append(s.tokens, token)
	return nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type fixture struct {
	engine  *gin.Engine
	users   *memUsers
	sender  *captureSender
	objects *memObjects
	now     time.Time
	db      *pinger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		users:   &memUsers{byID: map[string]models.User{}},
		sender:  &captureSender{},
		objects: &memObjects{data: map[string][]byte{}, types: map[string]string{}},
		now:     time.Now(),
		db:      &pinger{},
	}

	cfg := &config.AppConfig{
		Environment: "test",
		HTTP:        config.HTTPConfig{MaxUploadBytes: 1 << 20},
		Security: config.SecurityConfig{
			JWTAccessSecret: "handler-test-secret",
			JWTAccessTTL:    time.Hour,
			ResetTokenTTL:   15 * time.Minute,
		},
	}
	v := validation.New()
	log := zerolog.Nop()

	tokens := service.NewTokenIssuer(f.users, cfg.Security.ResetTokenTTL, func() time.Time { return f.now })
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	services := Services{
		Auth:     service.NewAuthService(f.users, hasher, tokens, f.sender, v, cfg.Security, log),
		Products: service.NewProductService(&memProducts{byID: map[string]models.Product{}}, v, log),
		Orders:   service.NewOrderService(&memOrders{}, v, log),
		Uploads:  service.NewUploadService(f.objects, noopQueue{}, "uploads", cfg.HTTP.MaxUploadBytes, log),
	}

	h := NewHandlerSet(log, cfg, services, f.objects, f.db, nil)
	f.engine = gin.New()
	h.RegisterRoutes(f.engine.Group("/api"))
	h.RegisterPublic(&f.engine.RouterGroup)
	return f
}

func (f *fixture) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// signUp registers a user over HTTP and returns an access token for it.
func (f *fixture) signUp(t *testing.T, email, role string) string {
	t.Helper()
	w := f.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "Abcd1234!", "fullName": "Test Person", "role": role,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/auth/token", map[string]string{"email": email, "password": "Abcd1234!"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errSMTP = errors.New("smtp unavailable")
