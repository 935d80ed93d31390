package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/pkg/notify"
	"github.com/abdout/souq/pkg/testdb"
	"github.com/abdout/souq/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ----- mocks -----

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateAccount(ctx context.Context, p gateway.AccountParams) (*gateway.Account, error) {
	args := m.Called(ctx, p)
	acct, _ := args.Get(0).(*gateway.Account)
	return acct, args.Error(1)
}

func (m *mockGateway) GetAccount(ctx context.Context, accountID string) (*gateway.Account, error) {
	args := m.Called(ctx, accountID)
	acct, _ := args.Get(0).(*gateway.Account)
	return acct, args.Error(1)
}

func (m *mockGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, p gateway.SessionParams) (*gateway.Session, error) {
	args := m.Called(ctx, p)
	sess, _ := args.Get(0).(*gateway.Session)
	return sess, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
	mu   sync.Mutex
	sent []notify.Message
}

func (m *mockNotifier) Dispatch(msg notify.Message) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.Called(msg)
}

func (m *mockNotifier) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.Kind)
	}
	return out
}

// ----- env -----

type env struct {
	db  *gorm.DB
	log *zap.Logger
	pol access.Policy
	cfg *configs.Config

	tenants    *repository.TenantRepository
	items      *repository.ItemRepository
	orders     *repository.OrderRepository
	users      *repository.UserRepository
	inventory  *repository.InventoryRepository
	categories *repository.CategoryRepository
	reviews    *repository.ReviewRepository

	gw       *mockGateway
	notifier *mockNotifier
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.New(t)
	n := &mockNotifier{}
	n.On("Dispatch", mock.Anything).Return()
	return &env{
		db:  db,
		log: zap.NewNop(),
		pol: access.NewTenantPolicy(),
		cfg: &configs.Config{
			Stripe:   configs.StripeConfig{Currency: "usd"},
			Platform: configs.PlatformConfig{FeePercentage: 10},
			App:      configs.AppConfig{URL: "http://localhost:3000", RootDomain: "localhost:3000"},
		},
		tenants:    repository.NewTenantRepository(db),
		items:      repository.NewItemRepository(db),
		orders:     repository.NewOrderRepository(db),
		users:      repository.NewUserRepository(db),
		inventory:  repository.NewInventoryRepository(db),
		categories: repository.NewCategoryRepository(db),
		reviews:    repository.NewReviewRepository(db),
		gw:         &mockGateway{},
		notifier:   n,
		now:        time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (e *env) orderService() *OrderService {
	s := NewOrderService(e.db, e.orders, e.items, e.tenants, e.users, e.inventory, e.pol, e.notifier, e.log)
	s.Now = func() time.Time { return e.now }
	return s
}

func (e *env) inventoryService() *InventoryService {
	return NewInventoryService(e.db, e.inventory, e.items, e.tenants, e.pol, e.log)
}

func (e *env) checkoutService() *CheckoutService {
	return NewCheckoutService(e.db, e.items, e.tenants, e.users, e.orders, e.gw, e.cfg, e.log)
}

func (e *env) onboardingService() *OnboardingService {
	return NewOnboardingService(e.db, e.tenants, e.users, e.gw, e.cfg, e.log)
}

func (e *env) tenantService(store *memBlob) *TenantService {
	s := NewTenantService(e.db, e.tenants, e.users, e.pol, store, e.log)
	s.Now = func() time.Time { return e.now }
	return s
}

func (e *env) itemService(store *memBlob) *ItemService {
	return NewItemService(e.items, e.tenants, e.categories, e.reviews, e.inventoryService(), e.pol, store, e.log)
}

// customer = user ธรรมดา, merchant = สมาชิกของร้าน
func customer(t *testing.T, e *env, email string) access.Actor {
	u := testdb.User(t, e.db, email, nil)
	return access.Actor{UserID: u.ID, Role: entity.RoleUser}
}

func merchant(t *testing.T, e *env, email string, tenantID uint) access.Actor {
	u := testdb.User(t, e.db, email, &tenantID)
	return access.Actor{UserID: u.ID, Role: entity.RoleUser, TenantID: &tenantID}
}

var superadmin = access.Actor{UserID: 999, Role: entity.RoleSuperAdmin}

func near() entity.Address {
	// ~2.2 km ทางเหนือของร้าน fixture
	return entity.Address{Street: "King Fahd Rd", City: "Riyadh", Coordinates: &entity.Coordinates{Lat: 24.7336, Lng: 46.6753}}
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

// memBlob เก็บไฟล์ไว้ใน memory
type memBlob struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemBlob() *memBlob { return &memBlob{files: map[string][]byte{}} }

func (m *memBlob) Put(_ context.Context, prefix, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/uploads/" + prefix + "/" + contentType
	m.files[url] = data
	return url, nil
}
