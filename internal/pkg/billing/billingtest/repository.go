// Package billingtest provides in-memory doubles for the billing package.
package billingtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
	"gorm.io/gorm"
)

type state struct {
	users    map[uint]models.User
	products map[string]models.Product
	orders   []models.PaymentOrder
	roles    map[uint]map[string]struct{}
	nextUser uint
	nextProd uint
	nextRow  uint
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[uint]models.User, len(s.users)),
		products: make(map[string]models.Product, len(s.products)),
		orders:   append([]models.PaymentOrder(nil), s.orders...),
		roles:    make(map[uint]map[string]struct{}, len(s.roles)),
		nextUser: s.nextUser,
		nextProd: s.nextProd,
		nextRow:  s.nextRow,
	}
	for id, u := range s.users {
		if u.PremiumExpiresAt != nil {
			t := *u.PremiumExpiresAt
			u.PremiumExpiresAt = &t
		}
		c.users[id] = u
	}
	for k, p := range s.products {
		c.products[k] = p
	}
	for id, set := range s.roles {
		cp := make(map[string]struct{}, len(set))
		for r := range set {
			cp[r] = struct{}{}
		}
		c.roles[id] = cp
	}
	return c
}

// Repository is an in-memory billing.Repository. Transactions are serialized
// and roll back on error, and order ids are unique like the real index.
type Repository struct {
	mu   *sync.Mutex
	data **state
	inTx bool

	faults *Faults
}

// Faults injects failures into a Repository.
type Faults struct {
	// SkipExistsCheck makes OrderExists always report false so duplicates
	// are caught by CreateOrder, as in a race between two deliveries.
	SkipExistsCheck bool
	OrderExistsErr  error
	CreateOrderErr  error
	FindProductErr  error
	FindUserErr     error
	LockUserErr     error
	UpdateExpiryErr error
	AttachRoleErr   error
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	s := &state{
		users:    map[uint]models.User{},
		products: map[string]models.Product{},
		roles:    map[uint]map[string]struct{}{},
	}
	return &Repository{mu: &sync.Mutex{}, data: &s, faults: &Faults{}}
}

// Faults returns the fault switches shared by the repository and its
// transactions.
func (r *Repository) Faults() *Faults {
	return r.faults
}

func (r *Repository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// AddUser stores u with a fresh id and returns the id.
func (r *Repository) AddUser(u models.User) uint {
	defer r.lock()()
	s := *r.data
	s.nextUser++
	u.ID = s.nextUser
	if u.Status == "" {
		u.Status = models.STATUS_ACTIVE
	}
	s.users[u.ID] = u
	return u.ID
}

// AddProduct stores p with a fresh id and returns the id.
func (r *Repository) AddProduct(p models.Product) uint {
	defer r.lock()()
	s := *r.data
	s.nextProd++
	p.ID = s.nextProd
	if p.Status == "" {
		p.Status = models.PRODUCT_STATUS_ACTIVE
	}
	s.products[p.ExternalID] = p
	return p.ID
}

// SoftDeleteProduct marks a product deleted.
func (r *Repository) SoftDeleteProduct(externalID string) {
	defer r.lock()()
	s := *r.data
	p, ok := s.products[externalID]
	if !ok {
		return
	}
	p.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	s.products[externalID] = p
}

// User returns a copy of the stored user.
func (r *Repository) User(id uint) models.User {
	defer r.lock()()
	return (*r.data).clone().users[id]
}

// Roles lists the role names attached to a user.
func (r *Repository) Roles(userID uint) []string {
	defer r.lock()()
	var names []string
	for name := range (*r.data).roles[userID] {
		names = append(names, name)
	}
	return names
}

// Orders returns a copy of the ledger in insertion order.
func (r *Repository) Orders() []models.PaymentOrder {
	defer r.lock()()
	return append([]models.PaymentOrder(nil), (*r.data).orders...)
}

// Order returns the ledger row for orderID.
func (r *Repository) Order(orderID string) (models.PaymentOrder, bool) {
	defer r.lock()()
	for _, o := range (*r.data).orders {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return models.PaymentOrder{}, false
}

func (r *Repository) OrderExists(ctx context.Context, orderID string) (bool, error) {
	if r.faults.OrderExistsErr != nil {
		return false, r.faults.OrderExistsErr
	}
	if r.faults.SkipExistsCheck {
		return false, nil
	}
	_, ok := r.Order(orderID)
	return ok, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *models.PaymentOrder) error {
	if r.faults.CreateOrderErr != nil {
		return r.faults.CreateOrderErr
	}
	defer r.lock()()
	s := *r.data
	for _, o := range s.orders {
		if o.OrderID == order.OrderID {
			return billing.ErrDuplicateOrder
		}
	}
	s.nextRow++
	now := time.Now().UTC()
	order.ID = s.nextRow
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders = append(s.orders, *order)
	return nil
}

func (r *Repository) FindProductByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	if r.faults.FindProductErr != nil {
		return nil, r.faults.FindProductErr
	}
	defer r.lock()()
	p, ok := (*r.data).products[strings.TrimSpace(externalID)]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.faults.FindUserErr != nil {
		return nil, r.faults.FindUserErr
	}
	defer r.lock()()
	want := strings.ToLower(strings.TrimSpace(email))
	var found *models.User
	for _, u := range (*r.data).users {
		if want == "" || strings.ToLower(u.Email) != want {
			continue
		}
		if found == nil || u.ID < found.ID {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (r *Repository) LockUser(ctx context.Context, userID uint) (*models.User, error) {
	if r.faults.LockUserErr != nil {
		return nil, r.faults.LockUserErr
	}
	defer r.lock()()
	u, ok := (*r.data).clone().users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *Repository) UpdatePremiumExpiry(ctx context.Context, userID uint, expiresAt time.Time) error {
	if r.faults.UpdateExpiryErr != nil {
		return r.faults.UpdateExpiryErr
	}
	defer r.lock()()
	s := *r.data
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PremiumExpiresAt = &expiresAt
	s.users[userID] = u
	return nil
}

func (r *Repository) AttachRole(ctx context.Context, userID uint, role string) error {
	if r.faults.AttachRoleErr != nil {
		return r.faults.AttachRoleErr
	}
	defer r.lock()()
	s := *r.data
	if s.roles[userID] == nil {
		s.roles[userID] = map[string]struct{}{}
	}
	s.roles[userID][role] = struct{}{}
	return nil
}

// Transaction holds the repository lock for the whole of fn and restores the
// previous state if fn fails.
func (r *Repository) Transaction(ctx context.Context, fn func(tx billing.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := (*r.data).clone()
	tx := &Repository{mu: r.mu, data: r.data, inTx: true, faults: r.faults}
	if err := fn(tx); err != nil {
		*r.data = snapshot
		return err
	}
	return nil
}

var (
	_ billing.Repository = (*Repository)(nil)
	_ entitlements.Store = (*Repository)(nil)
)
