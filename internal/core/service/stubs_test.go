package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Create enforces username and email uniqueness like the real stores.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.users[c.Username] = c
	return cloneUser(c), nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product
	err      error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *stubProductRepo) seed(p domain.Product) *domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = &p
	c := p
	return &c
}

func (r *stubProductRepo) stock(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *stubProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubProductRepo) sorted() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *stubProductRepo) GetAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), r.err
}

func (r *stubProductRepo) GetPaged(_ context.Context, page domain.PageRequest) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	all := r.sorted()
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	p.ID = r.nextID
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *stubProductRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// stubOrderRepo shares the product stub so stock changes are observable. The
// whole Create runs under the product lock, mirroring a serialized transaction.
type stubOrderRepo struct {
	products  *stubProductRepo
	mu        sync.Mutex
	nextID    int64
	orders    map[int64]*domain.Order
	createErr error
}

func newStubOrderRepo(products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{products: products, orders: make(map[int64]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order, policy domain.StockPolicy) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	next := make(map[int64]int)
	for _, it := range order.Items {
		p, ok := r.products.products[it.ProductID]
		if !ok {
			continue
		}
		current, seen := next[p.ID]
		if !seen {
			current = p.Stock
		}
		remaining, err := policy.Decrement(current, it.Quantity)
		if err != nil {
			return err
		}
		next[p.ID] = remaining
	}
	for id, stock := range next {
		r.products.products[id].Stock = stock
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
	}
	c := *order
	c.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &c
	return nil
}

func (r *stubOrderRepo) expand(o *domain.Order) *domain.Order {
	c := *o
	c.Items = make([]domain.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if p, ok := r.products.products[it.ProductID]; ok {
			pc := *p
			it.Product = &pc
		}
		c.Items[i] = it
	}
	return &c
}

func (r *stubOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.expand(o), nil
}

func (r *stubOrderRepo) GetAll(_ context.Context) ([]*domain.Order, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, r.expand(o))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// plainHasher prefixes passwords; good enough to prove the
// clear text is never persisted.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type captureSigner struct {
	claims []ports.TokenClaims
}

func (s *captureSigner) Sign(c ports.TokenClaims) (string, error) {
	s.claims = append(s.claims, c)
	return "token-for-" + c.Subject, nil
}

func (s *captureSigner) Verify(string) (*ports.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

type memoryGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released []string
}

func newMemoryGuard() *memoryGuard { return &memoryGuard{held: make(map[string]bool)} }

func (g *memoryGuard) Claim(_ context.Context, sig string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.held[sig] {
		return false, nil
	}
	g.held[sig] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, sig string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, sig)
	g.released = append(g.released, sig)
	return nil
}

type recordingPublisher struct {
	published []ports.OrderDTO
}

func (p *recordingPublisher) Publish(o ports.OrderDTO) { p.published = append(p.published, o) }
