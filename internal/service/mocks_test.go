package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"shoe-storefront/internal/cache"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/events"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var errStoreDown = errors.New("store unavailable")

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	u := *user
	m.users[user.Email] = &u
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			u := *user
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			u := *user
			m.users[email] = &u
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockAddressRepository struct {
	addresses []*domain.Address
}

func (m *mockAddressRepository) Create(ctx context.Context, address *domain.Address) error {
	a := *address
	m.addresses = append(m.addresses, &a)
	return nil
}

func (m *mockAddressRepository) Update(ctx context.Context, address *domain.Address) error {
	for _, a := range m.addresses {
		if a.ID == address.ID && a.UserID == address.UserID {
			isDefault := a.IsDefault
			*a = *address
			a.IsDefault = isDefault
			return nil
		}
	}
	return repository.ErrAddressNotFound
}

func (m *mockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	before := len(m.addresses)
	m.addresses = lo.Reject(m.addresses, func(a *domain.Address, _ int) bool {
		return a.ID == id && a.UserID == userID
	})
	if len(m.addresses) == before {
		return repository.ErrAddressNotFound
	}
	return nil
}

func (m *mockAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	for _, a := range m.addresses {
		if a.ID == id && a.UserID == userID {
			c := *a
			return &c, nil
		}
	}
	return nil, repository.ErrAddressNotFound
}

func (m *mockAddressRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	out := []*domain.Address{}
	for _, a := range m.addresses {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

func (m *mockAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.FindByID(ctx, userID, id); err != nil {
		return err
	}
	for _, a := range m.addresses {
		if a.UserID == userID {
			a.IsDefault = a.ID == id
		}
	}
	return nil
}

type mockSizeRepository struct {
	sizes []*domain.Size
}

func (m *mockSizeRepository) Create(ctx context.Context, size *domain.Size) error {
	m.sizes = append(m.sizes, size)
	return nil
}

func (m *mockSizeRepository) Update(ctx context.Context, size *domain.Size) error { return nil }

func (m *mockSizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.sizes = lo.Reject(m.sizes, func(s *domain.Size, _ int) bool { return s.ID == id })
	return nil
}

func (m *mockSizeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Size, error) {
	if s, ok := lo.Find(m.sizes, func(s *domain.Size) bool { return s.ID == id }); ok {
		return s, nil
	}
	return nil, repository.ErrSizeNotFound
}

func (m *mockSizeRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Size, error) {
	return lo.Filter(m.sizes, func(s *domain.Size, _ int) bool { return s.IsActive || !activeOnly }), nil
}

type mockColorRepository struct {
	colors []*domain.Color
	lists  int
}

func (m *mockColorRepository) Create(ctx context.Context, color *domain.Color) error {
	m.colors = append(m.colors, color)
	return nil
}

func (m *mockColorRepository) Update(ctx context.Context, color *domain.Color) error { return nil }

func (m *mockColorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.colors = lo.Reject(m.colors, func(c *domain.Color, _ int) bool { return c.ID == id })
	return nil
}

func (m *mockColorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Color, error) {
	if c, ok := lo.Find(m.colors, func(c *domain.Color) bool { return c.ID == id }); ok {
		return c, nil
	}
	return nil, repository.ErrColorNotFound
}

func (m *mockColorRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Color, error) {
	m.lists++
	return lo.Filter(m.colors, func(c *domain.Color, _ int) bool { return c.IsActive || !activeOnly }), nil
}

type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if c, ok := lo.Find(m.categories, func(c *domain.Category) bool { return c.ID == id }); ok {
		return c, nil
	}
	return nil, repository.ErrCategoryNotFound
}

// mockProductRepository keeps products in creation order and hands out
// copies so services cannot mutate stored rows.
type mockProductRepository struct {
	products  []*domain.Product
	createErr error
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Sizes = append([]string(nil), p.Sizes...)
	return &c
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.products = append(m.products, cloneProduct(product))
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	for i, p := range m.products {
		if p.ID == product.ID {
			updated := cloneProduct(product)
			updated.IsChild = p.IsChild
			updated.ParentsID = p.ParentsID
			updated.CreatedAt = p.CreatedAt
			m.products[i] = updated
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	for _, p := range m.products {
		if p.ID == id {
			p.IsActive = active
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, _ := m.DeleteMany(ctx, []uuid.UUID{id})
	if n == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (m *mockProductRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	before := len(m.products)
	m.products = lo.Reject(m.products, func(p *domain.Product, _ int) bool { return lo.Contains(ids, p.ID) })
	return before - len(m.products), nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return cloneProduct(p), nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if lo.Contains(ids, p.ID) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (m *mockProductRepository) FindFamilies(ctx context.Context, parentIDs []uuid.UUID) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if lo.Contains(parentIDs, p.ID) || (p.ParentsID != nil && lo.Contains(parentIDs, *p.ParentsID)) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.ParentsOnly && p.IsChild {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return out, len(out), nil
}

type mockBasketRepository struct {
	items  []domain.BasketItem
	writes int
}

func (m *mockBasketRepository) Add(ctx context.Context, item *domain.BasketItem) (*domain.BasketItem, error) {
	m.writes++
	for i := range m.items {
		if m.items[i].UserID == item.UserID && m.items[i].ProductID == item.ProductID {
			m.items[i].Quantity += item.Quantity
			stored := m.items[i]
			return &stored, nil
		}
	}
	m.items = append(m.items, *item)
	return item, nil
}

func (m *mockBasketRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	m.writes++
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].ProductID == productID {
			m.items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrBasketItemNotFound
}

func (m *mockBasketRepository) Find(ctx context.Context, userID, productID uuid.UUID) (*domain.BasketItem, error) {
	for _, item := range m.items {
		if item.UserID == userID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, repository.ErrBasketItemNotFound
}

func (m *mockBasketRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.BasketItem, error) {
	return lo.Filter(m.items, func(i domain.BasketItem, _ int) bool { return i.UserID == userID }), nil
}

func (m *mockBasketRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	m.writes++
	before := len(m.items)
	m.items = lo.Reject(m.items, func(i domain.BasketItem, _ int) bool {
		return i.UserID == userID && i.ProductID == productID
	})
	if len(m.items) == before {
		return repository.ErrBasketItemNotFound
	}
	return nil
}

func (m *mockBasketRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	m.writes++
	m.items = lo.Reject(m.items, func(i domain.BasketItem, _ int) bool { return i.UserID == userID })
	return nil
}

func (m *mockBasketRepository) Consume(ctx context.Context, userID uuid.UUID, items []domain.BasketItem) error {
	m.writes++
	for _, ordered := range items {
		for i := range m.items {
			if m.items[i].UserID == userID && m.items[i].ProductID == ordered.ProductID {
				m.items[i].Quantity -= ordered.Quantity
			}
		}
	}
	m.items = lo.Reject(m.items, func(i domain.BasketItem, _ int) bool { return i.UserID == userID && i.Quantity <= 0 })
	return nil
}

type mockWishlistRepository struct {
	items []domain.WishlistItem
}

func (m *mockWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) (bool, error) {
	if lo.ContainsBy(m.items, func(i domain.WishlistItem) bool {
		return i.UserID == item.UserID && i.ProductID == item.ProductID
	}) {
		return false, nil
	}
	m.items = append([]domain.WishlistItem{*item}, m.items...)
	return true, nil
}

func (m *mockWishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	before := len(m.items)
	m.items = lo.Reject(m.items, func(i domain.WishlistItem, _ int) bool {
		return i.UserID == userID && i.ProductID == productID
	})
	if len(m.items) == before {
		return repository.ErrWishlistItemNotFound
	}
	return nil
}

func (m *mockWishlistRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistItem, error) {
	return lo.Filter(m.items, func(i domain.WishlistItem, _ int) bool { return i.UserID == userID }), nil
}

type mockOrderRepository struct {
	orders    []*domain.Order
	createErr error
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	o := *order
	m.orders = append(m.orders, &o)
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			c := *o
			return &c, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return lo.Filter(m.orders, func(o *domain.Order, _ int) bool { return o.UserID == userID }), nil
}

func (m *mockOrderRepository) List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return lo.Filter(m.orders, func(o *domain.Order, _ int) bool { return status == "" || o.Status == status }), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.OrderStatus, change domain.StatusChange) error {
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.Status != from {
			return repository.ErrOrderStatusConflict
		}
		applyStatusChange(o, change)
		return nil
	}
	return repository.ErrOrderNotFound
}

type mockContentRepository struct {
	docs   map[string][]byte
	locked []string
}

func newMockContentRepository() *mockContentRepository {
	return &mockContentRepository{docs: map[string][]byte{}}
}

func (m *mockContentRepository) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.docs[key]
	if !ok {
		return repository.ErrContentNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *mockContentRepository) GetForUpdate(ctx context.Context, key string, dest interface{}) error {
	m.locked = append(m.locked, key)
	return m.Get(ctx, key, dest)
}

func (m *mockContentRepository) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[key] = data
	return nil
}

// fakeTransactor runs fn directly and counts calls. onBegin, when set, runs
// before fn.
type fakeTransactor struct {
	calls   int
	onBegin func()
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.onBegin != nil {
		f.onBegin()
	}
	return fn(ctx)
}

// memoryCache is a JSON round-tripping Cache backed by a map.
type memoryCache struct {
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

type recordingNotifier struct {
	created []uuid.UUID
	changed []domain.OrderStatus
	err     error
}

func (n *recordingNotifier) OrderCreated(ctx context.Context, order *domain.Order) error {
	n.created = append(n.created, order.ID)
	return n.err
}

func (n *recordingNotifier) OrderStatusChanged(ctx context.Context, order *domain.Order) error {
	n.changed = append(n.changed, order.Status)
	return n.err
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }
