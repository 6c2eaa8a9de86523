package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/bakery/internal/events"
	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/notify"
)

type memCarts struct {
	mu       sync.Mutex
	items    map[uint][]models.CartItem
	getErr   error
	clearErr error
}

func newMemCarts() *memCarts { return &memCarts{items: map[uint][]models.CartItem{}} }

func (m *memCarts) add(userID, productID uint, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[userID] = append(m.items[userID], models.CartItem{UserID: userID, ProductID: productID, Quantity: qty})
}

func (m *memCarts) GetCart(_ context.Context, userID uint) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return append([]models.CartItem(nil), m.items[userID]...), nil
}

func (m *memCarts) ClearCart(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	n := int64(len(m.items[userID]))
	delete(m.items, userID)
	return n, nil
}

type memCatalog struct {
	mu         sync.Mutex
	products   map[uint]*models.Product
	decrements int
}

func newMemCatalog(ps ...*models.Product) *memCatalog {
	c := &memCatalog{products: map[uint]*models.Product{}}
	for _, p := range ps {
		c.products[p.ID] = p
	}
	return c
}

func (c *memCatalog) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *memCatalog) DecrementStock(_ context.Context, id uint, qty int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decrements++
	p, ok := c.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (c *memCatalog) stock(id uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}

type memOrders struct {
	mu        sync.Mutex
	nextID    uint
	orders    map[uint]*models.Order
	items     map[uint][]models.OrderItem
	emails    map[uint]string
	createErr error
	unassign  error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[uint]*models.Order{}, items: map[uint][]models.OrderItem{}, emails: map[uint]string{}}
}

func (m *memOrders) CreateOrder(_ context.Context, o *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	o.ID = m.nextID
	o.CreatedAt = time.Now().UTC()
	cp := *o
	m.orders[o.ID] = &cp
	for i := range items {
		items[i].OrderID = o.ID
	}
	m.items[o.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (m *memOrders) put(o models.Order, email string) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = m.nextID
	m.orders[o.ID] = &o
	m.emails[o.ID] = email
	return &o
}

func (m *memOrders) GetOrder(_ context.Context, id uint) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), m.items[id]...)
	return &cp, nil
}

func (m *memOrders) ListOrders(_ context.Context, q models.OrderQuery) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if q.UserID != 0 && o.UserID != q.UserID {
			continue
		}
		if q.DriverID != 0 && (o.DriverID == nil || *o.DriverID != q.DriverID) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) SetStatus(_ context.Context, id uint, st models.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = st
	return true, nil
}

func (m *memOrders) SetDriver(_ context.Context, id, driverID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	d := driverID
	o.DriverID = &d
	return true, nil
}

func (m *memOrders) SetDeliveryStatus(_ context.Context, id, driverID uint, st models.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DriverID == nil || *o.DriverID != driverID {
		return false, nil
	}
	o.Status = st
	return true, nil
}

func (m *memOrders) UnassignDriverFromAll(_ context.Context, driverID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unassign != nil {
		return 0, m.unassign
	}
	var n int64
	for _, o := range m.orders {
		if o.DriverID != nil && *o.DriverID == driverID {
			o.DriverID = nil
			o.Status = models.StatusPending
			n++
		}
	}
	return n, nil
}

func (m *memOrders) CustomerEmail(_ context.Context, id uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emails[id], nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type sentMail struct {
	kind string
	to   string
	data any
}

type recMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recMailer) record(kind, to string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{kind: kind, to: to, data: data})
	return r.err
}

func (r *recMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	return r.record("otp", to, code)
}

func (r *recMailer) SendInvoice(_ context.Context, to string, inv notify.Invoice) error {
	return r.record("invoice", to, inv)
}

func (r *recMailer) SendDriverPromotion(_ context.Context, to string) error {
	return r.record("promotion", to, nil)
}

func (r *recMailer) SendDeliveryUpdate(_ context.Context, to string, u notify.DeliveryUpdate) error {
	return r.record("delivery", to, u)
}

func (r *recMailer) all() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMail(nil), r.sent...)
}

type recPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recPublisher) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var errStorage = errors.New("connection reset by peer")
