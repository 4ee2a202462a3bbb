// Package testutil provides in-memory stand-ins for the record store, the
// payment gateway and the notification sender.  They follow the same
// sentinel-error contract as the MySQL repositories.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-shop-backend/internal/model"
	"github.com/iliyamo/tour-shop-backend/internal/repository"
	"github.com/iliyamo/tour-shop-backend/internal/utils"
)

// Mem holds every record kind behind one mutex so that booking confirmation
// can update a booking and its tour atomically, like the SQL transaction.
type Mem struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	tours    map[string]model.Tour
	orders   map[string]model.Order
	products map[string]model.Product
	users    map[string]model.User
	carts    map[string]model.Cart
}

func NewMem() *Mem {
	return &Mem{
		bookings: map[string]model.Booking{},
		tours:    map[string]model.Tour{},
		orders:   map[string]model.Order{},
		products: map[string]model.Product{},
		users:    map[string]model.User{},
		carts:    map[string]model.Cart{},
	}
}

func (m *Mem) Bookings() *MemBookings { return &MemBookings{m} }
func (m *Mem) Tours() *MemTours       { return &MemTours{m} }
func (m *Mem) Orders() *MemOrders     { return &MemOrders{m} }
func (m *Mem) Products() *MemProducts { return &MemProducts{m} }
func (m *Mem) Users() *MemUsers       { return &MemUsers{m} }

func newID(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = time.Now().UTC()
	}
}

func cloneCart(c model.Cart) model.Cart {
	out := model.Cart{}
	for pid, sizes := range c {
		for size, q := range sizes {
			out.Set(pid, size, q)
		}
	}
	return out
}

type MemBookings struct{ m *Mem }

func (r *MemBookings) Create(_ context.Context, b *model.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	newID(&b.ID, &b.CreatedAt)
	r.m.bookings[b.ID] = *b
	return nil
}

func (r *MemBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *MemBookings) SetGatewayOrder(_ context.Context, id, orderID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.GatewayOrderID = orderID
	r.m.bookings[id] = b
	return nil
}

func (r *MemBookings) ConfirmPaid(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if b.Payment {
		return false, nil
	}
	if b.TourID != "" {
		t, ok := r.m.tours[b.TourID]
		if !ok || t.AvailableSeats < b.Guests {
			return false, repository.ErrInsufficientSeats
		}
		t.AvailableSeats -= b.Guests
		r.m.tours[t.ID] = t
	}
	b.Payment = true
	b.Status = model.BookingConfirmed
	r.m.bookings[id] = b
	return true, nil
}

func (r *MemBookings) UpdateStatus(_ context.Context, id, status string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	r.m.bookings[id] = b
	return nil
}

func (r *MemBookings) List(context.Context) ([]model.Booking, error) {
	return r.filter(func(model.Booking) bool { return true }), nil
}

func (r *MemBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (r *MemBookings) ListByTour(_ context.Context, tourID string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.TourID == tourID }), nil
}

func (r *MemBookings) Count() int {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.bookings)
}

func (r *MemBookings) filter(keep func(model.Booking) bool) []model.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range r.m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type MemTours struct{ m *Mem }

func (r *MemTours) Create(_ context.Context, t *model.Tour) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	newID(&t.ID, &t.CreatedAt)
	r.m.tours[t.ID] = *t
	return nil
}

func (r *MemTours) GetByID(_ context.Context, id string) (*model.Tour, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tours[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *MemTours) List(_ context.Context, status string) ([]model.Tour, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Tour{}
	for _, t := range r.m.tours {
		if status == "" || strings.EqualFold(t.Status, status) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *MemTours) Update(_ context.Context, t *model.Tour, expectedAvailable int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.tours[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.AvailableSeats != expectedAvailable {
		return repository.ErrConflict
	}
	t.CreatedAt = cur.CreatedAt
	r.m.tours[t.ID] = *t
	return nil
}

func (r *MemTours) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tours[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.tours, id)
	return nil
}

type MemOrders struct{ m *Mem }

func (r *MemOrders) Create(_ context.Context, o *model.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	newID(&o.ID, &o.CreatedAt)
	r.m.orders[o.ID] = *o
	return nil
}

func (r *MemOrders) GetByID(_ context.Context, id string) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *MemOrders) GetByGatewayRef(_ context.Context, ref string) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.orders {
		if o.GatewayRef == ref {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemOrders) SetGatewayRef(_ context.Context, id, ref string) error {
	return r.update(id, func(o *model.Order) { o.GatewayRef = ref })
}

func (r *MemOrders) MarkPaid(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if o.Payment {
		return false, nil
	}
	o.Payment = true
	r.m.orders[id] = o
	return true, nil
}

func (r *MemOrders) DeleteUnpaid(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Payment {
		return repository.ErrConflict
	}
	delete(r.m.orders, id)
	return nil
}

func (r *MemOrders) UpdateStatus(_ context.Context, id, status string) error {
	return r.update(id, func(o *model.Order) { o.Status = status })
}

func (r *MemOrders) List(context.Context) ([]model.Order, error) {
	return r.filter(func(model.Order) bool { return true }), nil
}

func (r *MemOrders) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *MemOrders) update(id string, fn func(*model.Order)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&o)
	r.m.orders[id] = o
	return nil
}

func (r *MemOrders) filter(keep func(model.Order) bool) []model.Order {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type MemProducts struct{ m *Mem }

func (r *MemProducts) Create(_ context.Context, p *model.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	newID(&p.ID, &p.CreatedAt)
	r.m.products[p.ID] = *p
	return nil
}

func (r *MemProducts) GetByID(_ context.Context, id string) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *MemProducts) List(context.Context) ([]model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemProducts) Update(_ context.Context, p *model.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.m.products[p.ID] = *p
	return nil
}

func (r *MemProducts) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.products, id)
	return nil
}

// MemUsers stores users and their carts.
type MemUsers struct{ m *Mem }

func (r *MemUsers) Add(u model.User) model.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	newID(&u.ID, &u.CreatedAt)
	r.m.users[u.ID] = u
	r.m.carts[u.ID] = model.Cart{}
	return u
}

func (r *MemUsers) Create(_ context.Context, name, email, password, role string, cost int) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	for _, u := range r.m.users {
		if u.Email == email {
			r.m.mu.Unlock()
			return nil, repository.ErrEmailExists
		}
	}
	r.m.mu.Unlock()
	u := r.Add(model.User{Name: name, Email: email, PasswordHash: hash, Role: role})
	return &u, nil
}

func (r *MemUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *MemUsers) GetCart(_ context.Context, userID string) (model.Cart, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCart(c), nil
}

func (r *MemUsers) SaveCart(_ context.Context, userID string, cart model.Cart) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.carts[userID]; !ok {
		return repository.ErrNotFound
	}
	r.m.carts[userID] = cloneCart(cart)
	return nil
}

func (r *MemUsers) ClearCart(ctx context.Context, userID string) error {
	return r.SaveCart(ctx, userID, model.Cart{})
}
