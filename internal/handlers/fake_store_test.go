package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/store"
)

// memStore is an in-memory stand-in for the MySQL store. Stock calls behave
// like the stored procedures: deduct refuses to go below zero.
type memStore struct {
	mu       sync.Mutex
	products map[int64]*models.Product
	orders   map[int64]*models.Order
	nextID   int64

	stockCalls    []string
	failVariation int64
}

func newMemStore() *memStore {
	return &memStore{products: map[int64]*models.Product{}, orders: map[int64]*models.Order{}, nextID: 100}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func cloneProduct(p *models.Product) models.Product {
	out := *p
	out.Variations = append([]models.Variation{}, p.Variations...)
	return out
}

func (m *memStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (m *memStore) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	for i := range p.Variations {
		p.Variations[i].ID = m.id()
		p.Variations[i].ProductID = p.ID
	}
	stored := cloneProduct(p)
	m.products[p.ID] = &stored
	return p.ID, nil
}

func (m *memStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	for i := range p.Variations {
		if p.Variations[i].ID == 0 {
			p.Variations[i].ID = m.id()
		}
		p.Variations[i].ProductID = p.ID
	}
	stored := cloneProduct(p)
	m.products[p.ID] = &stored
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) variation(id int64) *models.Variation {
	for _, p := range m.products {
		for i := range p.Variations {
			if p.Variations[i].ID == id {
				return &p.Variations[i]
			}
		}
	}
	return nil
}

// expand fills the joined columns the way the SQL query does.
func (m *memStore) expand(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	for i := range o.Items {
		it := &o.Items[i]
		if p, ok := m.products[it.ProductID]; ok {
			it.ProductName = p.Name
		}
		if it.VariationID != nil {
			if v := m.variation(*it.VariationID); v != nil {
				it.VariationLabel = v.Label
				it.LiveStock = v.Stock
			}
		}
	}
	return o
}

func (m *memStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, m.expand(*o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := m.expand(*o)
	return &out, nil
}

func (m *memStore) CreateOrder(ctx context.Context, o *models.Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.id()
	stored := *o
	stored.Items = append([]models.OrderItem{}, o.Items...)
	m.orders[o.ID] = &stored
	return o.ID, nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memStore) DeductStock(ctx context.Context, variationID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stockCalls = append(m.stockCalls, fmt.Sprintf("deduct(%d,%d)", variationID, qty))
	if variationID == m.failVariation {
		return errors.New("connection reset")
	}
	v := m.variation(variationID)
	if v == nil || v.Stock < qty {
		return fmt.Errorf("deduct_stock: %w", store.ErrStockRejected)
	}
	v.Stock -= qty
	return nil
}

func (m *memStore) RestoreStock(ctx context.Context, variationID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stockCalls = append(m.stockCalls, fmt.Sprintf("restore(%d,%d)", variationID, qty))
	v := m.variation(variationID)
	if v == nil {
		return fmt.Errorf("restore_stock: %w", store.ErrStockRejected)
	}
	v.Stock += qty
	return nil
}

func (m *memStore) stockOf(variationID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.variation(variationID).Stock
}
