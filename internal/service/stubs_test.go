package service

import (
	"context"
	"errors"
	"sort"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so that runTx executes the
// transaction body directly — no rollback semantics, which is why services
// validate everything before mutating.

var errStubNotFound = errors.New("not found")

// ── Products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

// Reads return copies, matching gorm's row-per-read behavior: callers never
// alias the stored struct, so stale snapshots stay stale.
func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, tenantID uuid.UUID, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return errStubNotFound
	}
	*stored = *p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) ExistsByName(_ context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.TenantID == tenantID && p.Active && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) ListForBulk(_ *gorm.DB, tenantID uuid.UUID, categoryID, subcategoryID *uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID != tenantID || !p.Active {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		if subcategoryID != nil && (p.SubcategoryID == nil || *p.SubcategoryID != *subcategoryID) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) SetQuantityTx(_ *gorm.DB, id uuid.UUID, quantity int) error {
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Quantity = quantity
	return nil
}

func (r *stubProductRepo) SetPriceTx(_ *gorm.DB, id uuid.UUID, price decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Price = price
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── Stock movements ───────────────────────────────────────────────────────────

type stubMovementRepo struct {
	rows []model.StockMovement
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.rows = append(r.rows, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for i := len(r.rows) - 1; i >= 0; i-- {
		m := r.rows[i]
		if m.TenantID != filter.TenantID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

// byProduct returns the movements recorded for one product, oldest first.
func (r *stubMovementRepo) byProduct(id uuid.UUID) []model.StockMovement {
	var out []model.StockMovement
	for _, m := range r.rows {
		if m.ProductID == id {
			out = append(out, m)
		}
	}
	return out
}

// ── Price history ─────────────────────────────────────────────────────────────

type stubPriceHistoryRepo struct {
	rows []model.PriceHistory
}

var _ repository.PriceHistoryRepository = (*stubPriceHistoryRepo)(nil)

func (r *stubPriceHistoryRepo) Create(_ context.Context, h *model.PriceHistory) error {
	return r.CreateTx(nil, h)
}

func (r *stubPriceHistoryRepo) CreateTx(_ *gorm.DB, h *model.PriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubPriceHistoryRepo) ListByProduct(_ context.Context, productID uuid.UUID, _, _ int) ([]model.PriceHistory, int64, error) {
	var out []model.PriceHistory
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ProductID == productID {
			out = append(out, r.rows[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubPriceHistoryRepo) LatestByProduct(_ context.Context, productID uuid.UUID) (*model.PriceHistory, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ProductID == productID {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, errStubNotFound
}

func (r *stubPriceHistoryRepo) byProduct(id uuid.UUID) []model.PriceHistory {
	var out []model.PriceHistory
	for _, h := range r.rows {
		if h.ProductID == id {
			out = append(out, h)
		}
	}
	return out
}

// ── Alerts ────────────────────────────────────────────────────────────────────

type stubAlertRepo struct {
	rows     []model.StockAlert
	products *stubProductRepo
}

var _ repository.StockAlertRepository = (*stubAlertRepo)(nil)

func (r *stubAlertRepo) CreateTx(_ *gorm.DB, a *model.StockAlert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.rows = append(r.rows, *a)
	return nil
}

func (r *stubAlertRepo) ListUnresolved(_ context.Context, tenantID uuid.UUID) ([]model.StockAlert, error) {
	var out []model.StockAlert
	for i := len(r.rows) - 1; i >= 0; i-- {
		a := r.rows[i]
		if a.Resolved {
			continue
		}
		p, ok := r.products.products[a.ProductID]
		if !ok || p.TenantID != tenantID {
			continue
		}
		a.Product = p
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAlertRepo) MarkRead(_ context.Context, tenantID, id uuid.UUID) error {
	for i := range r.rows {
		if r.rows[i].ID == id && r.ownedBy(r.rows[i].ProductID, tenantID) {
			r.rows[i].Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubAlertRepo) Resolve(_ context.Context, tenantID, id uuid.UUID) error {
	for i := range r.rows {
		if r.rows[i].ID == id && r.ownedBy(r.rows[i].ProductID, tenantID) {
			r.rows[i].Resolved = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubAlertRepo) ownedBy(productID, tenantID uuid.UUID) bool {
	p, ok := r.products.products[productID]
	return ok && p.TenantID == tenantID
}

// ── Recommendations ───────────────────────────────────────────────────────────

type stubRecommendationRepo struct {
	rows     []model.StockRecommendation
	products *stubProductRepo
}

var _ repository.StockRecommendationRepository = (*stubRecommendationRepo)(nil)

func (r *stubRecommendationRepo) CreateTx(_ *gorm.DB, rec *model.StockRecommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *stubRecommendationRepo) ListUnapplied(_ context.Context, tenantID uuid.UUID) ([]model.StockRecommendation, error) {
	var out []model.StockRecommendation
	for _, rec := range r.rows {
		if rec.Applied {
			continue
		}
		p, ok := r.products.products[rec.ProductID]
		if !ok || p.TenantID != tenantID {
			continue
		}
		rec.Product = p
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

func (r *stubRecommendationRepo) MarkApplied(_ context.Context, tenantID, id uuid.UUID) error {
	for i := range r.rows {
		if r.rows[i].ID != id {
			continue
		}
		p, ok := r.products.products[r.rows[i].ProductID]
		if !ok || p.TenantID != tenantID {
			continue
		}
		r.rows[i].Applied = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Tenants ───────────────────────────────────────────────────────────────────

type stubTenantRepo struct {
	tenants map[uuid.UUID]*model.Tenant
}

var _ repository.TenantRepository = (*stubTenantRepo)(nil)

func (r *stubTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, errStubNotFound
	}
	return t, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders  map[uuid.UUID]*model.Order
	nextNum int
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errStubNotFound
	}
	return copyOrder(o), nil
}

func (r *stubOrderRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errStubNotFound
	}
	return copyOrder(o), nil
}

// copyOrder gives every read its own struct and item slice, like a database
// row scan would.
func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (r *stubOrderRepo) List(_ context.Context, tenantID uuid.UUID, filter repository.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.TenantID != tenantID {
			continue
		}
		if filter.Cancelled == "true" && !o.Cancelled {
			continue
		}
		if filter.Cancelled == "false" && o.Cancelled {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) MarkCancelledTx(_ *gorm.DB, id uuid.UUID) error {
	o, ok := r.orders[id]
	if !ok || o.Cancelled {
		return gorm.ErrRecordNotFound
	}
	o.Cancelled = true
	return nil
}

func (r *stubOrderRepo) UpdateTotalTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	o, ok := r.orders[id]
	if !ok {
		return errStubNotFound
	}
	o.Total = total
	return nil
}

func (r *stubOrderRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) DeleteItemTx(_ *gorm.DB, itemID uuid.UUID) error {
	for _, o := range r.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items = append(o.Items[:i], o.Items[i+1:]...)
				return nil
			}
		}
	}
	return errStubNotFound
}

func (r *stubOrderRepo) NextNumber(_ context.Context, _ *gorm.DB, _ uuid.UUID) (int, error) {
	r.nextNum++
	return r.nextNum, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ── Bulk update audit ─────────────────────────────────────────────────────────

type stubBulkUpdateRepo struct {
	rows []model.BulkPriceUpdate
}

var _ repository.BulkUpdateRepository = (*stubBulkUpdateRepo)(nil)

func (r *stubBulkUpdateRepo) CreateTx(_ *gorm.DB, b *model.BulkPriceUpdate) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.rows = append(r.rows, *b)
	return nil
}

func (r *stubBulkUpdateRepo) List(_ context.Context, tenantID uuid.UUID, _, _ int) ([]model.BulkPriceUpdate, int64, error) {
	var out []model.BulkPriceUpdate
	for _, b := range r.rows {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

// ── Categories ────────────────────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
	subcats    map[uuid.UUID]uuid.UUID // subcategory → category
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		categories: make(map[uuid.UUID]*model.Category),
		subcats:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, errStubNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) List(_ context.Context, tenantID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) SubcategoryBelongsTo(_ context.Context, subcategoryID, categoryID uuid.UUID) (bool, error) {
	cat, ok := r.subcats[subcategoryID]
	return ok && cat == categoryID, nil
}

// ── Shared fixture ────────────────────────────────────────────────────────────

// fixture wires the full service graph over in-memory stubs for one tenant.
type fixture struct {
	tenantID  uuid.UUID
	products  *stubProductRepo
	movements *stubMovementRepo
	prices    *stubPriceHistoryRepo
	alerts    *stubAlertRepo
	recs      *stubRecommendationRepo
	orders    *stubOrderRepo
	bulks     *stubBulkUpdateRepo
	cats      *stubCategoryRepo

	inventory InventoryService
	orderSvc  OrderService
	bulkSvc   BulkService
	signalSvc SignalService
	ledgerSvc LedgerService
}

func newFixture() *fixture {
	f := &fixture{
		tenantID:  uuid.New(),
		products:  newStubProductRepo(),
		movements: &stubMovementRepo{},
		prices:    &stubPriceHistoryRepo{},
		orders:    newStubOrderRepo(),
		bulks:     &stubBulkUpdateRepo{},
		cats:      newStubCategoryRepo(),
	}
	f.alerts = &stubAlertRepo{products: f.products}
	f.recs = &stubRecommendationRepo{products: f.products}

	tenants := &stubTenantRepo{tenants: map[uuid.UUID]*model.Tenant{
		f.tenantID: {ID: f.tenantID, Name: "acme", OwnerEmail: "owner@acme.test", Active: true},
	}}

	f.inventory = NewInventoryService(f.products, f.movements, f.prices, f.alerts, f.recs, tenants, nil)
	f.orderSvc = NewOrderService(f.orders, f.products, f.inventory)
	f.bulkSvc = NewBulkService(f.products, f.inventory, f.bulks, f.cats)
	f.signalSvc = NewSignalService(f.alerts, f.recs, f.products)
	f.ledgerSvc = NewLedgerService(f.movements, f.prices, f.products)
	return f
}

// seedProduct adds an active product with sane defaults to the fixture tenant.
func (f *fixture) seedProduct(name string, quantity, minStock int, price string) *model.Product {
	return f.products.add(&model.Product{
		TenantID:      f.tenantID,
		Name:          name,
		CategoryID:    uuid.New(),
		Quantity:      quantity,
		MinStockLevel: minStock,
		Price:         decimal.RequireFromString(price),
		CostPrice:     decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		Active:        true,
	})
}
