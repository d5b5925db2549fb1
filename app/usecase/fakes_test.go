package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backoffice-service/app/domain"
	"backoffice-service/config"

	"github.com/shopspring/decimal"
)

// The fakes below back the usecase tests with in-memory state. Their
// WithTransaction snapshots that state and restores it when the callback
// fails, mirroring a rolled-back database transaction.

type fakeStore struct {
	categories map[int64]*domain.Category
	products   map[int64]*domain.Product
	skus       map[int64]*domain.SKU
	orders     map[int64]*domain.Order
	lines      map[int64][]domain.OrderLine
	coupons    map[string]*domain.Coupon
	customers  map[int64]*domain.Customer
	addresses  map[int64]*domain.Address
	payments   map[int64]*domain.Payment
	shipments  map[int64]*domain.Shipment
	returns    map[int64]*domain.Return
	history    []domain.OrderHistoryEntry
	audits     []domain.AuditRecord
	nextID     int64

	// beforeTx runs ahead of the next transaction's snapshot, letting a
	// test interleave a competing mutation the way a concurrent request
	// committing first would.
	beforeTx func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: map[int64]*domain.Category{},
		products:   map[int64]*domain.Product{},
		skus:       map[int64]*domain.SKU{},
		orders:     map[int64]*domain.Order{},
		lines:      map[int64][]domain.OrderLine{},
		coupons:    map[string]*domain.Coupon{},
		customers:  map[int64]*domain.Customer{},
		addresses:  map[int64]*domain.Address{},
		payments:   map[int64]*domain.Payment{},
		shipments:  map[int64]*domain.Shipment{},
		returns:    map[int64]*domain.Return{},
		nextID:     100,
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) snapshot() func() {
	skus := make(map[int64]*domain.SKU, len(s.skus))
	for k, v := range s.skus {
		cp := *v
		skus[k] = &cp
	}
	orders := make(map[int64]*domain.Order, len(s.orders))
	for k, v := range s.orders {
		cp := *v
		orders[k] = &cp
	}
	coupons := make(map[string]*domain.Coupon, len(s.coupons))
	for k, v := range s.coupons {
		cp := *v
		coupons[k] = &cp
	}
	payments := make(map[int64]*domain.Payment, len(s.payments))
	for k, v := range s.payments {
		cp := *v
		payments[k] = &cp
	}
	shipments := make(map[int64]*domain.Shipment, len(s.shipments))
	for k, v := range s.shipments {
		cp := *v
		shipments[k] = &cp
	}
	returns := make(map[int64]*domain.Return, len(s.returns))
	for k, v := range s.returns {
		cp := *v
		returns[k] = &cp
	}
	lines := make(map[int64][]domain.OrderLine, len(s.lines))
	for k, v := range s.lines {
		lines[k] = append([]domain.OrderLine(nil), v...)
	}
	history := append([]domain.OrderHistoryEntry(nil), s.history...)
	audits := append([]domain.AuditRecord(nil), s.audits...)

	return func() {
		s.skus = skus
		s.orders = orders
		s.coupons = coupons
		s.payments = payments
		s.shipments = shipments
		s.returns = returns
		s.lines = lines
		s.history = history
		s.audits = audits
	}
}

func (s *fakeStore) withTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	if hook := s.beforeTx; hook != nil {
		s.beforeTx = nil
		hook()
	}
	restore := s.snapshot()
	if err := fn(ctx, nil); err != nil {
		restore()
		return err
	}
	return nil
}

type fakeCategoryRepo struct{ s *fakeStore }

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = r.s.id()
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (domain.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return *c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	return out, nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	product.ID = r.s.id()
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return *p, nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStatus(_ context.Context, id int64, status domain.ProductStatus, _ *sql.Tx) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64, _ *sql.Tx) error {
	delete(r.s.products, id)
	return nil
}

type fakeSKURepo struct{ s *fakeStore }

func (r *fakeSKURepo) Create(_ context.Context, sku *domain.SKU) error {
	sku.ID = r.s.id()
	cp := *sku
	r.s.skus[sku.ID] = &cp
	return nil
}

func (r *fakeSKURepo) GetByID(_ context.Context, id int64) (domain.SKU, error) {
	sku, ok := r.s.skus[id]
	if !ok {
		return domain.SKU{}, fmt.Errorf("sku %d: %w", id, domain.ErrNotFound)
	}
	return *sku, nil
}

func (r *fakeSKURepo) GetByProductID(_ context.Context, productID int64) ([]domain.SKU, error) {
	var out []domain.SKU
	for _, sku := range r.s.skus {
		if sku.ProductID == productID {
			out = append(out, *sku)
		}
	}
	return out, nil
}

func (r *fakeSKURepo) List(_ context.Context) ([]domain.SKU, error) {
	var out []domain.SKU
	for _, sku := range r.s.skus {
		out = append(out, *sku)
	}
	return out, nil
}

func (r *fakeSKURepo) LockForUpdate(ctx context.Context, id int64, _ *sql.Tx) (domain.SKU, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSKURepo) UpdateQuantities(_ context.Context, id, onHand, reserved int64, _ *sql.Tx) error {
	sku, ok := r.s.skus[id]
	if !ok {
		return domain.ErrNotFound
	}
	sku.OnHand = onHand
	sku.Reserved = reserved
	return nil
}

func (r *fakeSKURepo) UpdatePrice(_ context.Context, id int64, price decimal.Decimal, _ *sql.Tx) error {
	sku, ok := r.s.skus[id]
	if !ok {
		return domain.ErrNotFound
	}
	sku.UnitPrice = price
	return nil
}

func (r *fakeSKURepo) ListByCategoryForUpdate(_ context.Context, _ int64, _ *sql.Tx) ([]domain.SKU, error) {
	var out []domain.SKU
	for _, sku := range r.s.skus {
		out = append(out, *sku)
	}
	return out, nil
}

func (r *fakeSKURepo) LowStock(_ context.Context, threshold int64, _ int64) ([]domain.StockAlert, error) {
	var out []domain.StockAlert
	for _, sku := range r.s.skus {
		if sku.Available() <= threshold {
			out = append(out, domain.StockAlert{
				SKUID:     sku.ID,
				ProductID: sku.ProductID,
				Code:      sku.Code,
				Available: sku.Available(),
				Reserved:  sku.Reserved,
			})
		}
	}
	return out, nil
}

func (r *fakeSKURepo) ReferencedByOrderLines(_ context.Context, productID int64) (bool, error) {
	for _, lines := range r.s.lines {
		for _, line := range lines {
			if sku, ok := r.s.skus[line.SKUID]; ok && sku.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeSKURepo) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return r.s.withTransaction(ctx, fn)
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order, _ *sql.Tx) error {
	order.ID = r.s.id()
	order.PlacedAt = time.Now()
	order.UpdatedAt = order.PlacedAt
	cp := *order
	r.s.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) CreateLines(_ context.Context, lines []domain.OrderLine, _ *sql.Tx) error {
	for i := range lines {
		lines[i].ID = r.s.id()
		r.s.lines[lines[i].OrderID] = append(r.s.lines[lines[i].OrderID], lines[i])
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (domain.Order, error) {
	order, ok := r.s.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return *order, nil
}

func (r *fakeOrderRepo) LockByID(ctx context.Context, id int64, _ *sql.Tx) (domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) GetLines(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	return append([]domain.OrderLine(nil), r.s.lines[orderID]...), nil
}

func (r *fakeOrderRepo) GetLineByID(_ context.Context, lineID int64) (domain.OrderLine, error) {
	for _, lines := range r.s.lines {
		for _, line := range lines {
			if line.ID == lineID {
				return line, nil
			}
		}
	}
	return domain.OrderLine{}, fmt.Errorf("order line %d: %w", lineID, domain.ErrNotFound)
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus, _ *sql.Tx) error {
	order, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) UpdateTotals(_ context.Context, id int64, couponID int64, totals domain.OrderTotals, _ *sql.Tx) error {
	order, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.CouponID = &couponID
	order.Subtotal = totals.Subtotal
	order.DiscountApplied = totals.Discount
	order.Taxes = totals.Taxes
	order.Total = totals.Total
	return nil
}

func (r *fakeOrderRepo) List(_ context.Context) ([]domain.OrderSummary, error) {
	return nil, nil
}

func (r *fakeOrderRepo) CountPayments(_ context.Context, orderID int64, _ *sql.Tx) (int64, error) {
	var n int64
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) CountShipments(_ context.Context, orderID int64, _ *sql.Tx) (int64, error) {
	var n int64
	for _, sh := range r.s.shipments {
		if sh.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id int64, _ *sql.Tx) error {
	delete(r.s.orders, id)
	delete(r.s.lines, id)
	return nil
}

func (r *fakeOrderRepo) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return r.s.withTransaction(ctx, fn)
}

type fakeCouponRepo struct{ s *fakeStore }

func (r *fakeCouponRepo) Create(_ context.Context, coupon *domain.Coupon) error {
	coupon.ID = r.s.id()
	cp := *coupon
	r.s.coupons[coupon.Code] = &cp
	return nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, id int64) (domain.Coupon, error) {
	for _, c := range r.s.coupons {
		if c.ID == id {
			return *c, nil
		}
	}
	return domain.Coupon{}, fmt.Errorf("coupon %d: %w", id, domain.ErrNotFound)
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (domain.Coupon, error) {
	c, ok := r.s.coupons[code]
	if !ok {
		return domain.Coupon{}, fmt.Errorf("coupon %s: %w", code, domain.ErrNotFound)
	}
	return *c, nil
}

func (r *fakeCouponRepo) LockByCode(ctx context.Context, code string, _ *sql.Tx) (domain.Coupon, error) {
	return r.GetByCode(ctx, code)
}

func (r *fakeCouponRepo) DecrementRemainingUses(_ context.Context, id int64, _ *sql.Tx) error {
	for _, c := range r.s.coupons {
		if c.ID == id {
			if c.RemainingUses == nil || *c.RemainingUses <= 0 {
				return fmt.Errorf("%w: %s", domain.ErrCouponInvalid, c.Code)
			}
			uses := *c.RemainingUses - 1
			c.RemainingUses = &uses
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeCouponRepo) List(_ context.Context) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, c := range r.s.coupons {
		out = append(out, *c)
	}
	return out, nil
}

type fakeCustomerRepo struct{ s *fakeStore }

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	customer.ID = r.s.id()
	cp := *customer
	r.s.customers[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id int64) (domain.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	return *c, nil
}

func (r *fakeCustomerRepo) List(_ context.Context) ([]domain.Customer, error) { return nil, nil }

func (r *fakeCustomerRepo) HasOrders(_ context.Context, id int64) (bool, error) {
	for _, o := range r.s.orders {
		if o.CustomerID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCustomerRepo) CompletedOrderSpend(_ context.Context, id int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range r.s.orders {
		if o.CustomerID == id && o.Status == domain.OrderStatusCompleted {
			total = total.Add(o.Total)
		}
	}
	return total, nil
}

type fakeAddressRepo struct{ s *fakeStore }

func (r *fakeAddressRepo) Create(_ context.Context, address *domain.Address) error {
	address.ID = r.s.id()
	cp := *address
	r.s.addresses[address.ID] = &cp
	return nil
}

func (r *fakeAddressRepo) GetByID(_ context.Context, id int64) (domain.Address, error) {
	a, ok := r.s.addresses[id]
	if !ok {
		return domain.Address{}, fmt.Errorf("address %d: %w", id, domain.ErrNotFound)
	}
	return *a, nil
}

func (r *fakeAddressRepo) ListByCustomerID(_ context.Context, customerID int64) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.s.addresses {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment, _ *sql.Tx) error {
	payment.ID = r.s.id()
	payment.PaidAt = time.Now()
	cp := *payment
	r.s.payments[payment.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id int64) (domain.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return domain.Payment{}, fmt.Errorf("payment %d: %w", id, domain.ErrNotFound)
	}
	return *p, nil
}

func (r *fakePaymentRepo) List(_ context.Context) ([]domain.PaymentSummary, error) { return nil, nil }

func (r *fakePaymentRepo) CountSuccessfulByOrderID(_ context.Context, orderID int64, excludeID int64) (int64, error) {
	var n int64
	for _, p := range r.s.payments {
		if p.OrderID == orderID && p.Status == domain.PaymentStatusSuccessful && p.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id int64, _ *sql.Tx) error {
	delete(r.s.payments, id)
	return nil
}

type fakeShipmentRepo struct{ s *fakeStore }

func (r *fakeShipmentRepo) Create(_ context.Context, shipment *domain.Shipment, _ *sql.Tx) error {
	shipment.ID = r.s.id()
	cp := *shipment
	r.s.shipments[shipment.ID] = &cp
	return nil
}

func (r *fakeShipmentRepo) LockByID(_ context.Context, id int64, _ *sql.Tx) (domain.Shipment, error) {
	sh, ok := r.s.shipments[id]
	if !ok {
		return domain.Shipment{}, fmt.Errorf("shipment %d: %w", id, domain.ErrNotFound)
	}
	return *sh, nil
}

func (r *fakeShipmentRepo) Update(_ context.Context, shipment *domain.Shipment, _ *sql.Tx) error {
	cp := *shipment
	r.s.shipments[shipment.ID] = &cp
	return nil
}

func (r *fakeShipmentRepo) List(_ context.Context) ([]domain.ShipmentSummary, error) {
	return nil, nil
}

type fakeReturnRepo struct{ s *fakeStore }

func (r *fakeReturnRepo) Create(_ context.Context, ret *domain.Return, _ *sql.Tx) error {
	ret.ID = r.s.id()
	ret.RequestedAt = time.Now()
	cp := *ret
	r.s.returns[ret.ID] = &cp
	return nil
}

func (r *fakeReturnRepo) LockByID(_ context.Context, id int64, _ *sql.Tx) (domain.Return, error) {
	ret, ok := r.s.returns[id]
	if !ok {
		return domain.Return{}, fmt.Errorf("return %d: %w", id, domain.ErrNotFound)
	}
	return *ret, nil
}

func (r *fakeReturnRepo) UpdateStatus(_ context.Context, id int64, status domain.ReturnStatus, _ *sql.Tx) error {
	ret, ok := r.s.returns[id]
	if !ok {
		return domain.ErrNotFound
	}
	ret.Status = status
	return nil
}

func (r *fakeReturnRepo) List(_ context.Context) ([]domain.ReturnSummary, error) { return nil, nil }

func (r *fakeReturnRepo) ReturnedQuantity(_ context.Context, orderLineID int64, excludeID int64) (int64, error) {
	var total int64
	for _, ret := range r.s.returns {
		if ret.OrderLineID == orderLineID && ret.Status != domain.ReturnStatusRejected && ret.ID != excludeID {
			total += ret.Quantity
		}
	}
	return total, nil
}

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Insert(_ context.Context, rec *domain.AuditRecord, _ *sql.Tx) error {
	rec.ID = r.s.id()
	rec.RecordedAt = time.Now()
	r.s.audits = append(r.s.audits, *rec)
	return nil
}

func (r *fakeAuditRepo) History(_ context.Context, entityTable string, entityID int64, _ int64) ([]domain.AuditRecord, error) {
	var out []domain.AuditRecord
	for _, rec := range r.s.audits {
		if rec.EntityTable == entityTable && rec.EntityID == entityID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) Search(_ context.Context, _ domain.AuditSearchRequest) ([]domain.AuditRecord, error) {
	return append([]domain.AuditRecord(nil), r.s.audits...), nil
}

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) Insert(_ context.Context, entry *domain.OrderHistoryEntry, _ *sql.Tx) error {
	entry.ID = r.s.id()
	entry.RecordedAt = time.Now()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByOrderID(_ context.Context, orderID int64) ([]domain.OrderHistoryEntry, error) {
	var out []domain.OrderHistoryEntry
	for _, e := range r.s.history {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBroker struct {
	stockMessages  []domain.StockMessage
	statusMessages []domain.OrderStatusMessage
}

func (b *fakeBroker) PublishStockAvailable(_ context.Context, msg domain.StockMessage) error {
	b.stockMessages = append(b.stockMessages, msg)
	return nil
}

func (b *fakeBroker) PublishOrderStatus(_ context.Context, msg domain.OrderStatusMessage) error {
	b.statusMessages = append(b.statusMessages, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Orders: config.OrderConfig{
			TaxRatePercent:   16.0,
			ReturnWindowDays: 30,
		},
		Alerts: config.AlertsConfig{
			LowStockThreshold: 10,
		},
	}
}
