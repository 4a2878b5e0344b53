package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sideways_back_end/internal/models"

	"github.com/gocql/gocql"
)

type fakeProducts struct {
	byID    map[string]*models.Product
	refuse  map[string]bool // (product|size) buckets whose decrement must fail
	history []string
}

func stockKey(productID, size string) string { return productID + "|" + size }

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Sizes = append([]models.ProductSize(nil), p.Sizes...)
	return &cp, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, productID, size string, qty int) (bool, error) {
	f.history = append(f.history, fmt.Sprintf("%s|%s|%d", productID, size, qty))
	if f.refuse[stockKey(productID, size)] {
		return false, nil
	}
	p, ok := f.byID[productID]
	if !ok {
		return false, nil
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == strings.TrimSpace(size) {
			if p.Sizes[i].Stock < qty {
				return false, nil
			}
			p.Sizes[i].Stock -= qty
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) stockOf(productID, size string) int {
	if s := f.byID[productID].FindSize(size); s != nil {
		return s.Stock
	}
	return -1
}

type fakeAddresses struct{ byID map[string]*models.Address }

func (f *fakeAddresses) FindByID(_ context.Context, id string) (*models.Address, error) {
	return f.byID[id], nil
}

type fakeCards struct{ byID map[string]*models.Card }

func (f *fakeCards) FindByID(_ context.Context, id string) (*models.Card, error) {
	return f.byID[id], nil
}

type fakeOrders struct {
	byID      map[string]*models.Order
	numbers   map[string]bool
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[string]*models.Order{}, numbers: map[string]bool{}}
}

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.numbers[order.OrderNumber] {
		return ErrDuplicateOrderNumber
	}
	order.ID = gocql.TimeUUID()
	f.numbers[order.OrderNumber] = true
	cp := *order
	f.byID[order.ID.String()] = &cp
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.StatusHistory = append([]models.StatusEntry(nil), o.StatusHistory...)
	return &cp, nil
}

func (f *fakeOrders) Update(_ context.Context, order *models.Order) error {
	cp := *order
	f.byID[order.ID.String()] = &cp
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeOrders) only() *models.Order {
	for _, o := range f.byID {
		return o
	}
	return nil
}

type fakeCart struct {
	cart    *models.Cart
	removed [][]models.ItemKey
}

func (f *fakeCart) RemoveItems(_ context.Context, _ string, keys []models.ItemKey) error {
	f.removed = append(f.removed, keys)
	if f.cart != nil {
		f.cart.RemoveAll(keys)
	}
	return nil
}

type fakeGuard struct {
	used   map[string]bool
	marked []string
}

func (f *fakeGuard) RecentlyUsed(_ context.Context, cardID string) (bool, error) {
	return f.used[cardID], nil
}

func (f *fakeGuard) MarkUsed(_ context.Context, cardID string) error {
	f.used[cardID] = true
	f.marked = append(f.marked, cardID)
	return nil
}

// fakeGateway dedupes by idempotency key like the real processor: the same
// key never produces a second charge.
type fakeGateway struct {
	status    string
	chargeErr error
	charges   []ChargeParams
	byKey     map[string]*ChargeResult
	refunds   []string
	seq       int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: "succeeded", byKey: map[string]*ChargeResult{}}
}

func (f *fakeGateway) Charge(_ context.Context, params ChargeParams) (*ChargeResult, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	if res, ok := f.byKey[params.IdempotencyKey]; ok {
		return res, nil
	}
	f.charges = append(f.charges, params)
	f.seq++
	res := &ChargeResult{Status: f.status, TransactionID: fmt.Sprintf("pi_test_%d", f.seq)}
	if f.status != "succeeded" {
		res.FailureReason = "card_declined"
	}
	f.byKey[params.IdempotencyKey] = res
	return res, nil
}

func (f *fakeGateway) Refund(_ context.Context, transactionID string, _ int64) error {
	f.refunds = append(f.refunds, transactionID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	receipts []string
	alerts   []string
	statuses []string
}

func (f *fakeNotifier) OrderReceipt(_ context.Context, order *models.Order, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, order.OrderNumber+"→"+email)
	return nil
}

func (f *fakeNotifier) NewOrderAlert(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, order.OrderNumber)
	return nil
}

func (f *fakeNotifier) StatusChanged(_ context.Context, order *models.Order, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, order.OrderNumber+":"+order.Status+"→"+email)
	return nil
}

func (f *fakeNotifier) receiptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.receipts)
}

type fakeUsers struct{ emails map[string]string }

func (f *fakeUsers) FindEmail(_ context.Context, userID string) (string, error) {
	return f.emails[userID], nil
}

// env bundles a service wired to fresh fakes with a standard fixture:
// user-1 owns addr-1 and card-1; product prod-1 has size M (stock 5) and
// size L (stock 1) at 150.00; the cart holds (prod-1, M) and (prod-1, L).
type env struct {
	svc       *Service
	products  *fakeProducts
	addresses *fakeAddresses
	cards     *fakeCards
	orders    *fakeOrders
	cart      *fakeCart
	guard     *fakeGuard
	gateway   *fakeGateway
	notifier  *fakeNotifier
	users     *fakeUsers
}

func newEnv() *env {
	products := &fakeProducts{
		byID: map[string]*models.Product{
			"prod-1": {
				ID:       gocql.TimeUUID(),
				Name:     "Tenis Retro Runner",
				Price:    150.00,
				IsActive: true,
				Sizes: []models.ProductSize{
					{Size: "M", Stock: 5},
					{Size: "L", Stock: 1},
				},
			},
			"prod-inactive": {
				ID:       gocql.TimeUUID(),
				Name:     "Discontinued",
				Price:    99.00,
				IsActive: false,
				Sizes:    []models.ProductSize{{Size: "M", Stock: 3}},
			},
		},
		refuse: map[string]bool{},
	}
	addresses := &fakeAddresses{byID: map[string]*models.Address{
		"addr-1":     {ID: gocql.TimeUUID(), UserID: "user-1"},
		"addr-other": {ID: gocql.TimeUUID(), UserID: "user-2"},
	}}
	cards := &fakeCards{byID: map[string]*models.Card{
		"card-1":     {ID: gocql.TimeUUID(), UserID: "user-1", Last4: "4242"},
		"card-other": {ID: gocql.TimeUUID(), UserID: "user-2", Last4: "1111"},
	}}
	orderStore := newFakeOrders()
	cart := &fakeCart{cart: &models.Cart{
		UserID: "user-1",
		Items: []models.CartItem{
			{ProductID: "prod-1", Size: "M", Quantity: 2},
			{ProductID: "prod-1", Size: "L", Quantity: 1},
		},
	}}
	guard := &fakeGuard{used: map[string]bool{}}
	gateway := newFakeGateway()
	notifier := &fakeNotifier{}
	users := &fakeUsers{emails: map[string]string{"user-1": "user1@example.com"}}

	return &env{
		svc:       NewService(products, addresses, cards, orderStore, cart, guard, gateway, notifier, users),
		products:  products,
		addresses: addresses,
		cards:     cards,
		orders:    orderStore,
		cart:      cart,
		guard:     guard,
		gateway:   gateway,
		notifier:  notifier,
		users:     users,
	}
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:    "user-1",
		UserEmail: "user1@example.com",
		AddressID: "addr-1",
		CardID:    "card-1",
		Items:     []LineItem{{ProductID: "prod-1", Size: "M", Quantity: 2}},
	}
}
