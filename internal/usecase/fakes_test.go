package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/payos"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx satisfies pgx.Tx for the methods the services actually call. The
// fake repositories ignore the transaction handle, so everything else can
// stay unimplemented on the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (d *fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("unexpected direct query in test")
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("unexpected direct query in test")
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("unexpected direct exec in test")
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.BeginTx(ctx, pgx.TxOptions{})
}

func (d *fakeDB) Ping(ctx context.Context) error { return nil }
func (d *fakeDB) Close()                         {}

// --- bookings ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking

	lockErr error // returned by FindByIDForUpdate when set
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*entity.Booking{}}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) findOverlapping(condotelID, excludeID uuid.UUID, start, end time.Time) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.CondotelID != condotelID || b.ID == excludeID {
			continue
		}
		if b.Status != entity.BookingStatusConfirmed && b.Status != entity.BookingStatusCompleted {
			continue
		}
		if b.Overlaps(start, end) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeBookingRepo) FindOverlapping(ctx context.Context, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findOverlapping(condotelID, excludeID, start, end), nil
}

func (r *fakeBookingRepo) FindOverlappingForUpdate(ctx context.Context, tx pgx.Tx, condotelID, excludeID uuid.UUID, start, end time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findOverlapping(condotelID, excludeID, start, end), nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.Booking, error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) updateStatus(id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("booking status transition %s -> %s not allowed", from, to)
	}
	booking, ok := r.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateStatus(bookingID, from, to)
}

func (r *fakeBookingRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateStatus(bookingID, from, to)
}

func (r *fakeBookingRepo) FindPayoutCandidates(ctx context.Context, cutoff time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.IsPaidToHost || b.TotalPrice <= 0 {
			continue
		}
		if b.Status != entity.BookingStatusConfirmed && b.Status != entity.BookingStatusCompleted {
			continue
		}
		if b.EndDate.After(cutoff) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r *fakeBookingRepo) MarkPaidToHost(ctx context.Context, bookingID uuid.UUID, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[bookingID]
	if !ok || booking.IsPaidToHost {
		return false, nil
	}
	booking.IsPaidToHost = true
	booking.PaidToHostAt = &paidAt
	return true, nil
}

// --- condotels ---

type fakeCondotelRepo struct {
	condotels map[uuid.UUID]*entity.Condotel
}

func (r *fakeCondotelRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Condotel, error) {
	condotel, ok := r.condotels[id]
	if !ok {
		return nil, nil
	}
	copied := *condotel
	return &copied, nil
}

func (r *fakeCondotelRepo) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.Condotel, error) {
	var out []*entity.Condotel
	for _, c := range r.condotels {
		if c.HostID == hostID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

// --- vouchers ---

type fakeVoucherRepo struct {
	mu         sync.Mutex
	vouchers   map[uuid.UUID]*entity.Voucher
	promotions map[uuid.UUID]*entity.Promotion
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{
		vouchers:   map[uuid.UUID]*entity.Voucher{},
		promotions: map[uuid.UUID]*entity.Promotion{},
	}
}

func (r *fakeVoucherRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voucher, ok := r.vouchers[id]
	if !ok {
		return nil, nil
	}
	copied := *voucher
	return &copied, nil
}

func (r *fakeVoucherRepo) FindPromotionByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promotion, ok := r.promotions[id]
	if !ok {
		return nil, nil
	}
	copied := *promotion
	return &copied, nil
}

func (r *fakeVoucherRepo) tryIncrement(id uuid.UUID) (bool, error) {
	voucher, ok := r.vouchers[id]
	if !ok || voucher.UsedCount >= voucher.MaxUses {
		return false, nil
	}
	voucher.UsedCount++
	return true, nil
}

func (r *fakeVoucherRepo) TryIncrementUsage(ctx context.Context, voucherID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tryIncrement(voucherID)
}

func (r *fakeVoucherRepo) TryIncrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tryIncrement(voucherID)
}

func (r *fakeVoucherRepo) decrement(id uuid.UUID) error {
	voucher, ok := r.vouchers[id]
	if ok && voucher.UsedCount > 0 {
		voucher.UsedCount--
	}
	return nil
}

func (r *fakeVoucherRepo) DecrementUsage(ctx context.Context, voucherID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decrement(voucherID)
}

func (r *fakeVoucherRepo) DecrementUsageTx(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decrement(voucherID)
}

// --- refunds ---

type fakeRefundRepo struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]*entity.RefundRequest
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{refunds: map[uuid.UUID]*entity.RefundRequest{}}
}

func (r *fakeRefundRepo) Create(ctx context.Context, refund *entity.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *refund
	r.refunds[refund.ID] = &copied
	return nil
}

func (r *fakeRefundRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refund, ok := r.refunds[id]
	if !ok {
		return nil, nil
	}
	copied := *refund
	return &copied, nil
}

func (r *fakeRefundRepo) FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, refund := range r.refunds {
		if refund.BookingID == bookingID && refund.Status == entity.RefundStatusPending {
			copied := *refund
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRefundRepo) HasPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	pending, err := r.FindPendingByBookingID(ctx, bookingID)
	return pending != nil, err
}

func (r *fakeRefundRepo) List(ctx context.Context, filter repository.RefundFilter) ([]*entity.RefundRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RefundRequest
	for _, refund := range r.refunds {
		if filter.Status != "" && refund.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(refund.AccountHolder, filter.Search) &&
			!strings.Contains(refund.AccountNumber, filter.Search) {
			continue
		}
		if filter.From != nil && refund.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && refund.CreatedAt.After(*filter.To) {
			continue
		}
		copied := *refund
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if filter.Offset > len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakeRefundRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.RefundStatus, reason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !from.CanTransition(to) {
		return false, fmt.Errorf("refund status transition %s -> %s not allowed", from, to)
	}
	refund, ok := r.refunds[id]
	if !ok || refund.Status != from {
		return false, nil
	}
	refund.Status = to
	if reason != nil {
		refund.Reason = reason
	}
	now := time.Now()
	refund.ProcessedAt = &now
	return true, nil
}

func (r *fakeRefundRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.RefundRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRefundRepo) MarkRefundedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refund, ok := r.refunds[id]
	if !ok || refund.Status != entity.RefundStatusPending {
		return false, nil
	}
	refund.Status = entity.RefundStatusRefunded
	refund.ProcessedAt = &processedAt
	return true, nil
}

// --- payment orders ---

type fakePaymentOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*entity.PaymentOrder
}

func newFakePaymentOrderRepo() *fakePaymentOrderRepo {
	return &fakePaymentOrderRepo{orders: map[int64]*entity.PaymentOrder{}}
}

func (r *fakePaymentOrderRepo) Create(ctx context.Context, order *entity.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.OrderCode] = &copied
	return nil
}

func (r *fakePaymentOrderRepo) FindByOrderCode(ctx context.Context, orderCode int64) (*entity.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderCode]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *fakePaymentOrderRepo) FindByOrderCodeTx(ctx context.Context, tx pgx.Tx, orderCode int64) (*entity.PaymentOrder, error) {
	return r.FindByOrderCode(ctx, orderCode)
}

// --- host packages ---

type fakeHostPackageRepo struct {
	mu       sync.Mutex
	packages map[uuid.UUID]*entity.Package
	subs     []*entity.HostPackage
}

func newFakeHostPackageRepo() *fakeHostPackageRepo {
	return &fakeHostPackageRepo{packages: map[uuid.UUID]*entity.Package{}}
}

func (r *fakeHostPackageRepo) FindPackageByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pkg, ok := r.packages[id]
	if !ok {
		return nil, nil
	}
	copied := *pkg
	return &copied, nil
}

func (r *fakeHostPackageRepo) ListPackages(ctx context.Context) ([]*entity.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Package
	for _, pkg := range r.packages {
		if pkg.Status == "active" {
			copied := *pkg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeHostPackageRepo) Replace(ctx context.Context, sub *entity.HostPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.HostID == sub.HostID && existing.PackageID == sub.PackageID &&
			existing.Status == entity.HostPackageStatusPendingPayment {
			existing.Status = entity.HostPackageStatusCancelled
		}
	}
	copied := *sub
	r.subs = append(r.subs, &copied)
	return nil
}

func (r *fakeHostPackageRepo) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.HostPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HostPackage
	for _, sub := range r.subs {
		if sub.HostID == hostID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeHostPackageRepo) FindActiveByHostID(ctx context.Context, hostID uuid.UUID, now time.Time) (*entity.HostPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.HostID != hostID || sub.Status != entity.HostPackageStatusActive {
			continue
		}
		if sub.StartDate != nil && sub.EndDate != nil &&
			!now.Before(*sub.StartDate) && !now.After(*sub.EndDate) {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeHostPackageRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, hostID, packageID uuid.UUID) (*entity.HostPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.HostPackage
	for _, sub := range r.subs {
		if sub.HostID != hostID || sub.PackageID != packageID {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeHostPackageRepo) ActivateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.ID == id && sub.Status == entity.HostPackageStatusPendingPayment {
			sub.Status = entity.HostPackageStatusActive
			sub.StartDate = &start
			sub.EndDate = &end
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeHostPackageRepo) CancelPendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.ID == id && sub.Status == entity.HostPackageStatusPendingPayment {
			sub.Status = entity.HostPackageStatusCancelled
			return true, nil
		}
	}
	return false, nil
}

// --- bank accounts ---

type fakeBankAccountRepo struct {
	accounts map[uuid.UUID]*entity.HostBankAccount
}

func (r *fakeBankAccountRepo) FindActiveByHostID(ctx context.Context, hostID uuid.UUID) (*entity.HostBankAccount, error) {
	account, ok := r.accounts[hostID]
	if !ok || !account.IsActive {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeBankAccountRepo) HasActiveByHostID(ctx context.Context, hostID uuid.UUID) (bool, error) {
	account, err := r.FindActiveByHostID(ctx, hostID)
	return account != nil, err
}

// --- gateway ---

type fakeGateway struct {
	mu             sync.Mutex
	createCalls    []*payos.CreatePaymentRequest
	duplicateFirst int // first N create calls fail with duplicate order code
	createErr      error
	info           *payos.PaymentInfo
	infoErr        error
	cancelled      []string
}

func (g *fakeGateway) CreatePaymentLink(ctx context.Context, req *payos.CreatePaymentRequest) (*payos.CreatePaymentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls = append(g.createCalls, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	if len(g.createCalls) <= g.duplicateFirst {
		return nil, fmt.Errorf("payos: order code taken (code 20): %w", payos.ErrDuplicateOrderCode)
	}
	return &payos.CreatePaymentResponse{
		Code: payos.CodeSuccess,
		Desc: "success",
		Data: &payos.PaymentLinkData{
			PaymentLinkID: fmt.Sprintf("link-%d", req.OrderCode),
			CheckoutURL:   fmt.Sprintf("https://pay.example/%d", req.OrderCode),
			QRCode:        "qr-data",
			OrderCode:     req.OrderCode,
			Amount:        req.Amount,
			Status:        payos.StatusPending,
		},
	}, nil
}

func (g *fakeGateway) GetPaymentInfo(ctx context.Context, paymentLinkID string) (*payos.PaymentInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.infoErr != nil {
		return nil, g.infoErr
	}
	if g.info != nil {
		return g.info, nil
	}
	return &payos.PaymentInfo{Code: payos.CodeSuccess, Data: &payos.PaymentInfoData{Status: payos.StatusPending}}, nil
}

func (g *fakeGateway) CancelPaymentLink(ctx context.Context, paymentLinkID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, paymentLinkID)
	return nil
}

func (g *fakeGateway) ChecksumKey() string { return "test-checksum-key" }

// --- fixture assembly ---

type fixture struct {
	db       *fakeDB
	repo     *repository.Repository
	bookings *fakeBookingRepo
	condos   *fakeCondotelRepo
	vouchers *fakeVoucherRepo
	refunds  *fakeRefundRepo
	orders   *fakePaymentOrderRepo
	subs     *fakeHostPackageRepo
	banks    *fakeBankAccountRepo
	gateway  *fakeGateway
	config   *utils.Config
}

func newFixture() *fixture {
	bookings := newFakeBookingRepo()
	condos := &fakeCondotelRepo{condotels: map[uuid.UUID]*entity.Condotel{}}
	vouchers := newFakeVoucherRepo()
	refunds := newFakeRefundRepo()
	orders := newFakePaymentOrderRepo()
	subs := newFakeHostPackageRepo()
	banks := &fakeBankAccountRepo{accounts: map[uuid.UUID]*entity.HostBankAccount{}}

	return &fixture{
		db: &fakeDB{},
		repo: &repository.Repository{
			Booking:      bookings,
			Condotel:     condos,
			Voucher:      vouchers,
			Refund:       refunds,
			PaymentOrder: orders,
			HostPackage:  subs,
			BankAccount:  banks,
		},
		bookings: bookings,
		condos:   condos,
		vouchers: vouchers,
		refunds:  refunds,
		orders:   orders,
		subs:     subs,
		banks:    banks,
		gateway:  &fakeGateway{},
		config: &utils.Config{
			App: utils.AppConfig{
				FrontendURL:    "https://front.example",
				BackendBaseURL: "https://api.example",
			},
			Booking: utils.BookingConfig{
				MinPaymentAmount: 10000,
				LinkMaxRetries:   3,
				RefundNoticeDays: 2,
				PayoutHoldDays:   15,
			},
		},
	}
}
