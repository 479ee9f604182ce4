package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/data/repository"
	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/dto/response"
	"condotel-booking/pkg/database"
	"condotel-booking/pkg/payos"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PaymentGateway is the slice of the payment provider client the services
// need. Satisfied by *payos.Client.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req *payos.CreatePaymentRequest) (*payos.CreatePaymentResponse, error)
	GetPaymentInfo(ctx context.Context, paymentLinkID string) (*payos.PaymentInfo, error)
	CancelPaymentLink(ctx context.Context, paymentLinkID, reason string) error
	ChecksumKey() string
}

// PaymentEvent is a normalized settlement notification. Both delivery
// channels — the signed webhook and the browser redirect — reduce to this
// before touching state.
type PaymentEvent struct {
	OrderCode int64
	Amount    int
	Success   bool
	Reference string
	Channel   string
}

// EventOutcome describes what applying a settlement event did.
type EventOutcome string

const (
	OutcomeConfirmed      EventOutcome = "confirmed"
	OutcomeCancelled      EventOutcome = "cancelled"
	OutcomeConflict       EventOutcome = "conflict_cancelled"
	OutcomeRefunded       EventOutcome = "refunded"
	OutcomeActivated      EventOutcome = "activated"
	OutcomeAlreadyApplied EventOutcome = "already_applied"
	OutcomeIgnored        EventOutcome = "ignored"
)

var ErrUnknownOrderCode = errors.New("unknown order code")

type PaymentService interface {
	CreatePaymentLink(ctx context.Context, customerID string, req *request.CreatePaymentLinkRequest) (*response.PaymentLinkResponse, error)

	// CreateOrderLink mints a gateway link for an already-validated order leg
	// (refund settlement, subscription payment). Retries collisions the same
	// way booking links do.
	CreateOrderLink(ctx context.Context, order *entity.PaymentOrder, amount int, description string) (*response.PaymentLinkResponse, error)

	GetPaymentStatus(ctx context.Context, orderCode int64) (*response.PaymentStatusResponse, error)
	CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error

	// HandleWebhook verifies the signature and applies the event. A bad
	// signature returns an error before any state is touched.
	HandleWebhook(ctx context.Context, body []byte) (EventOutcome, error)

	// HandleReturn reconciles a browser redirect by querying the gateway for
	// the authoritative payment state, then applying the result. Returns the
	// frontend URL to redirect the browser to.
	HandleReturn(ctx context.Context, orderCode int64, cancelled bool) (string, error)

	// ApplyEvent is the single reconciliation path: one serializable
	// transaction per event, idempotent under replay from either channel.
	ApplyEvent(ctx context.Context, event PaymentEvent) (EventOutcome, error)
}

type paymentService struct {
	db      database.PgxIface
	repo    *repository.Repository
	gateway PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewPaymentService(db database.PgxIface, repo *repository.Repository, gateway PaymentGateway, config *utils.Config, log *zap.Logger) PaymentService {
	return &paymentService{
		db:      db,
		repo:    repo,
		gateway: gateway,
		config:  config,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) CreatePaymentLink(ctx context.Context, customerID string, req *request.CreatePaymentLinkRequest) (*response.PaymentLinkResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", req.BookingID)
	}
	if booking.CustomerID.String() != customerID {
		return nil, fmt.Errorf("booking %s does not belong to customer", req.BookingID)
	}
	if booking.Status != entity.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is not awaiting payment", req.BookingID)
	}

	amount := int(booking.TotalPrice)
	if amount < s.config.Booking.MinPaymentAmount {
		return nil, fmt.Errorf("amount %d is below the gateway minimum %d", amount, s.config.Booking.MinPaymentAmount)
	}

	description := payos.TruncateDescription(fmt.Sprintf("Booking %s", booking.ID.String()[:8]))
	link, orderCode, err := s.createLinkWithRetry(ctx, &entity.PaymentOrder{
		Kind:      entity.OrderKindBookingPayment,
		BookingID: &booking.ID,
	}, amount, description)
	if err != nil {
		return nil, err
	}

	return &response.PaymentLinkResponse{
		OrderCode:   orderCode,
		CheckoutURL: link.CheckoutURL,
		QRCode:      link.QRCode,
		Amount:      int64(link.Amount),
		Status:      link.Status,
	}, nil
}

func (s *paymentService) CreateOrderLink(ctx context.Context, order *entity.PaymentOrder, amount int, description string) (*response.PaymentLinkResponse, error) {
	if amount < s.config.Booking.MinPaymentAmount {
		return nil, fmt.Errorf("amount %d is below the gateway minimum %d", amount, s.config.Booking.MinPaymentAmount)
	}

	link, orderCode, err := s.createLinkWithRetry(ctx, order, amount, payos.TruncateDescription(description))
	if err != nil {
		return nil, err
	}

	return &response.PaymentLinkResponse{
		OrderCode:   orderCode,
		CheckoutURL: link.CheckoutURL,
		QRCode:      link.QRCode,
		Amount:      int64(link.Amount),
		Status:      link.Status,
	}, nil
}

// createLinkWithRetry writes a payment order row and requests a gateway link,
// retrying with a fresh order code when the gateway reports a collision. Each
// attempt gets its own row; stale rows resolve to the same entity, so a late
// event on an abandoned code still reconciles correctly.
func (s *paymentService) createLinkWithRetry(ctx context.Context, order *entity.PaymentOrder, amount int, description string) (*payos.PaymentLinkData, int64, error) {
	maxAttempts := s.config.Booking.LinkMaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		orderCode := utils.GenerateOrderCode()

		record := *order
		record.OrderCode = orderCode
		record.CreatedAt = time.Now()
		if err := s.repo.PaymentOrder.Create(ctx, &record); err != nil {
			return nil, 0, fmt.Errorf("record payment order: %w", err)
		}

		result, err := s.gateway.CreatePaymentLink(ctx, &payos.CreatePaymentRequest{
			OrderCode:   orderCode,
			Amount:      amount,
			Description: description,
			Items: []payos.Item{
				{Name: description, Quantity: 1, Price: amount},
			},
			CancelURL: s.config.App.BackendBaseURL + "/api/v1/payments/return?cancelled=true",
			ReturnURL: s.config.App.BackendBaseURL + "/api/v1/payments/return",
		})
		if err == nil {
			return result.Data, orderCode, nil
		}

		lastErr = err
		if !errors.Is(err, payos.ErrDuplicateOrderCode) {
			return nil, 0, fmt.Errorf("create payment link: %w", err)
		}

		s.log.Warn("Order code collision, retrying with a fresh code",
			zap.Int64("order_code", orderCode),
			zap.Int("attempt", attempt),
		)
	}

	return nil, 0, fmt.Errorf("create payment link after %d attempts: %w", maxAttempts, lastErr)
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, orderCode int64) (*response.PaymentStatusResponse, error) {
	order, err := s.repo.PaymentOrder.FindByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("resolve order code: %w", err)
	}
	if order == nil {
		return nil, ErrUnknownOrderCode
	}

	info, err := s.gateway.GetPaymentInfo(ctx, strconv.FormatInt(orderCode, 10))
	if err != nil {
		return nil, fmt.Errorf("get payment info: %w", err)
	}
	if info.Data == nil {
		return nil, fmt.Errorf("gateway returned no payment data for order %d", orderCode)
	}

	resp := &response.PaymentStatusResponse{
		OrderCode:       orderCode,
		Status:          info.Data.Status,
		Amount:          int64(info.Data.Amount),
		AmountPaid:      int64(info.Data.AmountPaid),
		AmountRemaining: int64(info.Data.AmountRemaining),
	}

	if order.BookingID != nil {
		id := order.BookingID.String()
		resp.BookingID = &id
		if booking, err := s.repo.Booking.FindByID(ctx, *order.BookingID); err == nil && booking != nil {
			resp.BookingStatus = string(booking.Status)
		}
	}

	return resp, nil
}

func (s *paymentService) CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error {
	order, err := s.repo.PaymentOrder.FindByOrderCode(ctx, orderCode)
	if err != nil {
		return fmt.Errorf("resolve order code: %w", err)
	}
	if order == nil {
		return ErrUnknownOrderCode
	}

	if err := s.gateway.CancelPaymentLink(ctx, strconv.FormatInt(orderCode, 10), reason); err != nil {
		return fmt.Errorf("cancel payment link: %w", err)
	}

	return nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte) (EventOutcome, error) {
	var envelope struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return OutcomeIgnored, fmt.Errorf("malformed webhook body: %w", err)
	}

	payload, ok := payos.VerifyWebhook(s.gateway.ChecksumKey(), envelope.Signature, body)
	if !ok {
		s.log.Warn("Webhook signature verification failed")
		return OutcomeIgnored, fmt.Errorf("invalid webhook signature")
	}

	return s.ApplyEvent(ctx, PaymentEvent{
		OrderCode: payload.Data.OrderCode,
		Amount:    payload.Data.Amount,
		Success:   payload.IsSuccess(),
		Reference: payload.Data.Reference,
		Channel:   "webhook",
	})
}

func (s *paymentService) HandleReturn(ctx context.Context, orderCode int64, cancelled bool) (string, error) {
	event := PaymentEvent{
		OrderCode: orderCode,
		Success:   false,
		Channel:   "return",
	}

	// The redirect itself is unauthenticated and unsigned, so a success is
	// never taken on faith: the gateway is queried for the real state.
	if !cancelled {
		info, err := s.gateway.GetPaymentInfo(ctx, strconv.FormatInt(orderCode, 10))
		if err != nil {
			return s.config.App.FrontendURL + "/payment/result?status=error", fmt.Errorf("verify payment state: %w", err)
		}
		if info.Data != nil && info.Data.Status == payos.StatusPaid {
			event.Success = true
			event.Amount = info.Data.AmountPaid
		}
	}

	outcome, err := s.ApplyEvent(ctx, event)
	if err != nil {
		if errors.Is(err, ErrUnknownOrderCode) {
			return s.config.App.FrontendURL + "/payment/result?status=unknown", err
		}
		return s.config.App.FrontendURL + "/payment/result?status=error", err
	}

	redirect := fmt.Sprintf("%s/payment/result?orderCode=%d&outcome=%s",
		s.config.App.FrontendURL, orderCode, outcome)
	return redirect, nil
}

func (s *paymentService) ApplyEvent(ctx context.Context, event PaymentEvent) (EventOutcome, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("begin reconciliation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := s.repo.PaymentOrder.FindByOrderCodeTx(ctx, tx, event.OrderCode)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("resolve order code %d: %w", event.OrderCode, err)
	}
	if order == nil {
		s.log.Warn("Event for unknown order code",
			zap.Int64("order_code", event.OrderCode),
			zap.String("channel", event.Channel),
		)
		return OutcomeIgnored, ErrUnknownOrderCode
	}

	var outcome EventOutcome
	switch order.Kind {
	case entity.OrderKindBookingPayment:
		outcome, err = s.applyBookingPayment(ctx, tx, order, event)
	case entity.OrderKindRefundSettlement:
		outcome, err = s.applyRefundSettlement(ctx, tx, order, event)
	case entity.OrderKindSubscriptionPayment:
		outcome, err = s.applySubscriptionPayment(ctx, tx, order, event)
	default:
		return OutcomeIgnored, fmt.Errorf("payment order %d has unknown kind %s", order.OrderCode, order.Kind)
	}
	if err != nil {
		return OutcomeIgnored, err
	}

	if err := tx.Commit(ctx); err != nil {
		return OutcomeIgnored, fmt.Errorf("commit reconciliation transaction: %w", err)
	}

	s.log.Info("Payment event applied",
		zap.Int64("order_code", event.OrderCode),
		zap.String("kind", string(order.Kind)),
		zap.String("channel", event.Channel),
		zap.Bool("success", event.Success),
		zap.String("outcome", string(outcome)),
	)

	return outcome, nil
}

func (s *paymentService) applyBookingPayment(ctx context.Context, tx pgx.Tx, order *entity.PaymentOrder, event PaymentEvent) (EventOutcome, error) {
	if order.BookingID == nil {
		return OutcomeIgnored, fmt.Errorf("payment order %d has no booking", order.OrderCode)
	}

	booking, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, *order.BookingID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("lock booking: %w", err)
	}
	if booking == nil {
		return OutcomeIgnored, fmt.Errorf("booking %s not found for order %d", order.BookingID.String(), order.OrderCode)
	}

	// Replays and late arrivals: whatever channel got here first already
	// settled the booking, so a second event of either polarity is a no-op.
	if booking.Status != entity.BookingStatusPending {
		if event.Success && booking.Status == entity.BookingStatusCancelled {
			s.log.Warn("Successful payment for a cancelled booking, manual refund needed",
				zap.String("booking_id", booking.ID.String()),
				zap.Int64("order_code", order.OrderCode),
			)
		}
		return OutcomeAlreadyApplied, nil
	}

	if !event.Success {
		updated, err := s.repo.Booking.UpdateStatusTx(ctx, tx, booking.ID, entity.BookingStatusPending, entity.BookingStatusCancelled)
		if err != nil {
			return OutcomeIgnored, fmt.Errorf("cancel booking: %w", err)
		}
		if !updated {
			return OutcomeAlreadyApplied, nil
		}
		return OutcomeCancelled, nil
	}

	if event.Amount > 0 && event.Amount != int(booking.TotalPrice) {
		s.log.Warn("Settled amount differs from booking price",
			zap.String("booking_id", booking.ID.String()),
			zap.Int("settled", event.Amount),
			zap.Float64("expected", booking.TotalPrice),
		)
	}

	// Authoritative double-booking check, under row locks this time. Losing
	// the race cancels the booking even though the money arrived; the
	// customer then goes through the refund workflow.
	overlapping, err := s.repo.Booking.FindOverlappingForUpdate(ctx, tx, booking.CondotelID, booking.ID, booking.StartDate, booking.EndDate)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("recheck availability: %w", err)
	}
	if len(overlapping) > 0 {
		if _, err := s.repo.Booking.UpdateStatusTx(ctx, tx, booking.ID, entity.BookingStatusPending, entity.BookingStatusCancelled); err != nil {
			return OutcomeIgnored, fmt.Errorf("cancel conflicting booking: %w", err)
		}
		s.log.Warn("Paid booking lost the date race and was cancelled",
			zap.String("booking_id", booking.ID.String()),
			zap.String("condotel_id", booking.CondotelID.String()),
		)
		return OutcomeConflict, nil
	}

	updated, err := s.repo.Booking.UpdateStatusTx(ctx, tx, booking.ID, entity.BookingStatusPending, entity.BookingStatusConfirmed)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("confirm booking: %w", err)
	}
	if !updated {
		return OutcomeAlreadyApplied, nil
	}

	// Voucher use is consumed in the same transaction as the confirmation.
	// An exhausted voucher at this point does not unwind the paid booking.
	if booking.VoucherID != nil {
		reserved, err := s.repo.Voucher.TryIncrementUsageTx(ctx, tx, *booking.VoucherID)
		if err != nil {
			return OutcomeIgnored, fmt.Errorf("consume voucher use: %w", err)
		}
		if !reserved {
			s.log.Warn("Voucher exhausted between booking and confirmation",
				zap.String("booking_id", booking.ID.String()),
				zap.String("voucher_id", booking.VoucherID.String()),
			)
		}
	}

	return OutcomeConfirmed, nil
}

func (s *paymentService) applyRefundSettlement(ctx context.Context, tx pgx.Tx, order *entity.PaymentOrder, event PaymentEvent) (EventOutcome, error) {
	if order.RefundRequestID == nil {
		return OutcomeIgnored, fmt.Errorf("payment order %d has no refund request", order.OrderCode)
	}

	refund, err := s.repo.Refund.FindByIDForUpdate(ctx, tx, *order.RefundRequestID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("lock refund request: %w", err)
	}
	if refund == nil {
		return OutcomeIgnored, fmt.Errorf("refund request %s not found for order %d", order.RefundRequestID.String(), order.OrderCode)
	}

	if !event.Success {
		s.log.Warn("Refund settlement failed, request stays pending",
			zap.String("refund_id", refund.ID.String()),
			zap.Int64("order_code", order.OrderCode),
		)
		return OutcomeIgnored, nil
	}

	updated, err := s.repo.Refund.MarkRefundedTx(ctx, tx, refund.ID, time.Now())
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("mark refund settled: %w", err)
	}
	if !updated {
		return OutcomeAlreadyApplied, nil
	}

	// A settled refund releases the voucher use the original payment
	// consumed. A read failure here must fail the whole transaction, or the
	// refund commits without the decrement and the replay guard then keeps
	// the voucher use leaked for good.
	booking, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, refund.BookingID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("lock booking for voucher release: %w", err)
	}
	if booking != nil && booking.VoucherID != nil {
		if err := s.repo.Voucher.DecrementUsageTx(ctx, tx, *booking.VoucherID); err != nil {
			return OutcomeIgnored, fmt.Errorf("release voucher use: %w", err)
		}
	}

	return OutcomeRefunded, nil
}

func (s *paymentService) applySubscriptionPayment(ctx context.Context, tx pgx.Tx, order *entity.PaymentOrder, event PaymentEvent) (EventOutcome, error) {
	if order.HostID == nil || order.PackageID == nil {
		return OutcomeIgnored, fmt.Errorf("payment order %d has no subscription target", order.OrderCode)
	}

	sub, err := s.repo.HostPackage.FindForUpdate(ctx, tx, *order.HostID, *order.PackageID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("lock host package: %w", err)
	}
	if sub == nil {
		return OutcomeIgnored, fmt.Errorf("host package not found for order %d", order.OrderCode)
	}

	if !event.Success {
		updated, err := s.repo.HostPackage.CancelPendingTx(ctx, tx, sub.ID)
		if err != nil {
			return OutcomeIgnored, fmt.Errorf("cancel host package: %w", err)
		}
		if !updated {
			return OutcomeAlreadyApplied, nil
		}
		return OutcomeCancelled, nil
	}

	start := utils.Today()
	end := start.AddDate(0, 0, sub.DurationDays)
	updated, err := s.repo.HostPackage.ActivateTx(ctx, tx, sub.ID, start, end)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("activate host package: %w", err)
	}
	if !updated {
		return OutcomeAlreadyApplied, nil
	}

	return OutcomeActivated, nil
}
