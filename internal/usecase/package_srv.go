package usecase

import (
	"context"
	"fmt"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/internal/data/repository"
	"condotel-booking/internal/dto/request"
	"condotel-booking/internal/dto/response"
	"condotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PackageService interface {
	ListPackages(ctx context.Context) ([]*entity.Package, error)

	// PurchasePackage opens a pending subscription and returns the payment
	// link. Retrying a purchase supersedes the previous pending attempt.
	PurchasePackage(ctx context.Context, hostID string, req *request.PurchasePackageRequest) (*response.PackagePurchaseResponse, error)

	GetHostSubscriptions(ctx context.Context, hostID string) ([]*entity.HostPackage, error)
	HasActiveSubscription(ctx context.Context, hostID string) (bool, error)
}

type packageService struct {
	repo     *repository.Repository
	payments PaymentService
	log      *zap.Logger
}

func NewPackageService(repo *repository.Repository, payments PaymentService, log *zap.Logger) PackageService {
	return &packageService{
		repo:     repo,
		payments: payments,
		log:      log.With(zap.String("service", "package")),
	}
}

func (s *packageService) ListPackages(ctx context.Context) ([]*entity.Package, error) {
	packages, err := s.repo.HostPackage.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

func (s *packageService) PurchasePackage(ctx context.Context, hostID string, req *request.PurchasePackageRequest) (*response.PackagePurchaseResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	hostUUID, err := uuid.Parse(hostID)
	if err != nil {
		return nil, fmt.Errorf("invalid host ID format %s: %w", hostID, err)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("invalid package ID format %s: %w", req.PackageID, err)
	}

	pkg, err := s.repo.HostPackage.FindPackageByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s not found", req.PackageID)
	}
	if pkg.Status != "active" {
		return nil, fmt.Errorf("package %s is not for sale", pkg.Name)
	}

	active, err := s.repo.HostPackage.FindActiveByHostID(ctx, hostUUID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("check active subscription: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("host already has an active subscription")
	}

	link, err := s.payments.CreateOrderLink(ctx, &entity.PaymentOrder{
		Kind:      entity.OrderKindSubscriptionPayment,
		HostID:    &hostUUID,
		PackageID: &packageID,
	}, int(pkg.Price), fmt.Sprintf("Package %s", pkg.Name))
	if err != nil {
		return nil, fmt.Errorf("create subscription payment link: %w", err)
	}

	sub := &entity.HostPackage{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		HostID:       hostUUID,
		PackageID:    packageID,
		Status:       entity.HostPackageStatusPendingPayment,
		DurationDays: pkg.DurationDays,
		OrderCode:    link.OrderCode,
	}

	if err := s.repo.HostPackage.Replace(ctx, sub); err != nil {
		return nil, fmt.Errorf("open subscription: %w", err)
	}

	s.log.Info("Package purchase opened",
		zap.String("host_id", hostID),
		zap.String("package_id", req.PackageID),
		zap.Int64("order_code", link.OrderCode),
	)

	return &response.PackagePurchaseResponse{
		SubscriptionID: sub.ID.String(),
		PackageName:    pkg.Name,
		OrderCode:      link.OrderCode,
		CheckoutURL:    link.CheckoutURL,
		Amount:         link.Amount,
	}, nil
}

func (s *packageService) GetHostSubscriptions(ctx context.Context, hostID string) ([]*entity.HostPackage, error) {
	hostUUID, err := uuid.Parse(hostID)
	if err != nil {
		return nil, fmt.Errorf("invalid host ID format %s: %w", hostID, err)
	}

	subs, err := s.repo.HostPackage.FindByHostID(ctx, hostUUID)
	if err != nil {
		return nil, fmt.Errorf("get host subscriptions: %w", err)
	}
	return subs, nil
}

func (s *packageService) HasActiveSubscription(ctx context.Context, hostID string) (bool, error) {
	hostUUID, err := uuid.Parse(hostID)
	if err != nil {
		return false, fmt.Errorf("invalid host ID format %s: %w", hostID, err)
	}

	active, err := s.repo.HostPackage.FindActiveByHostID(ctx, hostUUID, time.Now())
	if err != nil {
		return false, fmt.Errorf("check active subscription: %w", err)
	}
	return active != nil, nil
}
