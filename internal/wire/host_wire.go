package wire

import (
	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireHost(
	r chi.Router,
	packageHandler *adaptor.PackageHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Get("/api/v1/packages", packageHandler.ListPackages)

	r.Route("/api/v1/host/packages", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Host(log))

		r.Post("/", packageHandler.PurchasePackage)
		r.Get("/", packageHandler.GetMySubscriptions)
	})
}
