package main

import (
	"context"
	"log/slog"
	"os"

	"courier/config"
	"courier/internal/delivery"
	"courier/internal/delivery/http"
	"courier/internal/delivery/http/middleware"
	"courier/internal/delivery/http/router/handler"
	"courier/internal/delivery/ws"
	"courier/internal/domain/service"
	"courier/internal/infra/geocode"
	logs "courier/internal/infra/log"
	"courier/internal/infra/notification"
	"courier/internal/infra/persistence/postgres"
	"courier/internal/infra/pubsub"
	"courier/internal/infra/qrcode"
	"courier/internal/realtime"
	"courier/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectRealtime(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewParcelRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			notification.NewNotificationService,
			pubsub.NewEventPublisher,
			geocode.NewGeocodeService,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M", "")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func injectRealtime() fx.Option {
	return fx.Options(
		fx.Provide(
			newLocationCache,
			realtime.NewTopicRegistry,
			realtime.NewEventRouter,
			newParcelBroadcaster,
			ws.NewHub,
		),
	)
}

// newLocationCache sizes the speed plausibility band from the tracking config
func newLocationCache(cfg *config.Config) *realtime.LocationCache {
	return realtime.NewLocationCache(cfg.Tracking.MaxPlausibleSpeedKmh)
}

// newParcelBroadcaster exposes the event router as the usecase broadcast port
func newParcelBroadcaster(router *realtime.EventRouter) service.ParcelBroadcaster {
	return router
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewParcelService,
			impl.NewTrackingService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewRequestIDMiddleware,
			middleware.NewLoggerMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewParcelHandler,
			handler.NewTrackingHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
