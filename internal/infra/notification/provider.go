package notification

import (
	"context"
	"log/slog"

	"courier/config"
	"courier/internal/domain/service"

	"go.uber.org/fx"
)

// noopNotificationService is used when Firebase is not configured; pushes are
// logged and dropped so local development needs no credentials.
type noopNotificationService struct {
	logger *slog.Logger
}

func (s *noopNotificationService) SendSingleNotification(_ context.Context, token, title, _ string, _ map[string]string) error {
	s.logger.Debug("[NoopNotification] Push disabled, skipping",
		slog.String("token", token),
		slog.String("title", title),
	)

	return nil
}

// ServiceParams holds dependencies for the notification service, injected by Fx
type ServiceParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewNotificationService creates a NotificationService based on configuration
func NewNotificationService(params ServiceParams) (service.NotificationService, error) {
	cfg := params.Config.Firebase
	if cfg == nil || cfg.CredentialsPath == "" {
		params.Logger.Info("Firebase not configured, using no-op notification service")

		return &noopNotificationService{logger: params.Logger}, nil
	}

	return NewFirebaseService(params.Ctx, cfg.CredentialsPath)
}
