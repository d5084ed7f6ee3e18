package impl

import (
	"context"
	"log/slog"
	"time"

	"courier/config"
	deliverycontext "courier/internal/delivery/context"
	"courier/internal/domain/entity"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/domain/repository"
	"courier/internal/domain/service"
	"courier/internal/realtime"
	"courier/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// trackingService implements the TrackingUsecase interface.
type trackingService struct {
	parcelRepo  repository.ParcelRepository
	cache       *realtime.LocationCache
	qrService   service.QRCodeService
	trackingCfg *config.TrackingConfig
	logger      *slog.Logger
}

// TrackingServiceParams holds dependencies for TrackingService, injected by Fx.
type TrackingServiceParams struct {
	fx.In

	ParcelRepo repository.ParcelRepository
	Cache      *realtime.LocationCache
	QRService  service.QRCodeService
	Config     *config.Config
	Logger     *slog.Logger
}

// NewTrackingService is the constructor for trackingService.
func NewTrackingService(params TrackingServiceParams) usecase.TrackingUsecase {
	return &trackingService{
		parcelRepo:  params.ParcelRepo,
		cache:       params.Cache,
		qrService:   params.QRService,
		trackingCfg: params.Config.Tracking,
		logger:      params.Logger,
	}
}

func (srv *trackingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetParcelByTrackingCode retrieves a parcel via its public code.
func (srv *trackingService) GetParcelByTrackingCode(ctx context.Context, trackingCode string) (*entity.Parcel, error) {
	parcel, err := srv.parcelRepo.FindParcelByTrackingCode(ctx, trackingCode)
	if err != nil {
		if errors.Is(err, repository.ErrParcelNotFound) {
			return nil, errors.Wrap(domainerrors.ErrParcelNotFound, "tracking lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find parcel by tracking code")
	}

	return parcel, nil
}

// GetTrackingQR renders the QR image for an existing tracking code.
func (srv *trackingService) GetTrackingQR(ctx context.Context, trackingCode string) ([]byte, error) {
	if _, err := srv.GetParcelByTrackingCode(ctx, trackingCode); err != nil {
		return nil, err
	}

	image, err := srv.qrService.GenerateTrackingQR(trackingCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tracking qr")
	}

	return image, nil
}

// GetAgentStatus reports an agent's last known location, derived speed and
// online flag from the shared location cache.
func (srv *trackingService) GetAgentStatus(ctx context.Context, agentID string) (*usecase.AgentStatusOutput, error) {
	current, ok := srv.cache.CurrentOf(agentID)
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrAgentLocationUnknown, "agent status lookup failed")
	}

	output := &usecase.AgentStatusOutput{
		AgentID:  agentID,
		Online:   srv.cache.IsOnline(agentID, time.Now(), srv.trackingCfg.FreshnessWindow),
		Location: &current,
	}
	if speed, ok := srv.cache.SpeedOf(agentID); ok {
		output.SpeedKmh = &speed
	}

	return output, nil
}

// ListActiveParcels retrieves all parcels not yet in a terminal status.
func (srv *trackingService) ListActiveParcels(ctx context.Context) ([]*entity.Parcel, error) {
	parcels, err := srv.parcelRepo.FindActiveParcels(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find active parcels")
	}

	return parcels, nil
}

// GetStatusSummary counts parcels per lifecycle state.
func (srv *trackingService) GetStatusSummary(ctx context.Context) (*usecase.StatusSummaryOutput, error) {
	statuses := []entity.Status{
		entity.StatusPending,
		entity.StatusAssigned,
		entity.StatusPickedUp,
		entity.StatusInTransit,
		entity.StatusDelivered,
		entity.StatusFailed,
	}

	counts := make(map[entity.Status]int64, len(statuses))
	for _, status := range statuses {
		count, err := srv.parcelRepo.CountParcelsByStatus(ctx, status)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count parcels in %s", status)
		}
		counts[status] = count
	}

	return &usecase.StatusSummaryOutput{Counts: counts}, nil
}
