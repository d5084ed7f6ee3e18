// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"courier/config"
	deliverycontext "courier/internal/delivery/context"
	"courier/internal/domain/entity"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/domain/repository"
	"courier/internal/domain/service"
	"courier/internal/geo"
	"courier/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// parcelService implements the ParcelUsecase interface.
type parcelService struct {
	parcelRepo  repository.ParcelRepository
	geocoder    service.GeocodeService
	notifier    service.NotificationService
	publisher   service.EventPublisher
	broadcaster service.ParcelBroadcaster
	otpCfg      *config.DeliveryOtpConfig
	trackingCfg *config.TrackingConfig
	logger      *slog.Logger
}

// ParcelServiceParams holds dependencies for ParcelService, injected by Fx.
type ParcelServiceParams struct {
	fx.In

	ParcelRepo  repository.ParcelRepository
	Geocoder    service.GeocodeService
	Notifier    service.NotificationService
	Publisher   service.EventPublisher
	Broadcaster service.ParcelBroadcaster
	Config      *config.Config
	Logger      *slog.Logger
}

// NewParcelService is the constructor for parcelService. It receives all dependencies as interfaces.
func NewParcelService(params ParcelServiceParams) usecase.ParcelUsecase {
	return &parcelService{
		parcelRepo:  params.ParcelRepo,
		geocoder:    params.Geocoder,
		notifier:    params.Notifier,
		publisher:   params.Publisher,
		broadcaster: params.Broadcaster,
		otpCfg:      params.Config.DeliveryOtp,
		trackingCfg: params.Config.Tracking,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *parcelService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateParcel registers a new parcel in Pending status.
func (srv *parcelService) CreateParcel(ctx context.Context, input *usecase.CreateParcelInput) (*entity.Parcel, error) {
	trackingCode := strings.TrimSpace(input.TrackingCode)
	if trackingCode == "" {
		trackingCode = newTrackingCode()
	}

	now := time.Now()
	parcel := &entity.Parcel{
		ID:              uuid.New(),
		TrackingCode:    trackingCode,
		Status:          entity.StatusPending,
		PickupAddress:   input.PickupAddress,
		DeliveryAddress: input.DeliveryAddress,
		RecipientToken:  input.RecipientToken,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := srv.parcelRepo.CreateParcel(ctx, parcel); err != nil {
		if errors.Is(err, repository.ErrTrackingCodeConflict) {
			return nil, domainerrors.ErrTrackingCodeConflict.WrapMessage("parcel registration failed")
		}

		return nil, errors.Wrap(err, "failed to create parcel")
	}

	srv.log(ctx).Info("parcel registered",
		slog.String("parcelId", parcel.ID.String()),
		slog.String("trackingCode", parcel.TrackingCode),
	)

	srv.broadcaster.BroadcastParcelCreated(parcel)
	srv.publishEvent(ctx, parcel)

	return parcel, nil
}

// GetParcel retrieves a parcel by ID.
func (srv *parcelService) GetParcel(ctx context.Context, parcelID uuid.UUID) (*entity.Parcel, error) {
	return srv.findParcel(ctx, parcelID)
}

// AssignAgent moves a Pending parcel to Assigned, or hands an Assigned parcel
// to another agent. Assignment is refused once the parcel has been picked up.
func (srv *parcelService) AssignAgent(ctx context.Context, parcelID, agentID uuid.UUID) (*entity.Parcel, error) {
	parcel, err := srv.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	if !parcel.CanReassign() {
		if parcel.Status.IsTerminal() {
			return nil, errors.Wrap(domainerrors.ErrParcelTerminal, "assign agent failed")
		}

		return nil, errors.Wrap(domainerrors.ErrParcelNotReassignable, "assign agent failed")
	}

	parcel.AgentID = &agentID
	parcel.Status = entity.StatusAssigned
	parcel.UpdatedAt = time.Now()

	if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
		return nil, errors.Wrap(err, "failed to update parcel")
	}

	srv.log(ctx).Info("agent assigned",
		slog.String("parcelId", parcel.ID.String()),
		slog.String("agentId", agentID.String()),
	)

	srv.broadcaster.BroadcastParcelUpdate(parcel)
	srv.publishEvent(ctx, parcel)

	return parcel, nil
}

// Transition advances the parcel along the delivery pipeline. A rejected
// transition leaves the stored status untouched and is never broadcast.
func (srv *parcelService) Transition(ctx context.Context, parcelID uuid.UUID, target entity.Status) (*entity.Parcel, error) {
	if !target.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown target status")
	}
	if target == entity.StatusDelivered {
		return nil, errors.Wrap(domainerrors.ErrIllegalTransition, "delivered is granted only by otp confirmation")
	}
	if target == entity.StatusAssigned {
		return nil, errors.Wrap(domainerrors.ErrAgentRequired, "assignment must name an agent")
	}

	parcel, err := srv.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	if !parcel.Status.CanAdvanceTo(target) {
		if parcel.Status.IsTerminal() {
			return nil, errors.Wrap(domainerrors.ErrParcelTerminal, "transition failed")
		}

		return nil, errors.Wrapf(domainerrors.ErrIllegalTransition, "transition %s -> %s", parcel.Status, target)
	}

	parcel.Status = target
	parcel.DeliveryOtp = nil
	parcel.UpdatedAt = time.Now()

	if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
		return nil, errors.Wrap(err, "failed to update parcel")
	}

	srv.log(ctx).Info("parcel transitioned",
		slog.String("parcelId", parcel.ID.String()),
		slog.String("status", string(parcel.Status)),
	)

	srv.broadcaster.BroadcastParcelUpdate(parcel)
	srv.publishEvent(ctx, parcel)

	return parcel, nil
}

// UpdateParcelLocation attaches a fresh location sample to an in-flight parcel
// and refreshes the ETA against the geocoded delivery address.
func (srv *parcelService) UpdateParcelLocation(ctx context.Context, parcelID uuid.UUID, input *usecase.UpdateParcelLocationInput) (*entity.Parcel, error) {
	parcel, err := srv.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	if parcel.Status != entity.StatusPickedUp && parcel.Status != entity.StatusInTransit {
		return nil, errors.Wrapf(domainerrors.ErrIllegalTransition, "parcel in status %s carries no live location", parcel.Status)
	}

	sample := entity.Location{
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		CapturedAt: time.UnixMilli(input.Timestamp),
	}
	if err := sample.Validate(); err != nil {
		return nil, domainerrors.ErrInvalidCoordinates.WrapMessage("parcel location rejected")
	}

	if parcel.CurrentLocation != nil && !sample.CapturedAt.After(parcel.CurrentLocation.CapturedAt) {
		return nil, errors.Wrap(domainerrors.ErrStaleLocationSample, "parcel location rejected")
	}

	parcel.CurrentLocation = &sample
	parcel.EtaMinutes = srv.estimateEta(ctx, parcel, sample)
	parcel.UpdatedAt = time.Now()

	if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
		return nil, errors.Wrap(err, "failed to update parcel")
	}

	srv.broadcaster.BroadcastParcelLocation(parcel)
	srv.publishEvent(ctx, parcel)

	return parcel, nil
}

// estimateEta derives the remaining minutes at the planning speed. Geocoding is
// best-effort; an unresolvable address leaves the ETA empty.
func (srv *parcelService) estimateEta(ctx context.Context, parcel *entity.Parcel, from entity.Location) *int {
	destination, err := srv.geocoder.Resolve(ctx, parcel.DeliveryAddress)
	if err != nil || destination == nil {
		srv.log(ctx).Debug("delivery address not resolvable, skipping eta",
			slog.String("parcelId", parcel.ID.String()),
		)

		return nil
	}

	eta := geo.ETAMinutes(from, *destination, srv.trackingCfg.AvgSpeedKmh)

	return &eta
}

// RequestDeliveryOtp issues a delivery confirmation code for an InTransit
// parcel, replacing any earlier code, and pushes it to the recipient device.
func (srv *parcelService) RequestDeliveryOtp(ctx context.Context, parcelID uuid.UUID) (*entity.Parcel, error) {
	parcel, err := srv.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	if parcel.Status != entity.StatusInTransit {
		return nil, errors.Wrapf(domainerrors.ErrOtpNotAvailable, "parcel in status %s", parcel.Status)
	}

	code, err := generateOtpCode(srv.otpCfg.Length)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp code")
	}

	parcel.DeliveryOtp = &entity.DeliveryOtp{
		Code:              code,
		ExpiresAt:         time.Now().Add(srv.otpCfg.TTL),
		AttemptsRemaining: srv.otpCfg.MaxAttempts,
	}
	parcel.UpdatedAt = time.Now()

	if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
		return nil, errors.Wrap(err, "failed to update parcel")
	}

	if parcel.RecipientToken != "" {
		err := srv.notifier.SendSingleNotification(ctx, parcel.RecipientToken,
			"Delivery confirmation",
			"Your delivery confirmation code is ready",
			map[string]string{
				"type":          "delivery_otp",
				"tracking_code": parcel.TrackingCode,
				"code":          code,
			},
		)
		if err != nil {
			srv.log(ctx).Warn("otp push failed",
				slog.String("parcelId", parcel.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	srv.log(ctx).Info("delivery otp issued",
		slog.String("parcelId", parcel.ID.String()),
		slog.Time("expiresAt", parcel.DeliveryOtp.ExpiresAt),
	)

	return parcel, nil
}

// ConfirmDeliveryOtp verifies the pending code. A match completes the delivery;
// this is the only path to the Delivered status.
func (srv *parcelService) ConfirmDeliveryOtp(ctx context.Context, parcelID uuid.UUID, code string) (*entity.Parcel, error) {
	parcel, err := srv.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	otp := parcel.DeliveryOtp
	if otp == nil {
		return nil, errors.Wrap(domainerrors.ErrNoPendingOtp, "otp confirmation failed")
	}

	if otp.Expired(time.Now()) {
		// An expired code is consumed, not kept around for a retry.
		parcel.DeliveryOtp = nil
		parcel.UpdatedAt = time.Now()

		if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
			return nil, errors.Wrap(err, "failed to update parcel")
		}

		return nil, errors.Wrap(domainerrors.ErrOtpExpired, "otp confirmation failed")
	}

	if otp.Code != code {
		otp.AttemptsRemaining--
		if otp.AttemptsRemaining <= 0 {
			parcel.DeliveryOtp = nil
		}
		parcel.UpdatedAt = time.Now()

		if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
			return nil, errors.Wrap(err, "failed to update parcel")
		}

		if parcel.DeliveryOtp == nil {
			return nil, errors.Wrap(domainerrors.ErrOtpAttemptsExhausted, "otp confirmation failed")
		}

		return nil, errors.Wrap(domainerrors.ErrOtpMismatch, "otp confirmation failed")
	}

	parcel.Status = entity.StatusDelivered
	parcel.DeliveryOtp = nil
	parcel.UpdatedAt = time.Now()

	if err := srv.parcelRepo.UpdateParcel(ctx, parcel); err != nil {
		return nil, errors.Wrap(err, "failed to update parcel")
	}

	srv.log(ctx).Info("delivery confirmed",
		slog.String("parcelId", parcel.ID.String()),
	)

	srv.broadcaster.BroadcastParcelUpdate(parcel)
	srv.publishEvent(ctx, parcel)

	return parcel, nil
}

func (srv *parcelService) findParcel(ctx context.Context, parcelID uuid.UUID) (*entity.Parcel, error) {
	parcel, err := srv.parcelRepo.FindParcelByID(ctx, parcelID)
	if err != nil {
		if errors.Is(err, repository.ErrParcelNotFound) {
			return nil, errors.Wrap(domainerrors.ErrParcelNotFound, "parcel lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find parcel by ID")
	}

	return parcel, nil
}

// publishEvent mirrors the change onto the message queue. Publishing is
// best-effort; a queue outage must not fail the user-facing operation.
func (srv *parcelService) publishEvent(ctx context.Context, parcel *entity.Parcel) {
	event := &service.ParcelEvent{
		RequestID:    deliverycontext.GetRequestIDFromContext(ctx),
		ParcelID:     parcel.ID.String(),
		TrackingCode: parcel.TrackingCode,
		Status:       string(parcel.Status),
		EtaMinutes:   parcel.EtaMinutes,
		OccurredAt:   time.Now().UnixMilli(),
	}
	if parcel.AgentID != nil {
		event.AgentID = parcel.AgentID.String()
	}
	if parcel.CurrentLocation != nil {
		event.Latitude = &parcel.CurrentLocation.Latitude
		event.Longitude = &parcel.CurrentLocation.Longitude
	}

	if err := srv.publisher.PublishParcelEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("parcel event publish failed",
			slog.String("parcelId", parcel.ID.String()),
			slog.Any("error", err),
		)
	}
}

// newTrackingCode builds a short public tracking code.
func newTrackingCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")

	return "TRK-" + strings.ToUpper(raw[:10])
}

// generateOtpCode draws a numeric code of the given length from crypto/rand.
func generateOtpCode(length int) (string, error) {
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}

	return builder.String(), nil
}
