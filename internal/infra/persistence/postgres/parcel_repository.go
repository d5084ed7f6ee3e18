// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"courier/internal/domain/entity"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/domain/repository"
	"courier/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// parcelRepository implements the repository.ParcelRepository interface.
type parcelRepository struct {
	db *gorm.DB
}

// NewParcelRepository is the constructor for parcelRepository.
func NewParcelRepository(db *gorm.DB) repository.ParcelRepository {
	return &parcelRepository{db: db}
}

// CreateParcel persists a new parcel.
func (repo *parcelRepository) CreateParcel(ctx context.Context, parcel *entity.Parcel) error {
	parcelM := fromParcelDomain(parcel)

	if err := repo.db.WithContext(ctx).Create(parcelM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrTrackingCodeConflict
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrParcelCreationFailed.WrapMessage("missing required parcel information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create parcel")
	}

	// Update the entity with generated values
	parcel.ID = parcelM.ID
	parcel.CreatedAt = parcelM.CreatedAt
	parcel.UpdatedAt = parcelM.UpdatedAt

	return nil
}

// FindParcelByID retrieves a parcel by its unique ID.
func (repo *parcelRepository) FindParcelByID(ctx context.Context, id uuid.UUID) (*entity.Parcel, error) {
	var parcelM model.ParcelModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&parcelM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParcelNotFound
		}

		return nil, errors.Wrap(err, "failed to find parcel by ID")
	}

	return toParcelDomain(&parcelM), nil
}

// FindParcelByTrackingCode retrieves a parcel by its public tracking code.
func (repo *parcelRepository) FindParcelByTrackingCode(ctx context.Context, trackingCode string) (*entity.Parcel, error) {
	var parcelM model.ParcelModel
	err := repo.db.WithContext(ctx).
		Where("tracking_code = ?", trackingCode).
		First(&parcelM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParcelNotFound
		}

		return nil, errors.Wrap(err, "failed to find parcel by tracking code")
	}

	return toParcelDomain(&parcelM), nil
}

// FindParcelsByAgent retrieves all parcels currently assigned to an agent.
func (repo *parcelRepository) FindParcelsByAgent(ctx context.Context, agentID uuid.UUID) ([]*entity.Parcel, error) {
	var parcelModels []*model.ParcelModel
	err := repo.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		Find(&parcelModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find parcels by agent")
	}

	return toParcelDomainSlice(parcelModels), nil
}

// FindActiveParcels retrieves all parcels not yet in a terminal status.
func (repo *parcelRepository) FindActiveParcels(ctx context.Context) ([]*entity.Parcel, error) {
	var parcelModels []*model.ParcelModel
	err := repo.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			string(entity.StatusDelivered),
			string(entity.StatusFailed),
		}).
		Order("created_at ASC").
		Find(&parcelModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find active parcels")
	}

	return toParcelDomainSlice(parcelModels), nil
}

// UpdateParcel updates an existing parcel record.
func (repo *parcelRepository) UpdateParcel(ctx context.Context, parcel *entity.Parcel) error {
	parcelM := fromParcelDomain(parcel)

	result := repo.db.WithContext(ctx).
		Model(&model.ParcelModel{}).
		Where("id = ?", parcelM.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(parcelM)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrTrackingCodeConflict
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update parcel")
	}
	if result.RowsAffected == 0 {
		return repository.ErrParcelNotFound
	}

	parcel.UpdatedAt = parcelM.UpdatedAt

	return nil
}

// CountParcelsByStatus returns the total count of parcels in a given status.
func (repo *parcelRepository) CountParcelsByStatus(ctx context.Context, status entity.Status) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.ParcelModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count parcels by status")
	}

	return count, nil
}

// --- Mapper Functions ---

// toParcelDomain converts a GORM ParcelModel to a domain Parcel entity.
func toParcelDomain(data *model.ParcelModel) *entity.Parcel {
	if data == nil {
		return nil
	}

	parcel := &entity.Parcel{
		ID:              data.ID,
		TrackingCode:    data.TrackingCode,
		Status:          entity.Status(data.Status),
		AgentID:         data.AgentID,
		EtaMinutes:      data.EtaMinutes,
		PickupAddress:   data.PickupAddress,
		DeliveryAddress: data.DeliveryAddress,
		RecipientToken:  data.RecipientToken,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}

	if data.CurrentLatitude != nil && data.CurrentLongitude != nil && data.LocationCapturedAt != nil {
		parcel.CurrentLocation = &entity.Location{
			Latitude:   *data.CurrentLatitude,
			Longitude:  *data.CurrentLongitude,
			CapturedAt: *data.LocationCapturedAt,
		}
	}

	if data.OtpCode != nil && data.OtpExpiresAt != nil && data.OtpAttemptsRemaining != nil {
		parcel.DeliveryOtp = &entity.DeliveryOtp{
			Code:              *data.OtpCode,
			ExpiresAt:         *data.OtpExpiresAt,
			AttemptsRemaining: *data.OtpAttemptsRemaining,
		}
	}

	return parcel
}

func toParcelDomainSlice(data []*model.ParcelModel) []*entity.Parcel {
	parcels := make([]*entity.Parcel, 0, len(data))
	for _, parcelM := range data {
		parcels = append(parcels, toParcelDomain(parcelM))
	}

	return parcels
}

// fromParcelDomain converts a domain Parcel entity to a GORM ParcelModel.
func fromParcelDomain(data *entity.Parcel) *model.ParcelModel {
	if data == nil {
		return nil
	}

	parcelM := &model.ParcelModel{
		ID:              data.ID,
		TrackingCode:    data.TrackingCode,
		Status:          string(data.Status),
		AgentID:         data.AgentID,
		EtaMinutes:      data.EtaMinutes,
		PickupAddress:   data.PickupAddress,
		DeliveryAddress: data.DeliveryAddress,
		RecipientToken:  data.RecipientToken,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}

	if data.CurrentLocation != nil {
		lat := data.CurrentLocation.Latitude
		lng := data.CurrentLocation.Longitude
		capturedAt := data.CurrentLocation.CapturedAt
		parcelM.CurrentLatitude = &lat
		parcelM.CurrentLongitude = &lng
		parcelM.LocationCapturedAt = &capturedAt
	}

	if data.DeliveryOtp != nil {
		code := data.DeliveryOtp.Code
		expiresAt := data.DeliveryOtp.ExpiresAt
		attempts := data.DeliveryOtp.AttemptsRemaining
		parcelM.OtpCode = &code
		parcelM.OtpExpiresAt = &expiresAt
		parcelM.OtpAttemptsRemaining = &attempts
	}

	return parcelM
}
