package model

import (
	"time"

	"github.com/google/uuid"
)

// ParcelModel is the GORM-specific struct for the 'parcels' table. The pending
// delivery OTP is embedded as nullable columns; at most one code is live per
// parcel so a side table would buy nothing.
type ParcelModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	TrackingCode         string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_parcels_tracking_code"`
	Status               string     `gorm:"type:varchar(32);not null;index:idx_parcels_status"`
	AgentID              *uuid.UUID `gorm:"type:uuid;index:idx_parcels_agent"`
	CurrentLatitude      *float64   `gorm:"type:decimal(10,8)"`
	CurrentLongitude     *float64   `gorm:"type:decimal(11,8)"`
	LocationCapturedAt   *time.Time
	EtaMinutes           *int
	OtpCode              *string `gorm:"type:varchar(16)"`
	OtpExpiresAt         *time.Time
	OtpAttemptsRemaining *int
	PickupAddress        string `gorm:"type:text;not null"`
	DeliveryAddress      string `gorm:"type:text;not null"`
	RecipientToken       string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (ParcelModel) TableName() string {
	return "parcels"
}
