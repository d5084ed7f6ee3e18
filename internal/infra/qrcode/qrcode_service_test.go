package qrcode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel, "")
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateTrackingQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://track.example.com")

	qrBytes, err := service.GenerateTrackingQR("TRK-4F9A2C71B0")
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_GenerateTrackingQR_DifferentSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, "M", "")

			qrBytes, err := service.GenerateTrackingQR("TRK-4F9A2C71B0")
			require.NoError(t, err)
			assert.NotEmpty(t, qrBytes)
		})
	}
}

func TestQRCodeService_ParseTrackingQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	data := QRCodeData{
		TrackingCode: "TRK-4F9A2C71B0",
		Type:         "tracking",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	parsed, err := service.ParseTrackingQR(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, "TRK-4F9A2C71B0", parsed)
}

func TestQRCodeService_ParseTrackingQR_InvalidJSON(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	_, err := service.ParseTrackingQR("invalid json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal QR code data")
}

func TestQRCodeService_ParseTrackingQR_InvalidType(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	data := QRCodeData{
		TrackingCode: "TRK-4F9A2C71B0",
		Type:         "invalid_type",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	_, err = service.ParseTrackingQR(string(jsonData))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid QR code type")
}

func TestQRCodeService_ParseTrackingQR_MissingCode(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	data := QRCodeData{Type: "tracking"}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	_, err = service.ParseTrackingQR(string(jsonData))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no tracking code")
}
