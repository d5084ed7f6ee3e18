package qrcode

import (
	"encoding/json"
	"fmt"

	"courier/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	TrackingCode string `json:"tracking_code"`
	TrackingURL  string `json:"tracking_url,omitempty"`
	Type         string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              baseURL,
	}
}

// GenerateTrackingQR generates a QR code for a parcel tracking page
func (s *qrcodeService) GenerateTrackingQR(trackingCode string) ([]byte, error) {
	// Create QR code data
	data := QRCodeData{
		TrackingCode: trackingCode,
		Type:         "tracking",
	}
	if s.baseURL != "" {
		data.TrackingURL = fmt.Sprintf("%s/track/%s", s.baseURL, trackingCode)
	}

	// Convert to JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	// Generate QR code
	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// Generate PNG image
	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseTrackingQR parses QR code data and returns the tracking code
func (s *qrcodeService) ParseTrackingQR(qrData string) (string, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	// Validate type
	if data.Type != "tracking" {
		return "", fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	if data.TrackingCode == "" {
		return "", fmt.Errorf("QR code carries no tracking code")
	}

	return data.TrackingCode, nil
}
