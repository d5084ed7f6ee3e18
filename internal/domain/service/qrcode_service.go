package service

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateTrackingQR generates a QR code for a parcel tracking page
	GenerateTrackingQR(trackingCode string) ([]byte, error)

	// ParseTrackingQR parses QR code data and returns the tracking code
	ParseTrackingQR(qrData string) (string, error)
}
