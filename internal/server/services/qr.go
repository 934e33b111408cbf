package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
)

const qrSize = 256

// QRService renders QR codes and builds upload links for vehicles.
type QRService struct {
	publicUploadURL string
}

func NewQRService(publicUploadURL string) *QRService {
	return &QRService{publicUploadURL: publicUploadURL}
}

// UserQRCode returns a PNG encoding "Logged in user: <username>".
func (s *QRService) UserQRCode(username string) ([]byte, error) {
	png, err := qrcode.Encode("Logged in user: "+username, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// VehicleUploadURL returns the public upload page link for vehicleNumber.
func (s *QRService) VehicleUploadURL(vehicleNumber string) (string, error) {
	vehicleNumber = strings.TrimSpace(vehicleNumber)
	if vehicleNumber == "" {
		return "", fmt.Errorf("%w: vehicle_number is required", common.ErrorValidation)
	}

	u, err := url.Parse(s.publicUploadURL)
	if err != nil {
		return "", fmt.Errorf("public upload url: %w", err)
	}
	q := u.Query()
	q.Set("vehicle", vehicleNumber)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
