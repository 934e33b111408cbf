package services

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestUserQRCode(t *testing.T) {
	s := NewQRService("https://example.com/")

	b, err := s.UserQRCode("bob")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, pngSignature))

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, qrSize, img.Bounds().Dx())
}

func TestVehicleUploadURL(t *testing.T) {
	s := NewQRService("https://vehicledamage.molyneaux.xyz/")

	u, err := s.VehicleUploadURL("TRK 1&2")
	require.NoError(t, err)
	assert.Equal(t, "https://vehicledamage.molyneaux.xyz/?vehicle=TRK+1%262", u)

	_, err = s.VehicleUploadURL("  ")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
