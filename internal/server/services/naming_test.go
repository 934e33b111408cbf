package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
)

func TestValidateVehicleID(t *testing.T) {
	for _, ok := range []string{"TRK1", "V9", "ab-12_x.y", "a"} {
		assert.NoError(t, ValidateVehicleID(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`, "../etc", "with space", "ü", string(make([]byte, 65))} {
		assert.ErrorIs(t, ValidateVehicleID(bad), common.ErrorValidation, bad)
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(0, 0))
	assert.NoError(t, ValidateCoordinates(-90, 180))
	assert.NoError(t, ValidateCoordinates(90, -180))

	assert.ErrorIs(t, ValidateCoordinates(90.1, 0), common.ErrorValidation)
	assert.ErrorIs(t, ValidateCoordinates(0, -180.5), common.ErrorValidation)
	assert.ErrorIs(t, ValidateCoordinates(math.NaN(), 0), common.ErrorValidation)
	assert.ErrorIs(t, ValidateCoordinates(0, math.Inf(1)), common.ErrorValidation)
}

func TestPhotoExt(t *testing.T) {
	tests := map[string]string{
		"photo.png":          ".png",
		"IMG_0001.JPG":       ".JPG",
		"archive.tar.gz":     ".gz",
		"noext":              ".jpg",
		"":                   ".jpg",
		"weird.":             ".jpg",
		"bad.ext with space": ".jpg",
		"evil.j/pg":          ".jpg",
		"long.abcdefghijk":   ".jpg",
	}
	for in, want := range tests {
		assert.Equal(t, want, PhotoExt(in), in)
	}
}

func TestPhotoName(t *testing.T) {
	ts := time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC)

	assert.Equal(t, "20261016_101500_lat1.23_lon4.56.jpg", PhotoName(ts, 0, 1.23, 4.56, ".jpg"))
	assert.Equal(t, "20261016_101500_02_lat-0.5_lon0.png", PhotoName(ts, 2, -0.5, 0, ".png"))
	assert.Equal(t, "20261016_101500_lat51.5074_lon-0.1278.jpg", PhotoName(ts, 0, 51.5074, -0.1278, ".jpg"))
}

func TestParsePhotoName_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC)

	for _, seq := range []int{0, 3} {
		name := PhotoName(ts, seq, -33.8688, 151.2093, ".jpeg")
		p, ok := ParsePhotoName(name, time.UTC)
		require.True(t, ok, name)

		assert.Equal(t, name, p.FileName)
		assert.True(t, p.DateTaken.Equal(ts))
		assert.Equal(t, -33.8688, p.Latitude)
		assert.Equal(t, 151.2093, p.Longitude)
	}
}

func TestParsePhotoName_Rejects(t *testing.T) {
	for _, n := range []string{
		"holiday.jpg",
		"20261016_101500_lat1_lon2",
		"20261316_101500_lat1_lon2.jpg",
		"20261016_101500_latx_lon2.jpg",
		".upload-123.tmp",
	} {
		_, ok := ParsePhotoName(n, time.UTC)
		assert.False(t, ok, n)
	}
}

func TestValidStoredName(t *testing.T) {
	assert.True(t, validStoredName("20261016_101500_lat1_lon2.jpg"))
	assert.False(t, validStoredName(""))
	assert.False(t, validStoredName(".hidden"))
	assert.False(t, validStoredName(".."))
	assert.False(t, validStoredName("a/b.jpg"))
}
