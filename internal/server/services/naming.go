package services

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
)

// TimestampLayout is the server-local capture time prefix of photo names.
const TimestampLayout = "20060102_150405"

const (
	defaultExt      = ".jpg"
	maxVehicleIDLen = 64
)

var (
	vehicleIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	extRe       = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)
	photoNameRe = regexp.MustCompile(`^(\d{8}_\d{6})(?:_(\d{2,}))?_lat(-?\d+(?:\.\d+)?)_lon(-?\d+(?:\.\d+)?)(\.[A-Za-z0-9]{1,10})$`)
	fileNameRe  = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)
)

// ValidateVehicleID accepts a single path segment made of letters, digits,
// dot, underscore and dash.
func ValidateVehicleID(id string) error {
	if id == "" || len(id) > maxVehicleIDLen || id == "." || id == ".." || !vehicleIDRe.MatchString(id) {
		return fmt.Errorf("%w: invalid vehicle_id %q", common.ErrorValidation, id)
	}
	return nil
}

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude out of range", common.ErrorValidation)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude out of range", common.ErrorValidation)
	}
	return nil
}

// PhotoExt returns the extension of an uploaded file name, or ".jpg" when
// it has none or it does not look like an extension.
func PhotoExt(fileName string) string {
	ext := filepath.Ext(fileName)
	if !extRe.MatchString(ext) {
		return defaultExt
	}
	return ext
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PhotoName builds <timestamp>[_NN]_lat<lat>_lon<lon><ext>. seq 0 omits the
// sequence part.
func PhotoName(ts time.Time, seq int, lat, lon float64, ext string) string {
	prefix := ts.Format(TimestampLayout)
	if seq > 0 {
		prefix = fmt.Sprintf("%s_%02d", prefix, seq)
	}
	return prefix + "_lat" + formatCoord(lat) + "_lon" + formatCoord(lon) + ext
}

// ParsePhotoName reverses PhotoName. The timestamp is read in loc.
func ParsePhotoName(name string, loc *time.Location) (models.Photo, bool) {
	m := photoNameRe.FindStringSubmatch(name)
	if m == nil {
		return models.Photo{}, false
	}

	ts, err := time.ParseInLocation(TimestampLayout, m[1], loc)
	if err != nil {
		return models.Photo{}, false
	}
	lat, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return models.Photo{}, false
	}
	lon, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return models.Photo{}, false
	}

	return models.Photo{FileName: name, DateTaken: ts, Latitude: lat, Longitude: lon}, true
}

// validStoredName reports whether name can be served back: one visible
// path segment.
func validStoredName(name string) bool {
	return len(name) <= 255 && fileNameRe.MatchString(name)
}
