package gps

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// cacheKeyPrecision is fixed independently of the display precision so that
// cache entries remain stable across runs with different -p settings.
const cacheKeyPrecision = 4

// sexagesimalPattern matches exiftool-style GPS strings: `37 deg 46' 29.64" N`.
var sexagesimalPattern = regexp.MustCompile(`^(\d+)\s+deg\s+(\d+)'\s+([\d.]+)"\s+([NSEW])`)

// FormatError reports a GPS string that does not match the expected grammar.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid GPS format: %s", e.Input)
}

// Coordinate is a decimal-degree position.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate lies inside the WGS84 envelope.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParseSexagesimal converts a `D deg M' S" H` string to signed decimal degrees
// rounded to the requested precision. Hemisphere S or W negates the magnitude.
// Returns *FormatError when the string does not match the grammar.
func ParseSexagesimal(value string, precision int) (float64, error) {
	match := sexagesimalPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, &FormatError{Input: value}
	}

	degrees, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, &FormatError{Input: value}
	}
	minutes, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, &FormatError{Input: value}
	}
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, &FormatError{Input: value}
	}

	decimal := degrees + minutes/60 + seconds/3600
	if match[4] == "S" || match[4] == "W" {
		decimal = -decimal
	}
	return Round(decimal, precision), nil
}

// ParseCoordinate decodes a latitude/longitude string pair at the given
// precision and validates the result against the WGS84 envelope.
func ParseCoordinate(latValue, lonValue string, precision int) (Coordinate, error) {
	lat, err := ParseSexagesimal(latValue, precision)
	if err != nil {
		return Coordinate{}, err
	}
	lon, err := ParseSexagesimal(lonValue, precision)
	if err != nil {
		return Coordinate{}, err
	}
	coord := Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return Coordinate{}, &FormatError{Input: fmt.Sprintf("%s / %s", latValue, lonValue)}
	}
	return coord, nil
}

// Round rounds to the given number of decimal places.
func Round(value float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	factor := math.Pow(10, float64(precision))
	return math.Round(value*factor) / factor
}

// CacheKey derives the durable lookup key for a coordinate. The key always
// rounds to 4 decimal places regardless of the precision used for grouping,
// so two coordinates that agree at 4 decimals share one cache entry.
func CacheKey(c Coordinate) string {
	return formatTrimmed(Round(c.Lat, cacheKeyPrecision)) + "," + formatTrimmed(Round(c.Lon, cacheKeyPrecision))
}

func formatTrimmed(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
