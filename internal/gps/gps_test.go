package gps

import (
	"errors"
	"math"
	"testing"
)

func TestParseSexagesimal(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		precision int
		want      float64
	}{
		{"north", `37 deg 46' 29.64" N`, 4, 37.7749},
		{"west", `122 deg 25' 9.84" W`, 4, -122.4194},
		{"south", `33 deg 52' 4.8" S`, 4, -33.868},
		{"east", `151 deg 12' 25.2" E`, 4, 151.207},
		{"two decimals", `37 deg 46' 29.64" N`, 2, 37.77},
		{"zero seconds", `10 deg 30' 0" N`, 4, 10.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSexagesimal(tc.input, tc.precision)
			if err != nil {
				t.Fatalf("ParseSexagesimal(%q): %v", tc.input, err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ParseSexagesimal(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSexagesimalMalformed(t *testing.T) {
	inputs := []string{
		"",
		"not a coordinate",
		`37 deg 46' 29.64"`,     // missing hemisphere
		`37 46' 29.64" N`,       // missing deg keyword
		`deg 46' 29.64" N`,      // missing degrees
		`37 deg 46 29.64" N`,    // missing minute mark
		`37 deg 46' 29.64" X`,   // invalid hemisphere
		`-37 deg 46' 29.64" N`,  // signed degrees not in grammar
	}
	for _, input := range inputs {
		_, err := ParseSexagesimal(input, 4)
		if err == nil {
			t.Errorf("ParseSexagesimal(%q) succeeded, want FormatError", input)
			continue
		}
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("ParseSexagesimal(%q) error type = %T, want *FormatError", input, err)
		}
	}
}

func TestParseSexagesimalRoundTrip(t *testing.T) {
	// decode(encode(v)) == v within rounding precision
	values := []float64{0, 12.3456, 89.9999, 0.0001, 45.5}
	for _, want := range values {
		deg := math.Floor(want)
		minFloat := (want - deg) * 60
		min := math.Floor(minFloat)
		sec := (minFloat - min) * 60
		encoded := formatSexagesimal(deg, min, sec, "N")
		got, err := ParseSexagesimal(encoded, 4)
		if err != nil {
			t.Fatalf("ParseSexagesimal(%q): %v", encoded, err)
		}
		if math.Abs(got-Round(want, 4)) > 1e-4 {
			t.Errorf("round trip of %v via %q = %v", want, encoded, got)
		}
	}
}

func formatSexagesimal(deg, min, sec float64, hemisphere string) string {
	return formatFloat(deg) + " deg " + formatFloat(min) + "' " + formatSeconds(sec) + `" ` + hemisphere
}

func formatFloat(v float64) string {
	return formatTrimmed(math.Trunc(v))
}

func formatSeconds(v float64) string {
	return formatTrimmed(Round(v, 6))
}

func TestParseCoordinateValidatesEnvelope(t *testing.T) {
	coord, err := ParseCoordinate(`37 deg 46' 29.64" N`, `122 deg 25' 9.84" W`, 4)
	if err != nil {
		t.Fatalf("ParseCoordinate: %v", err)
	}
	if coord.Lat != 37.7749 || coord.Lon != -122.4194 {
		t.Errorf("coordinate = %+v", coord)
	}

	if _, err := ParseCoordinate(`191 deg 0' 0" N`, `10 deg 0' 0" E`, 4); err == nil {
		t.Error("expected envelope violation for latitude > 90")
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey(Coordinate{Lat: 37.7749, Lon: -122.4194})
	if key != "37.7749,-122.4194" {
		t.Errorf("CacheKey = %q, want 37.7749,-122.4194", key)
	}
}

func TestCacheKeyStableAcrossPrecision(t *testing.T) {
	// Coordinates that agree at 4 decimals must share a key even when parsed
	// with higher display precision.
	a := Coordinate{Lat: 37.77491, Lon: -122.41939}
	b := Coordinate{Lat: 37.77494, Lon: -122.41941}
	if CacheKey(a) != CacheKey(b) {
		t.Errorf("keys diverge: %q vs %q", CacheKey(a), CacheKey(b))
	}
}

func TestCacheKeyTrimsTrailingZeros(t *testing.T) {
	key := CacheKey(Coordinate{Lat: 37.5, Lon: -122})
	if key != "37.5,-122" {
		t.Errorf("CacheKey = %q, want 37.5,-122", key)
	}
}

func TestRound(t *testing.T) {
	if got := Round(37.77494999, 4); got != 37.7749 {
		t.Errorf("Round = %v", got)
	}
	if got := Round(-122.41945, 4); math.Abs(got-(-122.4194)) > 1e-9 && math.Abs(got-(-122.4195)) > 1e-9 {
		t.Errorf("Round(-122.41945, 4) = %v", got)
	}
}
