package geo

import (
	"math"
	"testing"
)

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 12.9716, Lng: 77.5946}
	if d := Distance(p, p); d != 0 {
		t.Errorf("Distance(p, p) = %f, want 0", d)
	}
}

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64 // meters
		tol  float64
	}{
		{
			// One degree of latitude at the equator is ~111.19 km.
			name: "one degree latitude",
			a:    Point{Lat: 0, Lng: 0},
			b:    Point{Lat: 1, Lng: 0},
			want: 111195,
			tol:  100,
		},
		{
			// Two corners of a campus quad, ~430 m apart.
			name: "campus scale",
			a:    Point{Lat: 40.7128, Lng: -74.0060},
			b:    Point{Lat: 40.7160, Lng: -74.0030},
			want: 435,
			tol:  20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Distance = %f, want %f (±%f)", got, tt.want, tt.tol)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 51.5007, Lng: -0.1246}
	b := Point{Lat: 48.8566, Lng: 2.3522}
	if d1, d2 := Distance(a, b), Distance(b, a); d1 != d2 {
		t.Errorf("Distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadius(t *testing.T) {
	center := Point{Lat: 0, Lng: 0}
	near := Point{Lat: 0.004, Lng: 0}  // ~445 m
	far := Point{Lat: 0.0135, Lng: 0}  // ~1501 m
	if !WithinRadius(center, near, 1000) {
		t.Error("near point should be within 1000m")
	}
	if WithinRadius(center, far, 1000) {
		t.Error("far point should not be within 1000m")
	}
}

func TestPoint_Valid(t *testing.T) {
	if !(Point{Lat: 89.9, Lng: 179.9}).Valid() {
		t.Error("valid point rejected")
	}
	if (Point{Lat: 91, Lng: 0}).Valid() {
		t.Error("latitude out of range accepted")
	}
	if (Point{Lat: 0, Lng: -181}).Valid() {
		t.Error("longitude out of range accepted")
	}
}
