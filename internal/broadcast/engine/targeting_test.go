package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/directory"
	"campus-dispatch/internal/geo"
)

func newTestEngine(t *testing.T) (*Engine, *directory.InMemory) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	dir := directory.NewInMemory()
	return New(clk, dir, 100, 2000), dir
}

// pointAtMeters returns a point roughly d meters due north of origin.
func pointAtMeters(origin geo.Point, d float64) geo.Point {
	return geo.Point{Lat: origin.Lat + d/111_320.0, Lng: origin.Lng}
}

func TestResolveAudience_FiltersByDistance(t *testing.T) {
	e, dir := newTestEngine(t)
	origin := geo.Point{Lat: 0, Lng: 0}
	dir.Put("A", pointAtMeters(origin, 500))
	dir.Put("B", pointAtMeters(origin, 1500))

	got, err := e.ResolveAudience(context.Background(), origin, 1000)
	if err != nil {
		t.Fatalf("ResolveAudience: %v", err)
	}
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("audience = %v, want [A]", got)
	}
}

func TestResolveAudience_RadiusBounds(t *testing.T) {
	e, _ := newTestEngine(t)
	origin := geo.Point{Lat: 0, Lng: 0}
	for _, radius := range []float64{99, 2001, -5, 0} {
		if _, err := e.ResolveAudience(context.Background(), origin, radius); !errors.Is(err, ErrRadiusOutOfRange) {
			t.Errorf("radius %v err = %v, want ErrRadiusOutOfRange", radius, err)
		}
	}
	// Bounds are inclusive.
	for _, radius := range []float64{100, 2000} {
		if _, err := e.ResolveAudience(context.Background(), origin, radius); err != nil {
			t.Errorf("radius %v err = %v, want nil", radius, err)
		}
	}
}

func TestResolveAudience_InvalidCenter(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.ResolveAudience(context.Background(), geo.Point{Lat: 91}, 500); !errors.Is(err, ErrInvalidCenter) {
		t.Errorf("err = %v, want ErrInvalidCenter", err)
	}
}

func TestIssue_RecordsImmutableBroadcast(t *testing.T) {
	e, dir := newTestEngine(t)
	origin := geo.Point{Lat: 12.9716, Lng: 77.5946}
	dir.Put("A", pointAtMeters(origin, 200))
	dir.Put("B", pointAtMeters(origin, 300))

	b, err := e.Issue(context.Background(), Request{
		Message:  "shelter in place",
		Center:   origin,
		RadiusM:  500,
		IssuedBy: "op-1",
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if b.RecipientCount != 2 {
		t.Errorf("RecipientCount = %d, want 2", b.RecipientCount)
	}

	// The directory moving afterwards does not change the issued broadcast.
	dir.Put("C", pointAtMeters(origin, 100))
	got, err := e.Get(b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecipientCount != 2 || len(got.Recipients) != 2 {
		t.Errorf("issued broadcast mutated: %+v", got)
	}

	// Mutating the returned copy does not leak into the engine.
	got.Recipients[0] = "tampered"
	again, _ := e.Get(b.ID)
	if again.Recipients[0] == "tampered" {
		t.Error("Get returned a shared slice")
	}
}

func TestIssue_Validation(t *testing.T) {
	e, _ := newTestEngine(t)
	origin := geo.Point{Lat: 0, Lng: 0}
	if _, err := e.Issue(context.Background(), Request{Center: origin, RadiusM: 500}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message err = %v, want ErrEmptyMessage", err)
	}
	if _, err := e.Issue(context.Background(), Request{Message: "x", Center: origin, RadiusM: 50}); !errors.Is(err, ErrRadiusOutOfRange) {
		t.Errorf("small radius err = %v, want ErrRadiusOutOfRange", err)
	}
}
