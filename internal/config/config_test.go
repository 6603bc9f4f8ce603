package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.Staleness() != 60*time.Second {
		t.Errorf("Staleness = %v, want 60s", cfg.Staleness())
	}
	if cfg.Sweep() != 5*time.Second {
		t.Errorf("Sweep = %v, want 5s", cfg.Sweep())
	}
	if cfg.CheckIn() != 10*time.Minute {
		t.Errorf("CheckIn = %v, want 10m", cfg.CheckIn())
	}
	if cfg.BroadcastMinRadiusM != 100 || cfg.BroadcastMaxRadiusM != 2000 {
		t.Errorf("radius bounds = [%f, %f], want [100, 2000]", cfg.BroadcastMinRadiusM, cfg.BroadcastMaxRadiusM)
	}
	if cfg.EscalationLowWaterMark != 3 {
		t.Errorf("EscalationLowWaterMark = %d, want 3", cfg.EscalationLowWaterMark)
	}
	if cfg.EscalationThreshold != 5 {
		t.Errorf("EscalationThreshold = %d, want 5", cfg.EscalationThreshold)
	}
	if cfg.RejectionFloor != -5 {
		t.Errorf("RejectionFloor = %d, want -5", cfg.RejectionFloor)
	}
	if cfg.JWTIssuer != "campus-dispatch" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "campus-dispatch")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.EventsKafkaTopic != "dispatch-events" {
		t.Errorf("EventsKafkaTopic = %q, want %q", cfg.EventsKafkaTopic, "dispatch-events")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("STALENESS_THRESHOLD", "90s")
	os.Setenv("ESCALATION_THRESHOLD", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.Staleness() != 90*time.Second {
		t.Errorf("Staleness = %v, want 90s", cfg.Staleness())
	}
	if cfg.EscalationThreshold != 7 {
		t.Errorf("EscalationThreshold = %d, want 7", cfg.EscalationThreshold)
	}
}

func TestLoad_InvalidRadiusBounds(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BROADCAST_MIN_RADIUS_M", "500")
	os.Setenv("BROADCAST_MAX_RADIUS_M", "200")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject max radius below min")
	}
}

func TestLoad_InvalidEscalationThresholds(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("ESCALATION_LOW_WATER_MARK", "6")
	os.Setenv("ESCALATION_THRESHOLD", "5")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject threshold below low-water mark")
	}
}

func TestLoad_RejectionFloorMustBeNegative(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REJECTION_FLOOR", "1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject non-negative rejection floor")
	}
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject out-of-range bcrypt cost")
	}
}

func TestEventsKafkaBrokersList(t *testing.T) {
	cfg := &Config{EventsKafkaBrokers: "localhost:9092, broker2:9092,"}
	got := cfg.EventsKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("EventsKafkaBrokersList = %v, want 2 trimmed brokers", got)
	}
	var nilCfg *Config
	if nilCfg.EventsKafkaBrokersList() != nil {
		t.Error("nil config should return nil broker list")
	}
}
