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
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.HashWorkers != 0 {
		t.Errorf("HashWorkers = %d, want 0", cfg.HashWorkers)
	}
	if cfg.TOTPIssuer != "account-security-core" {
		t.Errorf("TOTPIssuer = %q, want default", cfg.TOTPIssuer)
	}
	if cfg.SessionTTL != "720h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "720h")
	}
	if cfg.ResetTokenTTL != "30m" {
		t.Errorf("ResetTokenTTL = %q, want %q", cfg.ResetTokenTTL, "30m")
	}
	if cfg.AuditKafkaTopic != "account-security-audit" {
		t.Errorf("AuditKafkaTopic = %q, want default", cfg.AuditKafkaTopic)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("TOTP_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.TOTPIssuer != "custom-issuer" {
		t.Errorf("TOTPIssuer = %q, want %q", cfg.TOTPIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // falls back to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_ResetSecretRequiredInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when APP_ENV=production and RESET_TOKEN_SECRET unset")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}

	os.Setenv("RESET_TOKEN_SECRET", "test-secret")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load with secret: %v", err)
	}
	if cfg.ResetTokenSecret != "test-secret" {
		t.Errorf("ResetTokenSecret = %q, want %q", cfg.ResetTokenSecret, "test-secret")
	}
}

func TestSessionLifetime(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "48h", 48 * time.Hour},
		{"invalid", "invalid", 720 * time.Hour},
		{"zero", "0", 720 * time.Hour},
		{"negative", "-5h", 720 * time.Hour},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("SESSION_TTL", tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.SessionLifetime(); got != tc.want {
				t.Errorf("SessionLifetime = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResetLifetime(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("RESET_TOKEN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ResetLifetime(); got != 15*time.Minute {
		t.Errorf("ResetLifetime = %v, want %v", got, 15*time.Minute)
	}

	os.Setenv("RESET_TOKEN_TTL", "bogus")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ResetLifetime(); got != 30*time.Minute {
		t.Errorf("ResetLifetime = %v, want %v (default)", got, 30*time.Minute)
	}
}

func TestAuditKafkaBrokersList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("KAFKA_BROKERS", "localhost:9092, broker2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	brokers := cfg.AuditKafkaBrokersList()
	if len(brokers) != 2 {
		t.Fatalf("brokers = %v, want 2 entries", brokers)
	}
	if brokers[0] != "localhost:9092" || brokers[1] != "broker2:9092" {
		t.Errorf("brokers = %v, want trimmed entries", brokers)
	}

	os.Setenv("KAFKA_BROKERS", "")
	cfg, _ = Load()
	if got := cfg.AuditKafkaBrokersList(); got != nil {
		t.Errorf("empty KAFKA_BROKERS should yield nil, got %v", got)
	}
}
