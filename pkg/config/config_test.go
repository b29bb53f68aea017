package config

import (
	"os"
	"testing"
	"time"

	"github.com/specstash/specstash/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{name: "true string", key: "TEST_BOOL", defaultValue: false, envValue: "true", want: true},
		{name: "one string", key: "TEST_BOOL", defaultValue: false, envValue: "1", want: true},
		{name: "false string", key: "TEST_BOOL", defaultValue: true, envValue: "false", want: false},
		{name: "unset uses default", key: "TEST_BOOL_UNSET", defaultValue: true, envValue: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	t.Run("parses valid duration", func(t *testing.T) {
		os.Setenv("TEST_DURATION", "45s")
		defer os.Unsetenv("TEST_DURATION")

		got := getEnvDuration("TEST_DURATION", time.Minute)
		if got != 45*time.Second {
			t.Errorf("getEnvDuration() = %v, want 45s", got)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		os.Setenv("TEST_DURATION", "not-a-duration")
		defer os.Unsetenv("TEST_DURATION")

		got := getEnvDuration("TEST_DURATION", time.Minute)
		if got != time.Minute {
			t.Errorf("getEnvDuration() = %v, want 1m", got)
		}
	})
}

// TestParseLogLevel tests log level parsing
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  observability.LogLevel
	}{
		{"debug", observability.DebugLevel},
		{"info", observability.InfoLevel},
		{"warn", observability.WarnLevel},
		{"warning", observability.WarnLevel},
		{"error", observability.ErrorLevel},
		{"ERROR", observability.ErrorLevel},
		{"unknown", observability.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestLoadConfig_Defaults tests loading with no environment set
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %v, want %v", cfg.Backend, BackendMemory)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %v, want 8080", cfg.Server.Port)
	}
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Server.HealthPort = %v, want 9090", cfg.Server.HealthPort)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("LogLevel = %v, want InfoLevel", cfg.Observability.LogLevel)
	}
}

// TestConfig_Validate tests configuration validation rules
func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080", HealthPort: "9090"},
			Backend: BackendMemory,
		}
	}

	t.Run("valid memory backend", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing port")
		}
	})

	t.Run("port collision", func(t *testing.T) {
		cfg := valid()
		cfg.Server.HealthPort = cfg.Server.Port
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for colliding ports")
		}
	})

	t.Run("aws backend requires postgres URL", func(t *testing.T) {
		cfg := valid()
		cfg.Backend = BackendAWS
		cfg.Storage.S3Bucket = "specs"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing postgres URL")
		}
	})

	t.Run("aws backend requires S3 bucket", func(t *testing.T) {
		cfg := valid()
		cfg.Backend = BackendAWS
		cfg.Database.URL = "postgres://localhost/specstash"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing S3 bucket")
		}
	})

	t.Run("aws backend fully configured", func(t *testing.T) {
		cfg := valid()
		cfg.Backend = BackendAWS
		cfg.Database.URL = "postgres://localhost/specstash"
		cfg.Storage.S3Bucket = "specs"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := valid()
		cfg.Backend = "filesystem"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for unknown backend")
		}
	})

	t.Run("cache enabled requires redis URL", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Enabled = true
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for missing redis URL")
		}
	})
}
