package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "ENV", "LOG_LEVEL",
		"JWT_ACCESS_TOKEN_SECRET", "JWT_REFRESH_TOKEN_SECRET",
		"ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_DAYS",
		"ONE_TIME_TOKEN_TTL_MINUTES", "BCRYPT_COST",
	} {
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("Port = %v, want 8081", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %v, want development", cfg.Env)
	}
	if cfg.AccessTokenTTLMinutes != 15 {
		t.Errorf("AccessTokenTTLMinutes = %v, want 15", cfg.AccessTokenTTLMinutes)
	}
	if cfg.RefreshTokenTTLDays != 7 {
		t.Errorf("RefreshTokenTTLDays = %v, want 7", cfg.RefreshTokenTTLDays)
	}
	if cfg.OneTimeTokenTTLMinutes != 20 {
		t.Errorf("OneTimeTokenTTLMinutes = %v, want 20", cfg.OneTimeTokenTTLMinutes)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("ACCESS_TOKEN_TTL_MINUTES", "30")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ACCESS_TOKEN_TTL_MINUTES")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %v, want 9090", cfg.Port)
	}
	if cfg.AccessTokenTTLMinutes != 30 {
		t.Errorf("AccessTokenTTLMinutes = %v, want 30", cfg.AccessTokenTTLMinutes)
	}
}

func TestGetEnvInt_Invalid(t *testing.T) {
	os.Setenv("ACCESS_TOKEN_TTL_MINUTES", "not-a-number")
	os.Setenv("REFRESH_TOKEN_TTL_DAYS", "-5")
	defer func() {
		os.Unsetenv("ACCESS_TOKEN_TTL_MINUTES")
		os.Unsetenv("REFRESH_TOKEN_TTL_DAYS")
	}()

	if got := GetEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15); got != 15 {
		t.Errorf("GetEnvInt() = %v, want 15 (default)", got)
	}
	if got := GetEnvInt("REFRESH_TOKEN_TTL_DAYS", 7); got != 7 {
		t.Errorf("GetEnvInt() = %v, want 7 (default)", got)
	}
}

func TestValidate_ProductionSecrets(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "default secret in production",
			cfg: Config{
				Port:            "8081",
				DatabaseURL:     "postgres://localhost/test",
				Env:             "production",
				JWTAccessSecret: "dev-access-secret-change-me",
			},
			wantErr: true,
		},
		{
			name: "real secrets in production",
			cfg: Config{
				Port:             "8081",
				DatabaseURL:      "postgres://localhost/test",
				Env:              "production",
				JWTAccessSecret:  "real-access-secret",
				JWTRefreshSecret: "real-refresh-secret",
			},
			wantErr: false,
		},
		{
			name: "default secrets in development",
			cfg: Config{
				Port:             "8081",
				DatabaseURL:      "postgres://localhost/test",
				Env:              "development",
				JWTAccessSecret:  "dev-access-secret-change-me",
				JWTRefreshSecret: "dev-refresh-secret-change-me",
			},
			wantErr: false,
		},
		{
			name: "empty port",
			cfg: Config{
				Port:        "",
				DatabaseURL: "postgres://localhost/test",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
