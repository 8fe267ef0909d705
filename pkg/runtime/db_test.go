package runtime

import "testing"

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{
			name: "full config",
			config: &Config{
				Host:     "db.internal",
				Port:     5433,
				Database: "forkline",
				User:     "analyst",
				Password: "secret",
				SSLMode:  "disable",
			},
			want: "host=db.internal port=5433 user=analyst password=secret dbname=forkline sslmode=disable",
		},
		{
			name: "defaults fill port and sslmode",
			config: &Config{
				Host:     "localhost",
				Database: "postgres",
				User:     "postgres",
			},
			want: "host=localhost port=5432 user=postgres password= dbname=postgres sslmode=prefer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildConnectionString(tt.config); got != tt.want {
				t.Errorf("buildConnectionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" || cfg.Port != 5432 {
		t.Errorf("default endpoint = %s:%d, want localhost:5432", cfg.Host, cfg.Port)
	}
	if cfg.SSLMode != "prefer" {
		t.Errorf("default sslmode = %q, want prefer", cfg.SSLMode)
	}
	if cfg.MaxConns <= 0 || cfg.MinConns <= 0 {
		t.Errorf("default pool bounds %d/%d must be positive", cfg.MinConns, cfg.MaxConns)
	}
}
