package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/ideasurge/testutil"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", testutil.CreateTempDir(t))
	t.Setenv("EXA_API_KEY", "exa-from-env")

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != filepath.Join(cfg.StoreDir, "ideas.db") {
		t.Errorf("Database.Path = %q, want ideas.db under %q", cfg.Database.Path, cfg.StoreDir)
	}
	if cfg.Persistence.Timeout != 10*time.Second || cfg.Persistence.MaxInFlight != 4 {
		t.Errorf("Persistence = %+v", cfg.Persistence)
	}
	if cfg.Lifecycle.RecycleOnPick {
		t.Error("RecycleOnPick should default to false")
	}
	if cfg.LLM.ExaAPIKey != "exa-from-env" {
		t.Errorf("LLM.ExaAPIKey = %q, want the EXA_API_KEY fallback", cfg.LLM.ExaAPIKey)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.MaxConns != 25 || cfg.Database.MinConns != 5 {
		t.Errorf("Database conns = %d/%d, want 5/25", cfg.Database.MinConns, cfg.Database.MaxConns)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "ideasurge.yaml", []byte(`
store_dir: `+dir+`
llm:
  endpoint: http://backend:3000
  model_id: from-file
database:
  path: `+filepath.Join(dir, "custom.db")+`
lifecycle:
  recycle_on_pick: true
persistence:
  timeout: 3s
`))
	t.Setenv("IDEASURGE_LLM__MODEL_ID", "from-env")
	t.Setenv("IDEASURGE_LLM__API_KEY", "sk-env")
	t.Setenv("IDEASURGE_PERSISTENCE__MAX_IN_FLIGHT", "7")

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"store dir from file", cfg.StoreDir, dir},
		{"endpoint from file", cfg.LLM.Endpoint, "http://backend:3000"},
		{"env overrides file", cfg.LLM.ModelID, "from-env"},
		{"api key from env", cfg.LLM.APIKey, "sk-env"},
		{"database path from file", cfg.Database.Path, filepath.Join(dir, "custom.db")},
		{"recycle on pick", cfg.Lifecycle.RecycleOnPick, true},
		{"duration parsed", cfg.Persistence.Timeout, 3 * time.Second},
		{"int from env", cfg.Persistence.MaxInFlight, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if settings := cfg.LLM.Settings(); settings.ModelID != "from-env" || settings.APIKey != "sk-env" {
		t.Errorf("Settings() = %+v", settings)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	t.Setenv("IDEASURGE_STORE_DIR", filepath.Join(dir, "from-env"))

	cfg, err := LoadConfig("", map[string]string{"store_dir": dir, "server.addr": ""})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StoreDir != dir {
		t.Errorf("StoreDir = %q, want the override %q", cfg.StoreDir, dir)
	}
	if cfg.Database.Path != filepath.Join(dir, "ideas.db") {
		t.Errorf("Database.Path = %q, want it derived from the override", cfg.Database.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("empty override replaced Server.Addr: %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_MinConnsFollowsMaxConns(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", testutil.CreateTempDir(t))
	t.Setenv("IDEASURGE_DATABASE__MAX_CONNS", "2")

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.MaxConns != 2 || cfg.Database.MinConns != 2 {
		t.Errorf("Database conns = %d/%d, want min clamped to max 2", cfg.Database.MinConns, cfg.Database.MaxConns)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(testutil.CreateTempDir(t), "absent.yaml"), nil); err == nil {
		t.Error("LoadConfig() with a missing file should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:    DatabaseConfig{Driver: "sqlite", Path: "/tmp/ideas.db", MaxConns: 4, MinConns: 1},
			Persistence: PersistenceConfig{Timeout: time.Second, MaxInFlight: 2},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid sqlite", mutate: func(*Config) {}},
		{name: "valid postgres", mutate: func(c *Config) { c.Database = DatabaseConfig{Driver: "postgres", URL: "postgres://x", MaxConns: 2} }},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "database.url"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "negative timeout", mutate: func(c *Config) { c.Persistence.Timeout = -time.Second }, wantErr: "timeout"},
		{name: "zero in flight", mutate: func(c *Config) { c.Persistence.MaxInFlight = 0 }, wantErr: "max_in_flight"},
		{name: "min above max", mutate: func(c *Config) { c.Database.MinConns = 9 }, wantErr: "min_conns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"IDEASURGE_STORE_DIR", "store_dir"},
		{"IDEASURGE_DATABASE__MAX_CONNS", "database.max_conns"},
		{"IDEASURGE_LLM__API_KEY", "llm.api_key"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
