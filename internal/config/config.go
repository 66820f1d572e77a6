package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	// System overrides the assistant persona sent with every prompt.
	System      string   `toml:"system"`
	Temperature *float32 `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	// Map names the stored mind map, so one database can hold several.
	Map string `toml:"map"`
}

// Duration lets TOML carry values such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type MissionConfig struct {
	// Planner selects the step planner: "static" or "llm".
	Planner    string   `toml:"planner"`
	PhaseDelay Duration `toml:"phase_delay"`
	StepDelay  Duration `toml:"step_delay"`
	ToolDelay  Duration `toml:"tool_delay"`
	PlanPrompt string   `toml:"plan_prompt"`
}

type ToolsConfig struct {
	// FileRoot confines read_file to a directory. Empty disables read_file.
	FileRoot     string   `toml:"file_root"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	MaxFetchSize int64    `toml:"max_fetch_size"`
	// LiveFetch lets fetch_url reach the network instead of the simulator.
	LiveFetch bool `toml:"live_fetch"`
}

type BreakerConfig struct {
	MaxRequests      uint32   `toml:"max_requests"`
	Interval         Duration `toml:"interval"`
	Timeout          Duration `toml:"timeout"`
	FailureThreshold float64  `toml:"failure_threshold"`
	MinRequests      uint32   `toml:"min_requests"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	SeedDemo  bool   `toml:"seed_demo"`
	GinMode   string `toml:"gin_mode"`
	Namespace string `toml:"metrics_namespace"`
}

type LogConfig struct {
	Environment string `toml:"environment"`
	Level       string `toml:"level"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Mission  MissionConfig  `toml:"mission"`
	Tools    ToolsConfig    `toml:"tools"`
	Breaker  BreakerConfig  `toml:"breaker"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// Default returns a configuration that runs without any external service.
func Default() *Config {
	return &Config{
		Mission: MissionConfig{
			Planner:    "static",
			PhaseDelay: Duration{500 * time.Millisecond},
			StepDelay:  Duration{1500 * time.Millisecond},
		},
		Tools: ToolsConfig{
			FetchTimeout: Duration{10 * time.Second},
			MaxFetchSize: 1 << 20,
		},
		Breaker: BreakerConfig{
			MaxRequests:      5,
			Interval:         Duration{30 * time.Second},
			Timeout:          Duration{60 * time.Second},
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		Server: ServerConfig{
			Port:      "8080",
			SeedDemo:  true,
			GinMode:   "release",
			Namespace: "deren",
		},
		Log: LogConfig{
			Environment: "development",
			Level:       "info",
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file settings with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			t := float32(f)
			c.LLM.Temperature = &t
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.MaxTokens = n
		}
	}
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Memgraph.Map, "MEMGRAPH_MAP")
	setString(&c.Log.Environment, "ENVIRONMENT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Tools.FileRoot, "DEREN_FILE_ROOT")
	if v := os.Getenv("DEREN_SEED_DEMO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.SeedDemo = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
