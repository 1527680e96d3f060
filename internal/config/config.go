package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/coa/internal/model"
)

// FileName is the project configuration file at the project root.
const FileName = "coa.yaml"

// subunitPlaceholder is replaced by a lower-cased subunit id in table patterns.
const subunitPlaceholder = "{id}"

// Config represents the top-level coa.yaml configuration.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Tables    TablesConfig    `yaml:"tables"`
	Transform TransformConfig `yaml:"transform"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Git       GitConfig       `yaml:"git"`
}

// ProjectConfig identifies the project.
type ProjectConfig struct {
	Name string `yaml:"name"`
}

// TablesConfig names the stored tables. SubunitCOA and Mapping are patterns
// in which {id} stands for the business subunit.
type TablesConfig struct {
	Input           string `yaml:"input"`
	BusinessSubunit string `yaml:"business_subunits"`
	Enriched        string `yaml:"enriched"`
	SubunitCOA      string `yaml:"subunit_coa"`
	Mapping         string `yaml:"mapping"`
	Missing         string `yaml:"missing"`
}

// TransformConfig controls the hierarchy build.
type TransformConfig struct {
	BusinessSubunit string   `yaml:"business_subunit"`
	MaxDepth        int      `yaml:"max_depth"`
	RootMarkers     []string `yaml:"root_markers"`
}

// StoreConfig selects the table store.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "dir" or "sqlite"
	Path    string `yaml:"path"`    // relative to the project root
}

// CacheConfig controls the business subunit cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a coa.yaml file from disk. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadProject reads <root>/coa.yaml, then applies <root>/.env and the
// process environment on top.
func LoadProject(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}

	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(projectName string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name: projectName,
		},
		Tables: TablesConfig{
			Input:           "coa_input",
			BusinessSubunit: "business_subunits",
			Enriched:        "dc_coa",
			SubunitCOA:      "dc_{id}_coa",
			Mapping:         "dc_{id}_2finin_coa",
			Missing:         "dc_coa_missing",
		},
		Transform: TransformConfig{
			BusinessSubunit: "KBC",
			MaxDepth:        model.MaxLevels,
			RootMarkers:     append([]string(nil), model.RootMarkers...),
		},
		Store: StoreConfig{
			Backend: "dir",
			Path:    ".",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "COA Pipeline",
			AuthorEmail: "coa@cleared.dev",
		},
	}
}

// ApplyEnv overrides fields from COA_* environment variables.
func (c *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		"COA_LOG_LEVEL":        &c.Logging.Level,
		"COA_LOG_FORMAT":       &c.Logging.Format,
		"COA_STORE_BACKEND":    &c.Store.Backend,
		"COA_STORE_PATH":       &c.Store.Path,
		"COA_BUSINESS_SUBUNIT": &c.Transform.BusinessSubunit,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate reports the first setting the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Transform.MaxDepth < 1 || c.Transform.MaxDepth > model.MaxLevels {
		return fmt.Errorf("transform.max_depth must be between 1 and %d, got %d", model.MaxLevels, c.Transform.MaxDepth)
	}
	if len(c.Transform.RootMarkers) == 0 {
		return errors.New("transform.root_markers must name at least one marker")
	}
	switch strings.ToLower(c.Store.Backend) {
	case "dir", "sqlite":
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	required := []struct{ name, table string }{
		{"input", c.Tables.Input},
		{"business_subunits", c.Tables.BusinessSubunit},
		{"enriched", c.Tables.Enriched},
		{"missing", c.Tables.Missing},
	}
	for _, r := range required {
		if r.table == "" {
			return fmt.Errorf("tables.%s is required", r.name)
		}
	}
	for name, pattern := range map[string]string{"subunit_coa": c.Tables.SubunitCOA, "mapping": c.Tables.Mapping} {
		if !strings.Contains(pattern, subunitPlaceholder) {
			return fmt.Errorf("tables.%s must contain %s", name, subunitPlaceholder)
		}
	}
	return nil
}

// SubunitCOATable returns the table id of the subunit COA for subunitID.
func (c *Config) SubunitCOATable(subunitID string) string {
	return expand(c.Tables.SubunitCOA, subunitID)
}

// MappingTable returns the table id of the central mapping for subunitID.
func (c *Config) MappingTable(subunitID string) string {
	return expand(c.Tables.Mapping, subunitID)
}

// StorePath resolves the store path against the project root.
func (c *Config) StorePath(root string) string {
	p := c.Store.Path
	if strings.EqualFold(c.Store.Backend, "sqlite") && (p == "" || p == ".") {
		p = "coa.db"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func expand(pattern, subunitID string) string {
	return strings.ReplaceAll(pattern, subunitPlaceholder, strings.ToLower(subunitID))
}
