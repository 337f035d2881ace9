package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// SearchThreshold is the minimum fuzzy similarity for a search term to match a word.
	// Must be in (0, 1]; leaving it out keeps the default.
	SearchThreshold float64 `json:"search_threshold,omitempty"`

	// Locale is the BCP 47 tag used for word ordering (e.g. "de", "und").
	Locale string `json:"locale,omitempty"`

	// DefaultSort and DefaultOrder apply when a list request leaves them empty.
	DefaultSort  string `json:"default_sort,omitempty"`
	DefaultOrder string `json:"default_order,omitempty"`

	// ExerciseSize is the number of entries an exercise is generated from.
	ExerciseSize int `json:"exercise_size,omitempty"`

	// TypoTolerance accepts typed answers whose similarity to the expected answer
	// is at least this value. 0 requires an exact (normalized) match.
	TypoTolerance float64 `json:"typo_tolerance,omitempty"`

	// TargetLanguage and NativeLanguage are the human-readable language names used in prompts.
	TargetLanguage string `json:"target_language,omitempty"`
	NativeLanguage string `json:"native_language,omitempty"`

	LLM    LLMConfig    `json:"llm"`
	Backup BackupConfig `json:"backup"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.lingo/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "vocab", "exercise".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// LLMConfig configures the exercise-generation model endpoint.
// The API key is read from the OPENAI_API_KEY environment variable.
type LLMConfig struct {
	BaseURL        string  `json:"base_url,omitempty"`
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`

	// MaxRequests caps model calls per process. 0 means unlimited.
	MaxRequests int `json:"max_requests,omitempty"`
}

// BackupConfig configures the periodic JSONL backup run by `lingo serve`.
type BackupConfig struct {
	// IntervalHours between backups. 0 disables the job.
	IntervalHours int `json:"interval_hours,omitempty"`

	// Keep is how many backup files are retained.
	Keep int `json:"keep,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SearchThreshold: 0.4,
		Locale:          "und",
		DefaultSort:     "date_added",
		DefaultOrder:    "desc",
		ExerciseSize:    8,
		TargetLanguage:  "the target language",
		NativeLanguage:  "English",
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-4o-mini",
			Temperature:    0.7,
			TimeoutSeconds: 60,
		},
		Backup: BackupConfig{
			IntervalHours: 24,
			Keep:          7,
		},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.lingo.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.lingo) and repo (.lingo) directories.
// Repo config is found by walking upward from startDir to find the nearest .lingo/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// LoadEnv loads KEY=VALUE pairs from baseDir/.env and startDir/.env into the
// process environment. Variables already set are never overridden. Missing files are skipped.
func LoadEnv(baseDir, startDir string) error {
	var files []string
	for _, dir := range []string{startDir, baseDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Load(files...)
}

// FindRepoConfig walks upward from startDir to find the nearest .lingo/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".lingo", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := validateThreshold(data); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// validateThreshold rejects an explicit search_threshold outside (0, 1].
// A zero value would otherwise be indistinguishable from an unset key.
func validateThreshold(data []byte) error {
	var raw struct {
		SearchThreshold *float64 `json:"search_threshold"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t := raw.SearchThreshold; t != nil && (*t <= 0 || *t > 1) {
		return fmt.Errorf("search_threshold must be in (0, 1], got %v", *t)
	}
	return nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.SearchThreshold = pickFloat(overlay.SearchThreshold, base.SearchThreshold)
	result.TypoTolerance = pickFloat(overlay.TypoTolerance, base.TypoTolerance)
	result.Locale = pickString(overlay.Locale, base.Locale)
	result.DefaultSort = pickString(overlay.DefaultSort, base.DefaultSort)
	result.DefaultOrder = pickString(overlay.DefaultOrder, base.DefaultOrder)
	result.TargetLanguage = pickString(overlay.TargetLanguage, base.TargetLanguage)
	result.NativeLanguage = pickString(overlay.NativeLanguage, base.NativeLanguage)
	result.ExerciseSize = pickInt(overlay.ExerciseSize, base.ExerciseSize)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.LLM = LLMConfig{
		BaseURL:        pickString(overlay.LLM.BaseURL, base.LLM.BaseURL),
		Model:          pickString(overlay.LLM.Model, base.LLM.Model),
		Temperature:    pickFloat(overlay.LLM.Temperature, base.LLM.Temperature),
		TimeoutSeconds: pickInt(overlay.LLM.TimeoutSeconds, base.LLM.TimeoutSeconds),
		MaxRequests:    pickInt(overlay.LLM.MaxRequests, base.LLM.MaxRequests),
	}
	result.Backup = BackupConfig{
		IntervalHours: pickInt(overlay.Backup.IntervalHours, base.Backup.IntervalHours),
		Keep:          pickInt(overlay.Backup.Keep, base.Backup.Keep),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickFloat(overlay, base float64) float64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
