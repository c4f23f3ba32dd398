// Package config loads the tool's configuration from a YAML file with a
// .env/environment overlay. Precedence, lowest to highest: built-in
// defaults, skuforge.yaml, environment variables. Command-line flags
// override all of it at the CLI layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked for in the working directory
// when --config is not given.
const DefaultFile = "skuforge.yaml"

// apiKeyEnv is where the vision model API key is read from. Secrets stay
// out of the YAML file.
const apiKeyEnv = "GEMINI_API_KEY"

// Config is the full tool configuration.
type Config struct {
	// LedgerPath is the local CSV inventory file.
	LedgerPath string `yaml:"ledger_path"`

	// AssetDir is the base directory per-SKU asset folders live under.
	AssetDir string `yaml:"asset_dir"`

	// AuditPath is the SQLite operation-history database.
	AuditPath string `yaml:"audit_path"`

	Sheet  SheetConfig  `yaml:"sheet"`
	Drive  DriveConfig  `yaml:"drive"`
	Vision VisionConfig `yaml:"vision"`
}

// SheetConfig configures the remote spreadsheet mirror.
type SheetConfig struct {
	// Spreadsheet is the remote spreadsheet name (create-if-absent).
	Spreadsheet string `yaml:"spreadsheet"`

	// Worksheet is the tab rows are mirrored into.
	Worksheet string `yaml:"worksheet"`

	// SKUColumn is the exact remote header used as the dedup key before
	// the fuzzy contains-"sku" fallback is consulted.
	SKUColumn string `yaml:"sku_column"`
}

// DriveConfig configures the remote asset-folder mirror.
type DriveConfig struct {
	// RootFolder is the remote folder SKU folders are created under.
	RootFolder string `yaml:"root_folder"`

	// CredentialsFile is a service-account credentials JSON file used
	// for both Sheets and Drive.
	CredentialsFile string `yaml:"credentials_file"`
}

// VisionConfig configures the model collaborator.
type VisionConfig struct {
	// Model is the Gemini model name.
	Model string `yaml:"model"`

	// APIKey is resolved from the environment, never from YAML.
	APIKey string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LedgerPath: "sku_inventory.csv",
		AssetDir:   "skus",
		AuditPath:  "skuforge.db",
		Sheet: SheetConfig{
			Spreadsheet: "SKU_Inventory",
			Worksheet:   "Inventory",
			SKUColumn:   "SKU",
		},
		Drive: DriveConfig{
			RootFolder:      "SKU_Generator",
			CredentialsFile: "credentials.json",
		},
		Vision: VisionConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Load reads the configuration. A missing file at the default location
// is fine (defaults apply); an explicitly given path must exist. A .env
// file in the working directory is loaded first so its variables take
// part in the environment overlay.
func Load(path string) (Config, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.LedgerPath, "SKUFORGE_LEDGER")
	set(&c.AssetDir, "SKUFORGE_ASSET_DIR")
	set(&c.AuditPath, "SKUFORGE_AUDIT_DB")
	set(&c.Sheet.Spreadsheet, "SKUFORGE_SPREADSHEET")
	set(&c.Sheet.Worksheet, "SKUFORGE_WORKSHEET")
	set(&c.Sheet.SKUColumn, "SKUFORGE_SKU_COLUMN")
	set(&c.Drive.RootFolder, "SKUFORGE_DRIVE_FOLDER")
	set(&c.Drive.CredentialsFile, "SKUFORGE_CREDENTIALS")
	set(&c.Vision.Model, "SKUFORGE_VISION_MODEL")
	c.Vision.APIKey = os.Getenv(apiKeyEnv)
}

// EnsureAssetDir creates the asset base directory if needed and returns
// its absolute path.
func (c *Config) EnsureAssetDir() (string, error) {
	if err := os.MkdirAll(c.AssetDir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}
	abs, err := filepath.Abs(c.AssetDir)
	if err != nil {
		return "", err
	}
	return abs, nil
}
