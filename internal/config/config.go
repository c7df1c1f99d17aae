// =============================================================================
// Sales Batch Processor - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved in
// this order (later wins):
//   1. Built-in defaults (SetDefaults)
//   2. The YAML config file (config.yaml unless --config says otherwise)
//   3. A .env file in the working directory
//   4. Environment variables
//
// ENVIRONMENT:
//   Every key can be overridden with a PROCESSOR_ prefixed variable, dots
//   replaced by underscores (PROCESSOR_OUTPUT_DIR, PROCESSOR_KAFKA_TOPIC).
//   The task settings also answer to the plain names used by the batch
//   compute environment (INPUT_BLOB_NAME, JOB_ID, TASK_ID, ...).
//
// =============================================================================

package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for batch files.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir is the directory where result documents are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// InputArchiveDir is where input files are moved after processing.
	// Default: "./input_archive"
	InputArchiveDir string `mapstructure:"input_archive_dir" yaml:"input_archive_dir"`

	// ArchiveInput moves each input file to InputArchiveDir once its
	// result has been written.
	// Default: false
	ArchiveInput bool `mapstructure:"archive_input" yaml:"archive_input"`

	// ArchiveByDate files archived inputs under YYYY/MM/DD sub-directories.
	// Default: false
	ArchiveByDate bool `mapstructure:"archive_by_date" yaml:"archive_by_date"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is the encoding of result documents: "json" or "yaml".
	// Default: "json"
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// OutputNameFormat defines result file names, without extension.
	// Placeholders:
	//   {stem}      - Input file name without extension
	//   {timestamp} - Current UTC time (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "processed_{stem}_{timestamp}"
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// XLSXReport also renders each result as an .xlsx workbook.
	// Default: false
	XLSXReport bool `mapstructure:"xlsx_report" yaml:"xlsx_report"`

	// WriteErrorLog writes a plain text validation error log next to each
	// result that rejected transactions.
	// Default: false
	WriteErrorLog bool `mapstructure:"write_error_log" yaml:"write_error_log"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ContinueOnError keeps processing other files when one fails.
	// Default: true
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`

	// WatchDebounce is how long a file must be quiet before watch mode
	// processes it.
	// Default: 500ms
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogJSON emits JSON log lines instead of console output.
	// Default: false
	LogJSON bool `mapstructure:"log_json" yaml:"log_json"`

	// Task configures the batch worker mode.
	Task TaskConfig `mapstructure:"task" yaml:"task"`

	// Kafka configures completion notifications.
	Kafka KafkaConfig `mapstructure:"kafka" yaml:"kafka"`
}

// TaskConfig holds the settings of one batch task.
type TaskConfig struct {
	// StorageRoot is the local directory backing the object store. Each
	// container is a sub-directory.
	StorageRoot string `mapstructure:"storage_root" yaml:"storage_root"`

	// StorageAccountName names the storage account. When StorageRoot is not
	// set, the account is expected mounted under MountBase.
	StorageAccountName string `mapstructure:"storage_account_name" yaml:"storage_account_name"`

	InputContainer  string `mapstructure:"input_container" yaml:"input_container"`
	OutputContainer string `mapstructure:"output_container" yaml:"output_container"`
	LogsContainer   string `mapstructure:"logs_container" yaml:"logs_container"`
	InputBlobName   string `mapstructure:"input_blob_name" yaml:"input_blob_name"`
	JobID           string `mapstructure:"job_id" yaml:"job_id"`
	TaskID          string `mapstructure:"task_id" yaml:"task_id"`

	// WorkDir holds the downloaded input and the local copy of the output.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
}

// KafkaConfig configures the notification publisher. Notifications are off
// when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultConfigFile is read when no --config flag is given.
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes the generic environment overrides.
	EnvPrefix = "PROCESSOR"

	// MountBase is where storage accounts are mounted when no root is set.
	MountBase = "/mnt/blob"
)

// SetDefaults registers default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("input_archive_dir", "./input_archive")
	v.SetDefault("archive_input", false)
	v.SetDefault("archive_by_date", false)
	v.SetDefault("output_format", "json")
	v.SetDefault("output_name_format", "processed_{stem}_{timestamp}")
	v.SetDefault("xlsx_report", false)
	v.SetDefault("write_error_log", false)
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("watch_debounce", 500*time.Millisecond)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("task.storage_root", "")
	v.SetDefault("task.storage_account_name", "")
	v.SetDefault("task.input_container", "batch-input")
	v.SetDefault("task.output_container", "batch-output")
	v.SetDefault("task.logs_container", "batch-logs")
	v.SetDefault("task.input_blob_name", "")
	v.SetDefault("task.job_id", "unknown-job")
	v.SetDefault("task.task_id", "unknown-task")
	v.SetDefault("task.work_dir", "/tmp/batch_work")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "batch-results")
}

// BindTaskEnvVars binds the task settings to the variable names set by the
// batch compute environment. PROCESSOR_ prefixed names keep working.
func BindTaskEnvVars(v *viper.Viper) {
	bindings := map[string]string{
		"task.storage_account_name": "STORAGE_ACCOUNT_NAME",
		"task.storage_root":         "STORAGE_ROOT",
		"task.input_container":      "INPUT_CONTAINER",
		"task.output_container":     "OUTPUT_CONTAINER",
		"task.logs_container":       "LOGS_CONTAINER",
		"task.input_blob_name":      "INPUT_BLOB_NAME",
		"task.job_id":               "JOB_ID",
		"task.task_id":              "TASK_ID",
		"task.work_dir":             "WORK_DIR",
		"kafka.brokers":             "KAFKA_BROKERS",
		"kafka.topic":               "KAFKA_TOPIC",
	}
	for key, env := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
}

// =============================================================================
// LOADING
// =============================================================================

// NewViper builds a viper instance with defaults and environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	BindTaskEnvVars(v)
	return v
}

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML config file. A missing file is not an error; an
//     empty path means DefaultConfigFile.
//
// RETURNS:
//   - The resolved configuration.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(configPath string) (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := NewViper()

	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to stat config file %s", configPath)
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and checks the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	normalize(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize cleans up values that defaults cannot express.
func normalize(cfg *Config) {
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	brokers := make([]string, 0, len(cfg.Kafka.Brokers))
	for _, b := range cfg.Kafka.Brokers {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				brokers = append(brokers, part)
			}
		}
	}
	cfg.Kafka.Brokers = brokers
}

func (cfg *Config) validate() error {
	switch cfg.OutputFormat {
	case "json", "yaml":
	default:
		return errors.NewInvalidConfig("output_format must be json or yaml, got %q", cfg.OutputFormat)
	}
	if cfg.WatchDebounce < 0 {
		return errors.NewInvalidConfig("watch_debounce must not be negative")
	}
	return nil
}

// =============================================================================
// TASK MODE
// =============================================================================

// Validate checks the settings the task runner cannot work without.
func (t TaskConfig) Validate() error {
	if t.InputBlobName == "" {
		return errors.WithHint(
			errors.NewInvalidConfig("input blob name is required"),
			"set INPUT_BLOB_NAME or task.input_blob_name",
		)
	}
	if t.StorageRoot == "" && t.StorageAccountName == "" {
		return errors.WithHint(
			errors.NewInvalidConfig("a storage root or storage account name is required"),
			"set STORAGE_ROOT or STORAGE_ACCOUNT_NAME",
		)
	}
	if t.InputContainer == "" || t.OutputContainer == "" {
		return errors.NewInvalidConfig("input and output containers are required")
	}
	return nil
}

// ResolvedStorageRoot returns the directory backing the object store.
func (t TaskConfig) ResolvedStorageRoot() string {
	if t.StorageRoot != "" {
		return t.StorageRoot
	}
	return filepath.Join(MountBase, t.StorageAccountName)
}

// =============================================================================
// OUTPUT
// =============================================================================

// Write encodes the configuration as YAML.
func (cfg *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return enc.Close()
}

// EnsureDirs creates the local directories used by file processing.
func (cfg *Config) EnsureDirs() error {
	dirs := []string{cfg.InputDir, cfg.OutputDir}
	if cfg.ArchiveInput {
		dirs = append(dirs, cfg.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}
