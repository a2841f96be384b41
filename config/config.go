package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	"sigs.k8s.io/yaml"
)

// Daemon modes.
const (
	ModeReport   = "report"
	ModeFeedback = "feedback"
	ModeAll      = "all"

	// one-shot CLI commands reuse the same validation paths
	ModeReportCMD = "report-cmd"
	ModeBackupCMD = "backup-cmd"
)

// Storage backends.
const (
	StorageNameLocalFS = "localfs"
	StorageNameS3      = "s3"
	StorageNameSFTP    = "sftp"
)

// Storage transforms.
const (
	RepoCompressorGzip     = "gzip"
	RepoCompressorZstd     = "zstd"
	RepoEncryptorAes256Gcm = "aes-256-gcm"
)

// Feedback stores.
const (
	FeedbackStoreMemory   = "memory"
	FeedbackStorePostgres = "postgres"
)

// Report types.
const (
	ReportTypeAuto   = "auto"
	ReportTypeDaily  = "daily"
	ReportTypeWeekly = "weekly"
)

// Backup retention strategies.
const (
	RetentionTypeTime  = "time"
	RetentionTypeCount = "count"
)

// Storage subpaths.
const (
	ReportsSubpath = "reports"
	BackupsSubpath = "backups"
)

const envPrefix = "SLACKREP_"

var (
	mu     sync.Mutex
	config *Config
)

type MainConfig struct {
	ListenPort int    `json:"listen_port" env:"SLACKREP_LISTEN_PORT"`
	Directory  string `json:"directory" env:"SLACKREP_DIRECTORY"`
	Timezone   string `json:"timezone" env:"SLACKREP_TIMEZONE"`

	TimezoneParsed *time.Location `json:"-" env:"-"`
}

type ReportConfig struct {
	Cron          string   `json:"cron" env:"SLACKREP_REPORT_CRON"`
	ChannelID     string   `json:"channel_id" env:"SLACKREP_REPORT_CHANNEL_ID"`
	ForceType     string   `json:"force_type" env:"SLACKREP_REPORT_FORCE_TYPE"`
	WeeklyWeekday int      `json:"weekly_weekday" env:"SLACKREP_REPORT_WEEKLY_WEEKDAY"`
	GuidePath     string   `json:"guide_path" env:"SLACKREP_REPORT_GUIDE_PATH"`
	ExtraHolidays []string `json:"extra_holidays" env:"SLACKREP_REPORT_EXTRA_HOLIDAYS"`
}

type SlackConfig struct {
	Token         string `json:"token" env:"SLACKREP_SLACK_TOKEN"`
	SigningSecret string `json:"signing_secret" env:"SLACKREP_SLACK_SIGNING_SECRET"`
	APIURL        string `json:"api_url" env:"SLACKREP_SLACK_API_URL"`
}

type AnthropicConfig struct {
	APIKey    string `json:"api_key" env:"SLACKREP_ANTHROPIC_API_KEY"`
	APIURL    string `json:"api_url" env:"SLACKREP_ANTHROPIC_API_URL"`
	Model     string `json:"model" env:"SLACKREP_ANTHROPIC_MODEL"`
	MaxTokens int    `json:"max_tokens" env:"SLACKREP_ANTHROPIC_MAX_TOKENS"`
}

type PostgresConfig struct {
	ConnString string `json:"conn_string" env:"SLACKREP_FEEDBACK_PG_CONN_STRING"`
}

type FeedbackStoreConfig struct {
	Name     string         `json:"name" env:"SLACKREP_FEEDBACK_STORE_NAME"`
	Postgres PostgresConfig `json:"postgres"`
}

type FeedbackConfig struct {
	Enable bool                `json:"enable" env:"SLACKREP_FEEDBACK_ENABLE"`
	URL    string              `json:"url" env:"SLACKREP_FEEDBACK_URL"`
	Token  string              `json:"token" env:"SLACKREP_FEEDBACK_TOKEN"`
	Store  FeedbackStoreConfig `json:"store"`
}

type BackupConfig struct {
	Enable     bool   `json:"enable" env:"SLACKREP_BACKUP_ENABLE"`
	Cron       string `json:"cron" env:"SLACKREP_BACKUP_CRON"`
	WindowDays int    `json:"window_days" env:"SLACKREP_BACKUP_WINDOW_DAYS"`
}

type RetentionConfig struct {
	Enable     bool   `json:"enable" env:"SLACKREP_RETENTION_ENABLE"`
	Cron       string `json:"cron" env:"SLACKREP_RETENTION_CRON"`
	Type       string `json:"type" env:"SLACKREP_RETENTION_TYPE"`
	KeepPeriod string `json:"keep_period" env:"SLACKREP_RETENTION_KEEP_PERIOD"`
	KeepCount  int    `json:"keep_count" env:"SLACKREP_RETENTION_KEEP_COUNT"`

	KeepPeriodParsed time.Duration `json:"-" env:"-"`
}

type S3Config struct {
	URL             string `json:"url" env:"SLACKREP_S3_URL"`
	AccessKeyID     string `json:"access_key_id" env:"SLACKREP_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"SLACKREP_S3_SECRET_ACCESS_KEY"`
	Bucket          string `json:"bucket" env:"SLACKREP_S3_BUCKET"`
	Region          string `json:"region" env:"SLACKREP_S3_REGION"`
	UsePathStyle    bool   `json:"use_path_style" env:"SLACKREP_S3_USE_PATH_STYLE"`
	DisableSSL      bool   `json:"disable_ssl" env:"SLACKREP_S3_DISABLE_SSL"`
}

type SFTPConfig struct {
	Host     string `json:"host" env:"SLACKREP_SFTP_HOST"`
	Port     int    `json:"port" env:"SLACKREP_SFTP_PORT"`
	User     string `json:"user" env:"SLACKREP_SFTP_USER"`
	Pass     string `json:"pass" env:"SLACKREP_SFTP_PASS"`
	PKeyPath string `json:"pkey_path" env:"SLACKREP_SFTP_PKEY_PATH"`
	PKeyPass string `json:"pkey_pass" env:"SLACKREP_SFTP_PKEY_PASS"`
	BaseDir  string `json:"base_dir" env:"SLACKREP_SFTP_BASE_DIR"`
}

type CompressionConfig struct {
	Algo string `json:"algo" env:"SLACKREP_STORAGE_COMPRESSION_ALGO"`
}

type EncryptionConfig struct {
	Algo string `json:"algo" env:"SLACKREP_STORAGE_ENCRYPTION_ALGO"`
	Pass string `json:"pass" env:"SLACKREP_STORAGE_ENCRYPTION_PASS"`
}

type StorageConfig struct {
	Name        string            `json:"name" env:"SLACKREP_STORAGE_NAME"`
	S3          S3Config          `json:"s3"`
	SFTP        SFTPConfig        `json:"sftp"`
	Compression CompressionConfig `json:"compression"`
	Encryption  EncryptionConfig  `json:"encryption"`
}

type MetricsConfig struct {
	Enable bool `json:"enable" env:"SLACKREP_METRICS_ENABLE"`
}

type PprofConfig struct {
	Enable bool `json:"enable" env:"SLACKREP_PPROF_ENABLE"`
}

type DevConfig struct {
	Pprof PprofConfig `json:"pprof"`
}

type LogConfig struct {
	Level     string `json:"level" env:"SLACKREP_LOG_LEVEL"`
	Format    string `json:"format" env:"SLACKREP_LOG_FORMAT"`
	AddSource bool   `json:"add_source" env:"SLACKREP_LOG_ADD_SOURCE"`
}

type Config struct {
	Main      MainConfig      `json:"main"`
	Report    ReportConfig    `json:"report"`
	Slack     SlackConfig     `json:"slack"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Feedback  FeedbackConfig  `json:"feedback"`
	Backup    BackupConfig    `json:"backup"`
	Retention RetentionConfig `json:"retention"`
	Storage   StorageConfig   `json:"storage"`
	Metrics   MetricsConfig   `json:"metrics"`
	Log       LogConfig       `json:"log"`
	DevConfig DevConfig       `json:"dev"`
}

// Cfg returns the process-wide config; it must be loaded in main first.
func Cfg() *Config {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		log.Fatal("config was not loaded in main")
	}
	return config
}

// MustLoad reads the config from a JSON or YAML file, expands ${SLACKREP_*}
// placeholders, validates for the given mode and installs the singleton.
func MustLoad(path, mode string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("cannot read config file: %v", err)
	}
	expanded := expandEnvsWithPrefix(string(data), envPrefix)

	var c Config
	// sigs.k8s.io/yaml accepts both JSON and YAML input
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		log.Fatalf("cannot parse config file: %v", err)
	}
	return mustFinalize(&c, mode)
}

// MustEnvconfig builds the config entirely from environment variables.
func MustEnvconfig(mode string) *Config {
	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		log.Fatalf("cannot read config from env: %v", err)
	}
	return mustFinalize(&c, mode)
}

func mustFinalize(c *Config, mode string) *Config {
	applyDefaults(c)
	if err := validate(c, mode); err != nil {
		log.Fatalf("config validation failed:\n%v", err)
	}

	mu.Lock()
	config = c
	mu.Unlock()
	return c
}

func applyDefaults(c *Config) {
	if c.Main.ListenPort == 0 {
		c.Main.ListenPort = 7070
	}
	if c.Main.Timezone == "" {
		c.Main.Timezone = "Asia/Seoul"
	}
	if c.Report.Cron == "" {
		c.Report.Cron = "0 9 * * 1-5"
	}
	if c.Report.ForceType == "" {
		c.Report.ForceType = ReportTypeAuto
	}
	if c.Report.WeeklyWeekday == 0 {
		c.Report.WeeklyWeekday = int(time.Friday)
	}
	if c.Slack.APIURL == "" {
		c.Slack.APIURL = "https://slack.com/api"
	}
	if c.Anthropic.APIURL == "" {
		c.Anthropic.APIURL = "https://api.anthropic.com"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 2000
	}
	if c.Feedback.Store.Name == "" {
		c.Feedback.Store.Name = FeedbackStoreMemory
	}
	if c.Backup.Cron == "" {
		c.Backup.Cron = "0 10 * * 5"
	}
	if c.Backup.WindowDays == 0 {
		c.Backup.WindowDays = 30
	}
	if c.Retention.Cron == "" {
		c.Retention.Cron = "30 3 * * *"
	}
	if c.Retention.Type == "" {
		c.Retention.Type = RetentionTypeTime
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

//nolint:gocyclo
func validate(c *Config, mode string) error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch mode {
	case ModeReport, ModeFeedback, ModeAll, ModeReportCMD, ModeBackupCMD:
	default:
		add("invalid mode: %q", mode)
	}

	loc, err := time.LoadLocation(c.Main.Timezone)
	if err != nil {
		add("main.timezone cannot parse: %q", c.Main.Timezone)
	} else {
		c.Main.TimezoneParsed = loc
	}

	daemon := mode == ModeReport || mode == ModeFeedback || mode == ModeAll
	if daemon && c.Main.ListenPort <= 0 {
		add("main.listen_port is required")
	}

	reportSide := mode == ModeReport || mode == ModeAll || mode == ModeReportCMD
	if reportSide {
		if c.Slack.Token == "" {
			add("slack.token is required")
		}
		if c.Report.ChannelID == "" {
			add("report.channel_id is required")
		}
		if c.Anthropic.APIKey == "" {
			add("anthropic.api_key is required")
		}
		switch c.Report.ForceType {
		case ReportTypeAuto, ReportTypeDaily, ReportTypeWeekly:
		default:
			add("report.force_type must be one of: auto/daily/weekly")
		}
	}

	feedbackSide := mode == ModeFeedback || mode == ModeAll
	if feedbackSide {
		switch c.Feedback.Store.Name {
		case FeedbackStoreMemory:
		case FeedbackStorePostgres:
			if c.Feedback.Store.Postgres.ConnString == "" {
				add("feedback.store.postgres.conn_string is required")
			}
		default:
			add("unknown feedback store: %q", c.Feedback.Store.Name)
		}
		if c.Slack.SigningSecret == "" {
			add("slack.signing_secret is required (feedback interactions)")
		}
	}

	if mode == ModeBackupCMD {
		if c.Slack.Token == "" {
			add("slack.token is required")
		}
		if c.Report.ChannelID == "" {
			add("report.channel_id is required")
		}
		if c.Storage.Name == "" {
			add("storage.name is required for backups")
		}
	}

	if c.Retention.Enable {
		switch c.Retention.Type {
		case RetentionTypeTime:
			d, err := time.ParseDuration(c.Retention.KeepPeriod)
			if err != nil {
				add("retention.keep_period cannot parse: %q", c.Retention.KeepPeriod)
			} else {
				c.Retention.KeepPeriodParsed = d
			}
		case RetentionTypeCount:
			if c.Retention.KeepCount <= 0 {
				add("retention.keep_count must be > 0")
			}
		default:
			add("retention.type must be one of: time/count")
		}
	}

	if c.Storage.Name != "" {
		validateStorage(c, add)
	}
	if c.Backup.Enable && c.Storage.Name == "" {
		add("storage.name is required when backup.enable is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}

func validateStorage(c *Config, add func(format string, args ...any)) {
	switch c.Storage.Name {
	case StorageNameLocalFS:
		if c.Main.Directory == "" {
			add("main.directory is required for localfs storage")
		}
	case StorageNameS3:
		if c.Storage.S3.URL == "" {
			add("storage.s3.url is required")
		}
		if c.Storage.S3.AccessKeyID == "" {
			add("storage.s3.access_key_id is required")
		}
		if c.Storage.S3.SecretAccessKey == "" {
			add("storage.s3.secret_access_key is required")
		}
		if c.Storage.S3.Bucket == "" {
			add("storage.s3.bucket is required")
		}
		if c.Storage.S3.Region == "" {
			add("storage.s3.region is required")
		}
	case StorageNameSFTP:
		if c.Storage.SFTP.Host == "" {
			add("storage.sftp.host is required")
		}
		if c.Storage.SFTP.User == "" {
			add("storage.sftp.user is required")
		}
		if c.Storage.SFTP.Pass == "" && c.Storage.SFTP.PKeyPath == "" {
			add("either storage.sftp.pass or storage.sftp.pkey_path must be provided")
		}
	default:
		add("unknown storage name: %q", c.Storage.Name)
	}

	switch c.Storage.Compression.Algo {
	case "", RepoCompressorGzip, RepoCompressorZstd:
	default:
		add("unknown compression algo: %q", c.Storage.Compression.Algo)
	}
	switch c.Storage.Encryption.Algo {
	case "":
	case RepoEncryptorAes256Gcm:
		if c.Storage.Encryption.Pass == "" {
			add("storage.encryption.pass is required")
		}
	default:
		add("unknown encryption algo: %q", c.Storage.Encryption.Algo)
	}
}

// HasStorageConfigured reports whether an archive backend is set up.
func (c *Config) HasStorageConfigured() bool {
	return strings.TrimSpace(c.Storage.Name) != ""
}

func (c *Config) IsLocalStor() bool {
	return strings.EqualFold(c.Storage.Name, StorageNameLocalFS)
}

// String renders the config with sensitive fields masked.
func (c *Config) String() string {
	masked := *c
	masked.Slack.Token = mask(masked.Slack.Token)
	masked.Slack.SigningSecret = mask(masked.Slack.SigningSecret)
	masked.Anthropic.APIKey = mask(masked.Anthropic.APIKey)
	masked.Feedback.Token = mask(masked.Feedback.Token)
	masked.Feedback.Store.Postgres.ConnString = mask(masked.Feedback.Store.Postgres.ConnString)
	masked.Storage.S3.SecretAccessKey = mask(masked.Storage.S3.SecretAccessKey)
	masked.Storage.SFTP.Pass = mask(masked.Storage.SFTP.Pass)
	masked.Storage.SFTP.PKeyPass = mask(masked.Storage.SFTP.PKeyPass)
	masked.Storage.Encryption.Pass = mask(masked.Storage.Encryption.Pass)

	data, err := json.MarshalIndent(&masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("cannot render config: %v", err)
	}
	return string(data)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "*****"
}

var envPlaceholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvsWithPrefix expands ${VAR} placeholders whose names carry the
// given prefix; everything else is left verbatim.
func expandEnvsWithPrefix(s, prefix string) string {
	return envPlaceholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := envPlaceholderRe.FindStringSubmatch(m)[1]
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			return m
		}
		return os.Getenv(name)
	})
}
