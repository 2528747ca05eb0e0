package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting for a pipeline run.
// Defaults come from Default(), then an optional YAML file, then the environment.
type Config struct {
	// Search
	YouTubeAPIKey    string   `yaml:"youtube_api_key"`
	SearchTags       []string `yaml:"search_tags"`
	SearchMaxResults int64    `yaml:"search_max_results"`
	MinLikes         int64    `yaml:"min_likes"`
	MinClips         int      `yaml:"min_clips"`
	MaxClips         int      `yaml:"max_clips"`
	MaxTotalDuration float64  `yaml:"max_total_duration"`
	SelectionPolicy  string   `yaml:"selection_policy"`
	RecencyPolicy    string   `yaml:"recency_policy"`
	RedditSubreddits []string `yaml:"reddit_subreddits"`

	// Seen-videos ledger
	UseLedger     bool   `yaml:"use_ledger"`
	LedgerBackend string `yaml:"ledger_backend"`
	LedgerPath    string `yaml:"ledger_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPass     string `yaml:"redis_pass"`
	LedgerKey     string `yaml:"ledger_key"`

	// Download
	YtDlpPath        string `yaml:"ytdlp_path"`
	YtDlpCookiesFile string `yaml:"ytdlp_cookies_file"`
	TikTokCookie     string `yaml:"tiktok_cookie"`
	DownloadDir      string `yaml:"download_dir"`

	// Captions and transcription
	CaptionSource         string `yaml:"caption_source"`
	TextProvider          string `yaml:"text_provider"`
	OpenAIAPIKey          string `yaml:"openai_api_key"`
	OpenAITextModel       string `yaml:"openai_text_model"`
	OpenAITranscribeModel string `yaml:"openai_transcribe_model"`
	CohereAPIKey          string `yaml:"cohere_api_key"`
	CohereModel           string `yaml:"cohere_model"`
	OllamaURL             string `yaml:"ollama_url"`
	LocalModel            string `yaml:"local_model"`
	WhisperBin            string `yaml:"whisper_bin"`
	WhisperModel          string `yaml:"whisper_model"`

	// Composition
	AllowCropping  bool   `yaml:"allow_cropping"`
	OutputDir      string `yaml:"output_dir"`
	OutputFilename string `yaml:"output_filename"`
	CaptionCorner  string `yaml:"caption_corner"`
	TrimPolicy     string `yaml:"trim_policy"`

	// Upload
	ClientSecretsFile string `yaml:"youtube_client_secrets_file"`
	TokenFile         string `yaml:"youtube_token_file"`
	UploadPrivacy     string `yaml:"upload_privacy"`
	UploadCategoryID  string `yaml:"upload_category_id"`

	// Archive
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Profile      string `yaml:"s3_profile"`
	S3Prefix       string `yaml:"s3_prefix"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`

	// Triggers
	KafkaBrokers []string `yaml:"kafka_bootstrap_servers"`
	KafkaTopic   string   `yaml:"kafka_topic_run_requests"`
	KafkaGroupID string   `yaml:"kafka_consumer_group_id"`
	Port         string   `yaml:"port"`
	CronSchedule string   `yaml:"cron_schedule"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		SearchTags:       []string{"short", "funny", "viral"},
		SearchMaxResults: 50,
		MinLikes:         7000,
		MinClips:         4,
		MaxClips:         8,
		MaxTotalDuration: 58,
		SelectionPolicy:  "combinatorial",
		RecencyPolicy:    "recent",

		UseLedger:     true,
		LedgerBackend: "file",
		LedgerPath:    "seen_videos.json",
		RedisAddr:     "localhost:6379",
		LedgerKey:     "shortsbot:seen",

		YtDlpPath:   "yt-dlp",
		DownloadDir: "downloads",

		CaptionSource:         "transcript",
		TextProvider:          "openai",
		OpenAITextModel:       "gpt-4.1-mini",
		OpenAITranscribeModel: "gpt-4o-mini-transcribe",
		CohereModel:           "command-r",
		OllamaURL:             "http://localhost:11434/v1/",
		LocalModel:            "llama3",
		WhisperBin:            "whisper-cli",
		WhisperModel:          "models/ggml-base.en.bin",

		AllowCropping:  true,
		OutputDir:      "output",
		OutputFilename: "final_short.mp4",
		CaptionCorner:  "top-left",

		TokenFile:        "youtube_token.json",
		UploadPrivacy:    DefaultPrivacyStatus,
		UploadCategoryID: DefaultCategoryID,

		S3Prefix: "shorts",

		KafkaBrokers: []string{"localhost:9093"},
		KafkaTopic:   "shorts-run-requests",
		KafkaGroupID: "shortsbot-consumer-group",
		Port:         "8081",
		CronSchedule: "0 9 * * *",
	}
}

// Load reads .env (best-effort), the optional YAML file named by
// SHORTSBOT_CONFIG, and finally environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SHORTSBOT_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
		log.Printf("📄 Loaded config file: %s", path)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.YouTubeAPIKey = GetEnvOrDefault("YOUTUBE_API_KEY", c.YouTubeAPIKey)
	c.SearchTags = GetEnvList("SEARCH_TAGS", c.SearchTags)
	c.SearchMaxResults = int64(GetEnvInt("SEARCH_MAX_RESULTS", int(c.SearchMaxResults)))
	c.MinLikes = int64(GetEnvInt("MIN_LIKES", int(c.MinLikes)))
	c.MinClips = GetEnvInt("MIN_CLIPS", c.MinClips)
	c.MaxClips = GetEnvInt("MAX_CLIPS", c.MaxClips)
	c.MaxTotalDuration = GetEnvFloat("MAX_TOTAL_DURATION", c.MaxTotalDuration)
	c.SelectionPolicy = GetEnvOrDefault("SELECTION_POLICY", c.SelectionPolicy)
	c.RecencyPolicy = GetEnvOrDefault("RECENCY_POLICY", c.RecencyPolicy)
	c.RedditSubreddits = GetEnvList("REDDIT_SUBREDDITS", c.RedditSubreddits)

	c.UseLedger = GetEnvBool("USE_LEDGER", c.UseLedger)
	c.LedgerBackend = GetEnvOrDefault("LEDGER_BACKEND", c.LedgerBackend)
	c.LedgerPath = GetEnvOrDefault("LEDGER_PATH", c.LedgerPath)
	c.RedisAddr = GetEnvOrDefault("REDIS_ADDR", c.RedisAddr)
	c.RedisPass = GetEnvOrDefault("REDIS_PASS", c.RedisPass)
	c.LedgerKey = GetEnvOrDefault("LEDGER_KEY", c.LedgerKey)

	c.YtDlpPath = GetEnvOrDefault("YTDLP_PATH", c.YtDlpPath)
	c.YtDlpCookiesFile = GetEnvOrDefault("YTDLP_COOKIES_FILE", c.YtDlpCookiesFile)
	c.TikTokCookie = GetEnvOrDefault("TIKTOK_COOKIE", c.TikTokCookie)
	c.DownloadDir = GetEnvOrDefault("DOWNLOAD_DIR", c.DownloadDir)

	c.CaptionSource = GetEnvOrDefault("CAPTION_SOURCE", c.CaptionSource)
	c.TextProvider = GetEnvOrDefault("TEXT_PROVIDER", c.TextProvider)
	c.OpenAIAPIKey = GetEnvOrDefault("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAITextModel = GetEnvOrDefault("OPENAI_TEXT_MODEL", c.OpenAITextModel)
	c.OpenAITranscribeModel = GetEnvOrDefault("OPENAI_TRANSCRIBE_MODEL", c.OpenAITranscribeModel)
	c.CohereAPIKey = GetEnvOrDefault("COHERE_API_KEY", c.CohereAPIKey)
	c.CohereModel = GetEnvOrDefault("COHERE_MODEL", c.CohereModel)
	c.OllamaURL = GetEnvOrDefault("OLLAMA_URL", c.OllamaURL)
	c.LocalModel = GetEnvOrDefault("LOCAL_MODEL", c.LocalModel)
	c.WhisperBin = GetEnvOrDefault("WHISPER_BIN", c.WhisperBin)
	c.WhisperModel = GetEnvOrDefault("WHISPER_MODEL", c.WhisperModel)

	c.AllowCropping = GetEnvBool("ALLOW_CROPPING", c.AllowCropping)
	c.OutputDir = GetEnvOrDefault("OUTPUT_DIR", c.OutputDir)
	c.OutputFilename = GetEnvOrDefault("OUTPUT_FILENAME", c.OutputFilename)
	c.CaptionCorner = GetEnvOrDefault("CAPTION_CORNER", c.CaptionCorner)
	c.TrimPolicy = GetEnvOrDefault("TRIM_POLICY", c.TrimPolicy)

	c.ClientSecretsFile = GetEnvOrDefault("YOUTUBE_CLIENT_SECRETS_FILE", c.ClientSecretsFile)
	c.TokenFile = GetEnvOrDefault("YOUTUBE_TOKEN_FILE", c.TokenFile)
	c.UploadPrivacy = GetEnvOrDefault("UPLOAD_PRIVACY", c.UploadPrivacy)
	c.UploadCategoryID = GetEnvOrDefault("UPLOAD_CATEGORY_ID", c.UploadCategoryID)

	c.S3Bucket = GetEnvOrDefault("S3_BUCKET", c.S3Bucket)
	c.S3Region = GetEnvOrDefault("S3_REGION", c.S3Region)
	c.S3Profile = GetEnvOrDefault("S3_PROFILE", c.S3Profile)
	c.S3Prefix = GetEnvOrDefault("S3_PREFIX", c.S3Prefix)
	c.S3UsePathStyle = GetEnvBool("S3_USE_PATH_STYLE", c.S3UsePathStyle)

	c.KafkaBrokers = GetEnvList("KAFKA_BOOTSTRAP_SERVERS", c.KafkaBrokers)
	c.KafkaTopic = GetEnvOrDefault("KAFKA_TOPIC_RUN_REQUESTS", c.KafkaTopic)
	c.KafkaGroupID = GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID", c.KafkaGroupID)
	c.Port = GetEnvOrDefault("PORT", c.Port)
	c.CronSchedule = GetEnvOrDefault("CRON_SCHEDULE", c.CronSchedule)
}

// Validate checks the numeric limits and policy names
func (c Config) Validate() error {
	if c.MinClips < 1 {
		return fmt.Errorf("MIN_CLIPS must be at least 1, got %d", c.MinClips)
	}
	if c.MaxClips < c.MinClips {
		return fmt.Errorf("MAX_CLIPS (%d) must be >= MIN_CLIPS (%d)", c.MaxClips, c.MinClips)
	}
	if c.MaxTotalDuration <= 0 {
		return fmt.Errorf("MAX_TOTAL_DURATION must be positive, got %v", c.MaxTotalDuration)
	}
	if err := oneOf("SELECTION_POLICY", c.SelectionPolicy, "combinatorial", "sample"); err != nil {
		return err
	}
	if err := oneOf("RECENCY_POLICY", c.RecencyPolicy, "recent", "evergreen"); err != nil {
		return err
	}
	if err := oneOf("LEDGER_BACKEND", c.LedgerBackend, "file", "redis", "sqlite"); err != nil {
		return err
	}
	if err := oneOf("CAPTION_SOURCE", c.CaptionSource, "transcript", "local", "metadata"); err != nil {
		return err
	}
	if err := oneOf("TEXT_PROVIDER", c.TextProvider, "openai", "cohere"); err != nil {
		return err
	}
	if err := oneOf("CAPTION_CORNER", c.CaptionCorner, "top-left", "top-right", "bottom-left", "bottom-right"); err != nil {
		return err
	}
	if c.TrimPolicy != "" {
		if err := oneOf("TRIM_POLICY", c.TrimPolicy, "capped", "budget", "whole"); err != nil {
			return err
		}
	}
	return nil
}

// UploadEnabled reports whether client secrets are configured and readable
func (c Config) UploadEnabled() bool {
	if c.ClientSecretsFile == "" {
		return false
	}
	_, err := os.Stat(c.ClientSecretsFile)
	return err == nil
}

// ArchiveEnabled reports whether rendered videos should be copied to S3
func (c Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

// GetEnvOrDefault returns the environment value for key or def when unset
func GetEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// GetEnvInt parses an integer environment value, falling back to def
func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Printf("⚠️  Ignoring invalid %s=%q", key, v)
	}
	return def
}

// GetEnvFloat parses a float environment value, falling back to def
func GetEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
		log.Printf("⚠️  Ignoring invalid %s=%q", key, v)
	}
	return def
}

// GetEnvBool parses a boolean environment value, falling back to def
func GetEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		log.Printf("⚠️  Ignoring invalid %s=%q", key, v)
	}
	return def
}

// GetEnvList splits a comma-separated environment value, falling back to def
func GetEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
