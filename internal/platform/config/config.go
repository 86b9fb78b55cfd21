// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración de emailscope por secciones.
type Config struct {
	Core    CoreConfig    `yaml:"core" json:"core"`
	Crawl   CrawlConfig   `yaml:"crawl" json:"crawl"`
	Extract ExtractConfig `yaml:"extract" json:"extract"`
	Verify  VerifyConfig  `yaml:"verify" json:"verify"`
	Scoring ScoringConfig `yaml:"scoring" json:"scoring"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Network NetworkConfig `yaml:"network" json:"network"`

	ConfigFile   string `yaml:"-" json:"-"`
	PrintVersion bool   `yaml:"-" json:"-"`
	ShowHelp     bool   `yaml:"-" json:"-"`
}

type CoreConfig struct {
	Target      string `yaml:"target" json:"target"`
	TimeoutS    int    `yaml:"timeout" json:"timeout"` // segundos (0 = sin timeout)
	LogLevel    string `yaml:"log_level" json:"log_level"`
	SentryDSN   string `yaml:"sentry_dsn" json:"-"`
	Environment string `yaml:"environment" json:"environment"`
	Quiet       bool   `yaml:"quiet" json:"quiet"`
}

type CrawlConfig struct {
	MaxDepth          int           `yaml:"max_depth" json:"max_depth"`
	MaxPages          int           `yaml:"max_pages" json:"max_pages"`
	DelayFloor        time.Duration `yaml:"delay_floor" json:"delay_floor"`
	PolicyTTL         time.Duration `yaml:"policy_ttl" json:"policy_ttl"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	IncludeSubdomains bool          `yaml:"include_subdomains" json:"include_subdomains"`
}

type ExtractConfig struct {
	// RoleAddresses añade info@, contact@, sales@... como permutaciones
	RoleAddresses bool `yaml:"role_addresses" json:"role_addresses"`
	// NameWindow líneas alrededor de un literal donde se buscan nombres
	NameWindow int `yaml:"name_window" json:"name_window"`
}

type VerifyConfig struct {
	Concurrency      int           `yaml:"concurrency" json:"concurrency"`
	Port             int           `yaml:"port" json:"port"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	CommandTimeout   time.Duration `yaml:"command_timeout" json:"command_timeout"`
	HeloName         string        `yaml:"helo_name" json:"helo_name"`
	MailFrom         string        `yaml:"mail_from" json:"mail_from"`
	ProfileTTL       time.Duration `yaml:"profile_ttl" json:"profile_ttl"`
	CatchAllProbe    bool          `yaml:"catch_all_probe" json:"catch_all_probe"`
	BreakerThreshold int           `yaml:"breaker_threshold" json:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" json:"breaker_cooldown"`
}

// ScoringConfig contiene los pesos de la tabla de puntuación.
type ScoringConfig struct {
	Accepted       int `yaml:"accepted" json:"accepted"`
	Unknown        int `yaml:"unknown" json:"unknown"`
	Rejected       int `yaml:"rejected" json:"rejected"`
	MXResolved     int `yaml:"mx_resolved" json:"mx_resolved"`
	Literal        int `yaml:"literal" json:"literal"`
	Permutation    int `yaml:"permutation" json:"permutation"`
	SightingBonus  int `yaml:"sighting_bonus" json:"sighting_bonus"`
	SightingCap    int `yaml:"sighting_cap" json:"sighting_cap"`
	CatchAllCap    int `yaml:"catch_all_cap" json:"catch_all_cap"`
	RejectedCap    int `yaml:"rejected_cap" json:"rejected_cap"`
	ValidThreshold int `yaml:"valid_threshold" json:"valid_threshold"`
	RiskyThreshold int `yaml:"risky_threshold" json:"risky_threshold"`
}

type OutputConfig struct {
	Dir           string `yaml:"dir" json:"dir"`
	TableDisabled bool   `yaml:"no_table" json:"no_table"`
	XLSX          bool   `yaml:"xlsx" json:"xlsx"`
	Stream        bool   `yaml:"stream" json:"stream"` // JSONL de eventos
	MinConfidence int    `yaml:"min_confidence" json:"min_confidence"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr" json:"addr"` // vacío = modo CLI
	MaxRuns int    `yaml:"max_runs" json:"max_runs"`
}

type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"-"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	Prefix        string `yaml:"prefix" json:"prefix"`
	Capacity      int    `yaml:"capacity" json:"capacity"`
}

type NetworkConfig struct {
	ProxyURL    string        `yaml:"proxy" json:"proxy"`             // HTTP(S) para el crawl
	SocksProxy  string        `yaml:"socks_proxy" json:"socks_proxy"` // SOCKS5 para SMTP
	Retries     int           `yaml:"retries" json:"retries"`
	MaxRPS      float64       `yaml:"max_rps" json:"max_rps"` // techo global entre dominios (0 = sin techo)
	BackoffBase time.Duration `yaml:"backoff_base" json:"backoff_base"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Core: CoreConfig{
			TimeoutS:    300,
			LogLevel:    "info",
			Environment: "production",
		},
		Crawl: CrawlConfig{
			MaxDepth:          2,
			MaxPages:          50,
			DelayFloor:        1 * time.Second,
			PolicyTTL:         1 * time.Hour,
			FetchTimeout:      15 * time.Second,
			MaxBodyBytes:      2 << 20,
			UserAgent:         "EmailScopeBot/1.0",
			IncludeSubdomains: true,
		},
		Extract: ExtractConfig{
			NameWindow: 2,
		},
		Verify: VerifyConfig{
			Concurrency:      3,
			Port:             25,
			ConnectTimeout:   10 * time.Second,
			CommandTimeout:   10 * time.Second,
			HeloName:         "emailscope.local",
			MailFrom:         "verify@emailscope.local",
			ProfileTTL:       1 * time.Hour,
			CatchAllProbe:    true,
			BreakerThreshold: 3,
			BreakerCooldown:  2 * time.Minute,
		},
		Scoring: DefaultScoring(),
		Output: OutputConfig{
			Dir: "emailscope_out",
		},
		Server: ServerConfig{
			MaxRuns: 8,
		},
		Cache: CacheConfig{
			Prefix:   "emailscope:",
			Capacity: 1024,
		},
		Network: NetworkConfig{
			Retries:     2,
			BackoffBase: 500 * time.Millisecond,
		},
	}
}

// DefaultScoring retorna los pesos por defecto de la tabla de puntuación.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Accepted:       60,
		Unknown:        15,
		Rejected:       0,
		MXResolved:     10,
		Literal:        15,
		Permutation:    0,
		SightingBonus:  5,
		SightingCap:    15,
		CatchAllCap:    79,
		RejectedCap:    10,
		ValidThreshold: 80,
		RiskyThreshold: 40,
	}
}

// Load inicializa la configuración desde os.Args y gestiona --help/--version.
func Load(version, commit, date string) (Config, error) {
	cfg, err := LoadArgs(os.Args[1:])
	if err != nil {
		return cfg, err
	}
	if cfg.ShowHelp {
		PrintHelp()
	}
	if cfg.PrintVersion {
		PrintVersion(version, commit, date)
	}
	return cfg, nil
}

// LoadArgs aplica, en orden: defaults -> .env/ENV -> fichero YAML -> flags.
func LoadArgs(args []string) (Config, error) {
	cfg := DefaultConfig()

	// .env es opcional; nunca sobrescribe variables ya definidas.
	_ = godotenv.Load()

	loadFromEnv(&cfg)

	cfg.ConfigFile = getenv("EMAILSCOPE_CONFIG", "")
	if path := configPathFromArgs(args); path != "" {
		cfg.ConfigFile = path
	}
	if cfg.ConfigFile != "" {
		if err := loadFromFile(&cfg, cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)
	return cfg, nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("EMAILSCOPE_DOMAIN", ""); v != "" {
		cfg.Core.Target = v
	}
	if v := getenv("EMAILSCOPE_TIMEOUT", ""); v != "" {
		cfg.Core.TimeoutS = parseInt(v, cfg.Core.TimeoutS)
	}
	if v := getenv("EMAILSCOPE_LOG_LEVEL", ""); v != "" {
		cfg.Core.LogLevel = v
	}
	if v := getenv("SENTRY_DSN", ""); v != "" {
		cfg.Core.SentryDSN = v
	}
	if v := getenv("EMAILSCOPE_ENV", ""); v != "" {
		cfg.Core.Environment = v
	}

	// Crawl
	if v := getenv("EMAILSCOPE_MAX_DEPTH", ""); v != "" {
		cfg.Crawl.MaxDepth = parseInt(v, cfg.Crawl.MaxDepth)
	}
	if v := getenv("EMAILSCOPE_MAX_PAGES", ""); v != "" {
		cfg.Crawl.MaxPages = parseInt(v, cfg.Crawl.MaxPages)
	}
	if v := getenv("EMAILSCOPE_CRAWL_DELAY", ""); v != "" {
		cfg.Crawl.DelayFloor = parseDuration(v, cfg.Crawl.DelayFloor)
	}
	if v := getenv("EMAILSCOPE_USER_AGENT", ""); v != "" {
		cfg.Crawl.UserAgent = v
	}

	if v := getenv("EMAILSCOPE_ROLE_ADDRESSES", ""); v != "" {
		cfg.Extract.RoleAddresses = parseBool(v)
	}

	// Verify
	if v := getenv("EMAILSCOPE_VERIFY_CONCURRENCY", ""); v != "" {
		cfg.Verify.Concurrency = parseInt(v, cfg.Verify.Concurrency)
	}
	if v := getenv("EMAILSCOPE_SMTP_PORT", ""); v != "" {
		cfg.Verify.Port = parseInt(v, cfg.Verify.Port)
	}
	if v := getenv("EMAILSCOPE_SMTP_TIMEOUT", ""); v != "" {
		d := parseDuration(v, cfg.Verify.CommandTimeout)
		cfg.Verify.ConnectTimeout = d
		cfg.Verify.CommandTimeout = d
	}
	if v := getenv("EMAILSCOPE_MAIL_FROM", ""); v != "" {
		cfg.Verify.MailFrom = v
	}
	if v := getenv("EMAILSCOPE_HELO_NAME", ""); v != "" {
		cfg.Verify.HeloName = v
	}

	// Output
	if v := getenv("EMAILSCOPE_OUTPUT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv("EMAILSCOPE_XLSX", ""); v != "" {
		cfg.Output.XLSX = parseBool(v)
	}

	// Server / cache / network
	if v := getenv("EMAILSCOPE_SERVE", ""); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("EMAILSCOPE_REDIS_ADDR", ""); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := getenv("EMAILSCOPE_REDIS_PASSWORD", ""); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := getenv("EMAILSCOPE_REDIS_DB", ""); v != "" {
		cfg.Cache.RedisDB = parseInt(v, cfg.Cache.RedisDB)
	}
	if v := getenv("EMAILSCOPE_PROXY_URL", ""); v != "" {
		cfg.Network.ProxyURL = v
	}
	if v := getenv("EMAILSCOPE_SOCKS_PROXY", ""); v != "" {
		cfg.Network.SocksProxy = v
	}
}

// loadFromFile superpone un fichero YAML sobre la configuración actual.
// Solo las claves presentes en el fichero modifican valores.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("emailscope", pflag.ContinueOnError)
	fs.Usage = func() {}

	// Core
	fs.StringVarP(&cfg.Core.Target, "domain", "d", cfg.Core.Target, "Target domain (e.g., example.com)")
	fs.IntVarP(&cfg.Core.TimeoutS, "timeout", "T", cfg.Core.TimeoutS, "Global timeout in seconds (0 = none)")
	fs.StringVar(&cfg.Core.LogLevel, "log-level", cfg.Core.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVarP(&cfg.Core.Quiet, "quiet", "q", cfg.Core.Quiet, "No progress UI; print records as JSON to stdout")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "YAML config file")

	// Crawl
	fs.IntVar(&cfg.Crawl.MaxDepth, "max-depth", cfg.Crawl.MaxDepth, "Maximum crawl depth")
	fs.IntVar(&cfg.Crawl.MaxPages, "max-pages", cfg.Crawl.MaxPages, "Maximum pages fetched")
	fs.DurationVar(&cfg.Crawl.DelayFloor, "crawl-delay", cfg.Crawl.DelayFloor, "Minimum delay between requests to the same domain")
	fs.StringVar(&cfg.Crawl.UserAgent, "user-agent", cfg.Crawl.UserAgent, "User agent for crawling and robots.txt")
	fs.BoolVar(&cfg.Crawl.IncludeSubdomains, "subdomains", cfg.Crawl.IncludeSubdomains, "Follow links to subdomains of the target")

	// Extract
	fs.BoolVar(&cfg.Extract.RoleAddresses, "role-addresses", cfg.Extract.RoleAddresses, "Also guess role addresses (info@, contact@, sales@...)")

	// Verify
	fs.IntVarP(&cfg.Verify.Concurrency, "verify-concurrency", "w", cfg.Verify.Concurrency, "Parallel SMTP verifications")
	fs.IntVar(&cfg.Verify.Port, "smtp-port", cfg.Verify.Port, "SMTP port on mail exchangers")
	fs.DurationVar(&cfg.Verify.CommandTimeout, "smtp-timeout", cfg.Verify.CommandTimeout, "Per-command SMTP timeout")
	fs.StringVar(&cfg.Verify.MailFrom, "mail-from", cfg.Verify.MailFrom, "Envelope sender used in MAIL FROM")
	fs.BoolVar(&cfg.Verify.CatchAllProbe, "catch-all-probe", cfg.Verify.CatchAllProbe, "Probe each domain for catch-all")

	// Output
	fs.StringVarP(&cfg.Output.Dir, "out", "o", cfg.Output.Dir, "Output directory")
	fs.BoolVar(&cfg.Output.TableDisabled, "no-table", cfg.Output.TableDisabled, "Disable table output")
	fs.BoolVar(&cfg.Output.XLSX, "xlsx", cfg.Output.XLSX, "Also write an XLSX workbook")
	fs.BoolVar(&cfg.Output.Stream, "stream", cfg.Output.Stream, "Write progress events as JSONL")
	fs.IntVar(&cfg.Output.MinConfidence, "min-confidence", cfg.Output.MinConfidence, "Only export results with at least this confidence (0-100)")

	// Server / cache / network
	fs.StringVar(&cfg.Server.Addr, "serve", cfg.Server.Addr, "Start trigger API on address (e.g., :8080)")
	fs.StringVar(&cfg.Cache.RedisAddr, "redis", cfg.Cache.RedisAddr, "Redis address for shared policy/profile caches")
	fs.StringVarP(&cfg.Network.ProxyURL, "proxy", "p", cfg.Network.ProxyURL, "HTTP(S) proxy for crawling")
	fs.StringVar(&cfg.Network.SocksProxy, "socks", cfg.Network.SocksProxy, "SOCKS5 proxy for SMTP (host:port)")
	fs.IntVarP(&cfg.Network.Retries, "retries", "r", cfg.Network.Retries, "HTTP retries on 429/5xx")
	fs.Float64Var(&cfg.Network.MaxRPS, "max-rps", cfg.Network.MaxRPS, "Global HTTP requests per second across all runs (0 = no ceiling)")

	// Info
	fs.BoolVarP(&cfg.PrintVersion, "version", "v", false, "Print version and exit")
	fs.BoolVarP(&cfg.ShowHelp, "help", "h", false, "Show help")

	return fs
}

// loadFromFlags parsea flags de CLI (prioridad máxima).
func loadFromFlags(cfg *Config, args []string) error {
	fs := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if cfg.Core.Target == "" && fs.NArg() > 0 {
		cfg.Core.Target = fs.Arg(0)
	}
	return nil
}

// configPathFromArgs busca --config antes del parseo completo, para que el
// YAML se aplique por debajo de los flags.
func configPathFromArgs(args []string) string {
	var path string
	fs := pflag.NewFlagSet("config-path", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.StringVarP(&path, "config", "c", "", "")
	_ = fs.Parse(args)
	return path
}

func normalize(c *Config) {
	c.Core.Target = strings.TrimSpace(strings.ToLower(strings.TrimSuffix(strings.TrimSpace(c.Core.Target), ".")))
	if c.Core.TimeoutS < 0 {
		c.Core.TimeoutS = 0
	}
	if c.Crawl.MaxDepth < 0 {
		c.Crawl.MaxDepth = 0
	}
	if c.Crawl.MaxPages < 1 {
		c.Crawl.MaxPages = 1
	}
	if c.Crawl.DelayFloor < 0 {
		c.Crawl.DelayFloor = 0
	}
	if c.Extract.NameWindow < 0 {
		c.Extract.NameWindow = 0
	}
	if c.Verify.Concurrency < 1 {
		c.Verify.Concurrency = 1
	}
	if c.Verify.Port <= 0 || c.Verify.Port > 65535 {
		c.Verify.Port = 25
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "emailscope_out"
	}
	c.Output.MinConfidence = max(0, min(100, c.Output.MinConfidence))
	if c.Network.Retries < 0 {
		c.Network.Retries = 0
	}
	if c.Network.MaxRPS < 0 {
		c.Network.MaxRPS = 0
	}
	if c.Server.MaxRuns < 1 {
		c.Server.MaxRuns = 1
	}
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Timeout devuelve un time.Duration útil si prefieres trabajar con duración.
func (c Config) Timeout() time.Duration {
	if c.Core.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.Core.TimeoutS) * time.Second
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

// parseDuration acepta "1500ms", "2s" o un entero en segundos.
func parseDuration(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return def
}
