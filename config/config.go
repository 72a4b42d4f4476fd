package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Roster     RosterConfig     `mapstructure:"roster"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	MaxBodyBytes int64           `mapstructure:"max_body_bytes"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 导入接口限流（依赖 Redis，未启用时放行）
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RedisConfig Redis 缓存配置（Addr 为空表示不启用）
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Enabled 是否配置了 Redis
func (c *RedisConfig) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AttendanceConfig 考勤推导相关常量
type AttendanceConfig struct {
	WindowDays         int    `mapstructure:"window_days"`
	ShortDayMinutes    int    `mapstructure:"short_day_minutes"`
	LeaveCreditDivisor int    `mapstructure:"leave_credit_divisor"`
	Timezone           string `mapstructure:"timezone"`
}

// Location 解析时区，失败时回退到 UTC
func (c *AttendanceConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DepartmentLabel 部门代码 → 显示名称
type DepartmentLabel struct {
	Code  string `mapstructure:"code"`
	Label string `mapstructure:"label"`
}

// RosterConfig 花名册文本解析配置
type RosterConfig struct {
	Path                string            `mapstructure:"path"`
	IdentifierPrefix    string            `mapstructure:"identifier_prefix"`
	IdentifierMinDigits int               `mapstructure:"identifier_min_digits"`
	Keywords            []string          `mapstructure:"keywords"`
	TwoWordMarkers      []string          `mapstructure:"two_word_markers"`
	AdminMarkers        []string          `mapstructure:"admin_markers"`
	ExcludedCodes       []string          `mapstructure:"excluded_codes"`
	EmailDomain         string            `mapstructure:"email_domain"`
	Departments         []DepartmentLabel `mapstructure:"departments"`
}

// IngestConfig 打卡表获取配置
type IngestConfig struct {
	Source       string        `mapstructure:"source"` // URL 或本地文件路径
	SummaryPath  string        `mapstructure:"summary_path"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
	SyncOnStart  bool          `mapstructure:"sync_on_start"`
}

// DefaultDepartments 内置部门名称表
var DefaultDepartments = []DepartmentLabel{
	{Code: "AEIE", Label: "Applied Electronics & Instrumentation Engineering"},
	{Code: "BSH", Label: "Basic Science & Humanities"},
	{Code: "CE", Label: "Civil Engineering"},
	{Code: "CSE", Label: "Computer Science & Engineering"},
	{Code: "ECE", Label: "Electronics & Communication Engineering"},
	{Code: "EE", Label: "Electrical Engineering"},
	{Code: "IT", Label: "Information Technology"},
	{Code: "MBA", Label: "Business Administration"},
	{Code: "MCA", Label: "Computer Applications"},
	{Code: "ME", Label: "Mechanical Engineering"},
	{Code: "ADMIN", Label: "Administration"},
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在属于正常情况
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if len(cfg.Roster.Departments) == 0 {
		cfg.Roster.Departments = append([]DepartmentLabel(nil), DefaultDepartments...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.requests", 10)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "6h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("attendance.window_days", 14)
	v.SetDefault("attendance.short_day_minutes", 450)
	v.SetDefault("attendance.leave_credit_divisor", 4)
	v.SetDefault("attendance.timezone", "Asia/Kolkata")

	v.SetDefault("roster.path", "")
	v.SetDefault("roster.identifier_prefix", "TIG")
	v.SetDefault("roster.identifier_min_digits", 1)
	v.SetDefault("roster.keywords", []string{
		"AEIE", "BSH", "CE", "CSE", "ECE", "EE", "IT", "MBA", "MCA", "ME", "Admin", "PRINCIPAL",
	})
	v.SetDefault("roster.two_word_markers", []string{"ASST. REGISTRATAR"})
	v.SetDefault("roster.admin_markers", []string{"Admin", "PRINCIPAL", "ASST. REGISTRATAR"})
	v.SetDefault("roster.excluded_codes", []string{"ADMIN"})
	v.SetDefault("roster.email_domain", "tint.edu")

	v.SetDefault("ingest.source", "")
	v.SetDefault("ingest.summary_path", "")
	v.SetDefault("ingest.fetch_timeout", "30s")
	v.SetDefault("ingest.max_bytes", 10<<20)
	v.SetDefault("ingest.sync_on_start", true)
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Attendance.WindowDays <= 0 {
		return fmt.Errorf("配置校验失败: attendance.window_days 必须大于 0")
	}
	if c.Attendance.ShortDayMinutes <= 0 {
		return fmt.Errorf("配置校验失败: attendance.short_day_minutes 必须大于 0")
	}
	if c.Attendance.LeaveCreditDivisor <= 0 {
		return fmt.Errorf("配置校验失败: attendance.leave_credit_divisor 必须大于 0")
	}
	if strings.TrimSpace(c.Roster.IdentifierPrefix) == "" {
		return fmt.Errorf("配置校验失败: roster.identifier_prefix 不能为空")
	}
	if c.Roster.IdentifierMinDigits <= 0 {
		return fmt.Errorf("配置校验失败: roster.identifier_min_digits 必须大于 0")
	}
	return nil
}

// LabelTable 将部门列表转为 code → label 映射
func (c *RosterConfig) LabelTable() map[string]string {
	m := make(map[string]string, len(c.Departments))
	for _, d := range c.Departments {
		m[strings.ToUpper(strings.TrimSpace(d.Code))] = d.Label
	}
	return m
}
