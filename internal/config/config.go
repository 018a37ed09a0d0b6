package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Game       GameConfig       `mapstructure:"game"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// GameConfig 单局游戏配置
type GameConfig struct {
	Models         []string `mapstructure:"models"`          // 参赛模型列表
	PlayersPerGame int      `mapstructure:"players_per_game"` // 每局玩家数
	MafiaCount     int      `mapstructure:"mafia_count"`      // 黑手党数量
	DoctorCount    int      `mapstructure:"doctor_count"`     // 医生数量
	MaxRounds      int      `mapstructure:"max_rounds"`       // 最大回合数（超出判平局）
	TieBreak       string   `mapstructure:"tie_break"`        // 平票策略: lowest_index, no_elimination
	Language       string   `mapstructure:"language"`         // 提示词语言
	GameType       string   `mapstructure:"game_type"`        // 游戏类型标签
	UniqueModels   bool     `mapstructure:"unique_models"`    // 是否要求每个玩家使用不同模型
	RandomSeed     int64    `mapstructure:"random_seed"`      // 随机种子（0表示不固定）
	CriticReview   bool     `mapstructure:"critic_review"`    // 是否在赛后生成评论
	CriticModel    string   `mapstructure:"critic_model"`     // 评论使用的模型
}

// OpenRouterConfig OpenRouter API配置
type OpenRouterConfig struct {
	APIKey          string                   `mapstructure:"api_key"`
	APIURL          string                   `mapstructure:"api_url"`
	Timeout         time.Duration            `mapstructure:"timeout"`
	MaxOutputTokens int                      `mapstructure:"max_output_tokens"`
	ModelTimeouts   map[string]time.Duration `mapstructure:"model_timeouts"` // 按模型覆盖超时
}

// SimulationConfig 批量模拟配置
type SimulationConfig struct {
	NumGames   int  `mapstructure:"num_games"`   // 模拟局数
	Parallel   bool `mapstructure:"parallel"`    // 是否并行
	MaxWorkers int  `mapstructure:"max_workers"` // 并行工作协程数
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("MAFIA")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// 设置默认值
		setDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		// 解析配置到结构体
		cfg = &Config{}
		err = v.Unmarshal(cfg)
	})

	return err
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/mafia-game.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// 游戏默认配置
	v.SetDefault("game.models", []string{"google/gemini-2.0-flash-001"})
	v.SetDefault("game.players_per_game", 8)
	v.SetDefault("game.mafia_count", 2)
	v.SetDefault("game.doctor_count", 1)
	v.SetDefault("game.max_rounds", 20)
	v.SetDefault("game.tie_break", "lowest_index")
	v.SetDefault("game.language", "English")
	v.SetDefault("game.game_type", "Classic Mafia")
	v.SetDefault("game.unique_models", true)
	v.SetDefault("game.random_seed", 0)
	v.SetDefault("game.critic_review", false)
	v.SetDefault("game.critic_model", "anthropic/claude-3.7-sonnet")

	// OpenRouter默认配置
	v.SetDefault("openrouter.api_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.max_output_tokens", 400)

	// 模拟默认配置
	v.SetDefault("simulation.num_games", 1)
	v.SetDefault("simulation.parallel", false)
	v.SetDefault("simulation.max_workers", 4)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "mafia-game.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}

		fmt.Println("配置已重新加载")
	})
}

// GetString 获取字符串配置
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool 获取布尔配置
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetDuration 获取时间间隔配置
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// IsSet 检查配置项是否存在
func IsSet(key string) bool {
	return v.IsSet(key)
}

// Set 动态设置配置值
func Set(key string, value interface{}) {
	v.Set(key, value)
}
