package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	// AllowedOrigins lists the browser origins besides the server's own
	// that may call the API and open the websocket. "*" allows any.
	AllowedOrigins []string `yaml:"allowed-origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
	Storage        Storage  `yaml:"storage"`
	Game           Game     `yaml:"game"`
}

type Storage struct {
	Backend    string `yaml:"backend"     env:"STORAGE_BACKEND" env-default:"file"`
	Key        string `yaml:"key"         env:"STORAGE_KEY"     env-default:"current-game"`
	FileDir    string `yaml:"file-dir"    env:"STORAGE_FILE_DIR" env-default:"./saves"`
	SQLitePath string `yaml:"sqlite-path" env:"STORAGE_SQLITE_PATH" env-default:"./tictactoe.db"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	ThinkMin    time.Duration `yaml:"think-min"    env:"GAME_THINK_MIN" env-default:"1s"`
	ThinkMax    time.Duration `yaml:"think-max"    env:"GAME_THINK_MAX" env-default:"3s"`
	Seed        uint64        `yaml:"seed"         env:"GAME_SEED"      env-default:"0"`
	PlayerFirst string        `yaml:"player-first" env:"GAME_PLAYER_FIRST"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads path and applies env overrides. A missing file falls back to
// env and defaults only.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat config: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Storage.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownBackend, that.Storage.Backend)
	}

	if that.Game.ThinkMin < 0 || that.Game.ThinkMax < that.Game.ThinkMin {
		return fmt.Errorf("invalid thinking delay range [%s, %s]", that.Game.ThinkMin, that.Game.ThinkMax)
	}

	if _, err := that.Game.FirstTurn(); err != nil {
		return err
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// FirstTurn parses PlayerFirst; an empty value means "decide at random".
func (that *Game) FirstTurn() (*bool, error) {
	if that.PlayerFirst == "" {
		return nil, nil //nolint: nilnil // nil means no preference
	}

	playerFirst, err := strconv.ParseBool(that.PlayerFirst)
	if err != nil {
		return nil, fmt.Errorf("invalid player-first value %q: %w", that.PlayerFirst, err)
	}

	return &playerFirst, nil
}
