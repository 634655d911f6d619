package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"FeatMerge/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	// Symbols to process. Timeframes are processed and joined in the listed order.
	Symbols    []string `yaml:"symbols" validate:"required,min=1,unique,dive,required"`
	Timeframes []string `yaml:"timeframes" validate:"required,min=1,unique,dive,required"`
	Workers    int      `yaml:"workers" default:"1" validate:"min=1,max=64"`

	Data struct {
		Dir         string `yaml:"dir" default:"data" validate:"required"`
		FilePattern string `yaml:"file_pattern" default:"{symbol}_{timeframe}.csv" validate:"required,contains={symbol},contains={timeframe}"`
		Delimiter   string `yaml:"delimiter" default:"\t" validate:"len=1"`
		Columns     struct {
			Date   string `yaml:"date" default:"<DATE>" validate:"required"`
			Time   string `yaml:"time"`
			Open   string `yaml:"open" default:"<OPEN>" validate:"required"`
			High   string `yaml:"high" default:"<HIGH>" validate:"required"`
			Low    string `yaml:"low" default:"<LOW>" validate:"required"`
			Close  string `yaml:"close" default:"<CLOSE>" validate:"required"`
			Volume string `yaml:"volume" default:"<VOL>" validate:"required"`
		} `yaml:"columns"`
		TimestampLayouts []string `yaml:"timestamp_layouts"`
		Location         string   `yaml:"location" default:"UTC"`
	} `yaml:"data"`

	Indicators struct {
		SMAWindow       int     `yaml:"sma_window" default:"20" validate:"min=1"`
		EMAWindow       int     `yaml:"ema_window" default:"20" validate:"min=1"`
		BollingerWindow int     `yaml:"bollinger_window" default:"20" validate:"min=1"`
		BollingerK      float64 `yaml:"bollinger_k" default:"2" validate:"gt=0"`
		VolumeMAWindow  int     `yaml:"volume_ma_window" default:"20" validate:"min=1"`
	} `yaml:"indicators"`

	Output struct {
		Dir             string `yaml:"dir" default:"merged_data" validate:"required"`
		FileSuffix      string `yaml:"file_suffix" default:"_merged.csv" validate:"required"`
		TimestampColumn string `yaml:"timestamp_column" default:"timestamp" validate:"required"`
		TimestampLayout string `yaml:"timestamp_layout" default:"2006-01-02 15:04:05" validate:"required"`
		WriteEmpty      bool   `yaml:"write_empty"`
	} `yaml:"output"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" validate:"required_if=Enabled true"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"features"`
		Table            string        `yaml:"table" default:"merged_features"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		BatchSize        int           `yaml:"batch_size" default:"2000" validate:"min=1"`
	} `yaml:"clickhouse"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string        `yaml:"topic" default:"features.merged"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" validate:"required_if=Enabled true"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"featmerge"`
		TTL      time.Duration `yaml:"ttl" default:"168h"`
	} `yaml:"redis"`
}

// DefaultTimestampLayouts covers MetaTrader exports and common ISO forms.
var DefaultTimestampLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = util.SplitList(v)
	}
	if v := os.Getenv("TIMEFRAMES"); v != "" {
		c.Timeframes = util.SplitList(v)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		c.Workers = util.ParseIntDefault(v, c.Workers)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Data.TimestampLayouts) == 0 {
		c.Data.TimestampLayouts = append([]string(nil), DefaultTimestampLayouts...)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if _, err := time.LoadLocation(c.Data.Location); err != nil {
		return fmt.Errorf("data.location: %w", err)
	}
	return nil
}

// Delimiter returns the source field separator as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.Data.Delimiter)[0]
}
