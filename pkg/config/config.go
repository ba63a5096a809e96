package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Coordinator struct {
		URL              string        `yaml:"url"`
		RoomID           string        `yaml:"room_id"`
		HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	} `yaml:"coordinator"`

	Identity struct {
		UserID      string `yaml:"user_id"`
		UserName    string `yaml:"user_name"`
		Role        string `yaml:"role"`
		Token       string `yaml:"token,omitempty"`
		TokenSecret string `yaml:"token_secret,omitempty"`
	} `yaml:"identity"`

	Heartbeat struct {
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"heartbeat"`

	Reconnect struct {
		MaxAttempts int           `yaml:"max_attempts"`
		BaseDelay   time.Duration `yaml:"base_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"reconnect"`

	LinkQuality struct {
		SampleInterval time.Duration `yaml:"sample_interval"`
		MinBitrateBps  float64       `yaml:"min_bitrate_bps"`
		MaxRTT         time.Duration `yaml:"max_rtt"`
		MaxPacketLoss  float64       `yaml:"max_packet_loss"`
	} `yaml:"link_quality"`

	Limits struct {
		MaxParticipants       int      `yaml:"max_participants"`
		MaxMessageLength      int      `yaml:"max_message_length"`
		MaxPollOptions        int      `yaml:"max_poll_options"`
		MaxWhiteboardObjects  int      `yaml:"max_whiteboard_objects"`
		MaxObjectBytes        int      `yaml:"max_object_bytes"`
		MaxImageWidth         int      `yaml:"max_image_width"`
		MaxImageHeight        int      `yaml:"max_image_height"`
		AllowedImageMimeTypes []string `yaml:"allowed_image_mime_types"`
	} `yaml:"limits"`

	OutboundRate struct {
		Enabled           bool    `yaml:"enabled"`
		MessagesPerSecond float64 `yaml:"messages_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"outbound_rate"`

	Monitoring struct {
		Enabled bool   `yaml:"enabled"`
		Address string `yaml:"address"`
	} `yaml:"monitoring"`

	Analytics struct {
		RedisEnabled  bool   `yaml:"redis_enabled"`
		RedisAddress  string `yaml:"redis_address"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		Channel       string `yaml:"channel"`
	} `yaml:"analytics"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Coordinator
	if c.Coordinator.URL == "" {
		return fmt.Errorf("coordinator.url must not be empty")
	}
	if c.Coordinator.RoomID == "" {
		return fmt.Errorf("coordinator.room_id must not be empty")
	}
	if c.Coordinator.HandshakeTimeout <= 0 {
		return fmt.Errorf("coordinator.handshake_timeout must be > 0")
	}

	// Identity
	if c.Identity.Token == "" {
		if c.Identity.UserName == "" {
			return fmt.Errorf("identity.user_name must not be empty when no token is configured")
		}
		if c.Identity.Role == "" {
			return fmt.Errorf("identity.role must not be empty when no token is configured")
		}
	} else if c.Identity.TokenSecret == "" {
		return fmt.Errorf("identity.token_secret must not be empty when identity.token is set")
	}

	// Heartbeat
	if c.Heartbeat.Interval <= 0 {
		return fmt.Errorf("heartbeat.interval must be > 0")
	}
	if c.Heartbeat.Timeout <= c.Heartbeat.Interval {
		return fmt.Errorf("heartbeat.timeout must be > heartbeat.interval")
	}

	// Reconnect
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must be >= 0")
	}
	if c.Reconnect.BaseDelay <= 0 {
		return fmt.Errorf("reconnect.base_delay must be > 0")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return fmt.Errorf("reconnect.max_delay must be >= reconnect.base_delay")
	}

	// Link quality
	if c.LinkQuality.SampleInterval <= 0 {
		return fmt.Errorf("link_quality.sample_interval must be > 0")
	}
	if c.LinkQuality.MinBitrateBps < 0 {
		return fmt.Errorf("link_quality.min_bitrate_bps must be >= 0")
	}
	if c.LinkQuality.MaxRTT <= 0 {
		return fmt.Errorf("link_quality.max_rtt must be > 0")
	}
	if c.LinkQuality.MaxPacketLoss < 0 || c.LinkQuality.MaxPacketLoss > 1 {
		return fmt.Errorf("link_quality.max_packet_loss must be within [0, 1]")
	}

	// Limits
	if c.Limits.MaxParticipants <= 0 {
		return fmt.Errorf("limits.max_participants must be > 0")
	}
	if c.Limits.MaxMessageLength <= 0 {
		return fmt.Errorf("limits.max_message_length must be > 0")
	}
	if c.Limits.MaxPollOptions < 2 {
		return fmt.Errorf("limits.max_poll_options must be >= 2")
	}
	if c.Limits.MaxWhiteboardObjects <= 0 {
		return fmt.Errorf("limits.max_whiteboard_objects must be > 0")
	}
	if c.Limits.MaxObjectBytes <= 0 {
		return fmt.Errorf("limits.max_object_bytes must be > 0")
	}
	if c.Limits.MaxImageWidth <= 0 || c.Limits.MaxImageHeight <= 0 {
		return fmt.Errorf("limits.max_image_width and max_image_height must be > 0")
	}

	// Outbound rate limiting
	if c.OutboundRate.Enabled {
		if c.OutboundRate.MessagesPerSecond <= 0 {
			return fmt.Errorf("outbound_rate.messages_per_second must be > 0 when outbound_rate.enabled=true")
		}
		if c.OutboundRate.Burst <= 0 {
			return fmt.Errorf("outbound_rate.burst must be > 0 when outbound_rate.enabled=true")
		}
	}

	// Monitoring
	if c.Monitoring.Enabled && c.Monitoring.Address == "" {
		return fmt.Errorf("monitoring.address must not be empty when monitoring.enabled=true")
	}

	// Analytics
	if c.Analytics.RedisEnabled {
		if c.Analytics.RedisAddress == "" {
			return fmt.Errorf("analytics.redis_address must not be empty when analytics.redis_enabled=true")
		}
		if c.Analytics.Channel == "" {
			return fmt.Errorf("analytics.channel must not be empty when analytics.redis_enabled=true")
		}
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Coordinator.URL = "ws://localhost:8081/ws"
	cfg.Coordinator.RoomID = "default"
	cfg.Coordinator.HandshakeTimeout = 10 * time.Second

	cfg.Identity.UserName = "anonymous"
	cfg.Identity.Role = "participant"

	cfg.Heartbeat.Interval = 15 * time.Second
	cfg.Heartbeat.Timeout = 30 * time.Second

	cfg.Reconnect.MaxAttempts = 5
	cfg.Reconnect.BaseDelay = time.Second
	cfg.Reconnect.MaxDelay = 30 * time.Second

	cfg.LinkQuality.SampleInterval = 60 * time.Second
	cfg.LinkQuality.MinBitrateBps = 500000
	cfg.LinkQuality.MaxRTT = 250 * time.Millisecond
	cfg.LinkQuality.MaxPacketLoss = 0.05

	cfg.Limits.MaxParticipants = 50
	cfg.Limits.MaxMessageLength = 2000
	cfg.Limits.MaxPollOptions = 10
	cfg.Limits.MaxWhiteboardObjects = 1000
	cfg.Limits.MaxObjectBytes = 256 * 1024
	cfg.Limits.MaxImageWidth = 4096
	cfg.Limits.MaxImageHeight = 4096
	cfg.Limits.AllowedImageMimeTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

	cfg.OutboundRate.Enabled = false
	cfg.OutboundRate.MessagesPerSecond = 20
	cfg.OutboundRate.Burst = 40

	cfg.Monitoring.Enabled = false
	cfg.Monitoring.Address = ":9091"

	cfg.Analytics.RedisEnabled = false
	cfg.Analytics.RedisAddress = "localhost:6379"
	cfg.Analytics.RedisDB = 0
	cfg.Analytics.Channel = "classlink:events"

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "classlink"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if url := os.Getenv("CLASSLINK_COORDINATOR_URL"); url != "" {
		c.Coordinator.URL = url
	}
	if room := os.Getenv("CLASSLINK_ROOM_ID"); room != "" {
		c.Coordinator.RoomID = room
	}
	if name := os.Getenv("CLASSLINK_USER_NAME"); name != "" {
		c.Identity.UserName = name
	}
	if role := os.Getenv("CLASSLINK_ROLE"); role != "" {
		c.Identity.Role = role
	}
	if token := os.Getenv("CLASSLINK_TOKEN"); token != "" {
		c.Identity.Token = token
	}
	if secret := os.Getenv("CLASSLINK_TOKEN_SECRET"); secret != "" {
		c.Identity.TokenSecret = secret
	}
	if level := os.Getenv("CLASSLINK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
