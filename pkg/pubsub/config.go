package pubsub

import "time"

// Config selects and configures the notification bus backend.
type Config struct {
	Driver string      `mapstructure:"driver"` // "redis" or "kafka"
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig configures the Kafka backend.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	GroupID    string `mapstructure:"group_id"`
	Partitions int    `mapstructure:"partitions"`
}

// NewPubSub creates the bus backend named by the configuration.
// Anything other than "kafka" gets the Redis backend, which is also
// the development default.
func NewPubSub(cfg Config) (PubSub, error) {
	if cfg.Driver == "kafka" {
		return NewKafkaPubSub(cfg.Kafka)
	}
	return NewRedisPubSub(cfg.Redis)
}
