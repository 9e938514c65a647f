package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	ctopics "github.com/radieske/coinflip-platform/pkg/contracts/topics"
)

// GamePort é a porta fixa do servidor do jogo (HTTP + WebSocket); não é configurável
const GamePort = "3001"

// Config centraliza variáveis de ambiente do serviço
// Endereços de backend vazios desligam o sink correspondente
type Config struct {
	Env         string `env:"ENV" envDefault:"local"` // "local", "dev", "prod"
	ServiceName string `env:"SERVICE_NAME" envDefault:"coinflip-server"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9095"` // /metrics e /healthz
	StaticDir   string `env:"STATIC_DIR"`                     // game.html e afins, opcional

	PostgresDSN  string `env:"POSTGRES_DSN"`
	RedisAddr    string `env:"REDIS_ADDR"`
	KafkaBrokers string `env:"KAFKA_BROKERS"` // "a:9092,b:9092"

	TopicMatchEvents    string `env:"KAFKA_TOPIC_MATCH_EVENTS"`
	RedisResultsChannel string `env:"REDIS_RESULTS_CHANNEL"`
}

// Load lê o ambiente e aplica os defaults dos tópicos/canais
func Load() (Config, error) {
	cfg := Config{
		TopicMatchEvents:    ctopics.MatchEvents,
		RedisResultsChannel: ctopics.ResultsBroadcast,
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
