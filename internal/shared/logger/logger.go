package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New monta o logger estruturado do serviço
// "local" usa o formato de desenvolvimento (console, nível debug); o resto sai em JSON
func New(serviceName string, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build(
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("env", env),
		),
	)
}

// Identity padroniza o campo de identidade de conexão nos logs
func Identity(id string) zap.Field { return zap.String("identity", id) }

// MatchID padroniza o campo de partida nos logs
func MatchID(id string) zap.Field { return zap.String("matchId", id) }
