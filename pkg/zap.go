package pkg

import (
	"github.com/SAP-F-2025/story-survey-service/internal/config"
	"go.uber.org/zap"
)

// NewZapLogger builds the logger used by the Redis cache layer.
func NewZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
