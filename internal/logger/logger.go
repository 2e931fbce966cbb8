package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
)

var Module = fx.Provide(NewLogger)

// NewLogger builds the sugared logger shared by every component and flushes it on shutdown.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.LogMode == config.LogModeProduction {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	s := l.Sugar()
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = s.Sync()
			return nil
		},
	})
	return s, nil
}
