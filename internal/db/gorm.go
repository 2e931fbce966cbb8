package db

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
)

var Module = fx.Provide(NewGormClient)

type zapWriter struct {
	l *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.l.Debugf(format, args...)
}

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	newLogger := logger.New(zapWriter{l: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	db, err := Open(postgres.Open(cfg.DSN()), newLogger)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Open connects through the given dialector and migrates the schema. Constraint violations
// are translated to gorm's typed errors so callers can match on gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         l,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	steps := []struct {
		name  string
		model interface{}
	}{
		{"user", &User{}},
		{"tag", &Tag{}},
		{"ingredient", &Ingredient{}},
		{"recipe", &Recipe{}},
		{"recipe ingredient", &RecipeIngredient{}},
		{"membership", &Membership{}},
		{"subscription", &Subscription{}},
	}
	for _, s := range steps {
		if err := db.AutoMigrate(s.model); err != nil {
			return errors.Wrap(err, "migrate "+s.name)
		}
	}
	return nil
}
