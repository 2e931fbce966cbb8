package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

func main() {
	path := flag.String("file", "data/ingredients.csv", "CSV file with name and measurement unit columns")
	flag.Parse()

	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		fx.Provide(service.NewCatalog),
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, catalog *service.Catalog, l *zap.SugaredLogger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					f, err := os.Open(*path)
					if err != nil {
						return err
					}
					defer f.Close()

					n, err := catalog.LoadIngredientsCSV(ctx, f)
					if err != nil {
						return err
					}
					l.Infow("done", "file", *path, "loaded", n)
					return sd.Shutdown()
				},
			})
		}),
	)
	app.Run()
}
