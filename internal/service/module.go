package service

import (
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/media"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/shopping"
)

var Module = fx.Options(
	fx.Provide(
		NewGeneral,
		NewCatalog,
		NewRecipes,
		NewMemberships,
		NewSubscriptions,
		NewShoppingList,
		shopping.NewExporter,
		func(s *media.Store) ImageStore { return s },
	),
)
