package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
)

const csvBatchSize = 500

type Catalog struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewCatalog(db *gorm.DB, l *zap.SugaredLogger) *Catalog {
	return &Catalog{
		db:     db,
		logger: l,
	}
}

// TagList returns tags whose name starts with prefix, compared case-sensitively, in id order.
func (s *Catalog) TagList(ctx context.Context, prefix string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0)
	if err := namePrefix(s.db.WithContext(ctx), prefix).Order("id").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	return tags, nil
}

func (s *Catalog) TagGet(ctx context.Context, id uint64) (*db.Tag, error) {
	tag := db.Tag{}
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, "Tag")
	}
	return &tag, nil
}

// IngredientList returns ingredients whose name starts with prefix, compared case-sensitively.
func (s *Catalog) IngredientList(ctx context.Context, prefix string) ([]db.Ingredient, error) {
	q := namePrefix(s.db.WithContext(ctx), prefix).Order("name").Order("measurement_unit")
	ingredients := make([]db.Ingredient, 0)
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, errors.Wrap(err, "list ingredients")
	}
	return ingredients, nil
}

func namePrefix(q *gorm.DB, prefix string) *gorm.DB {
	if prefix == "" {
		return q
	}
	return q.Where("substr(name, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
}

func (s *Catalog) IngredientGet(ctx context.Context, id uint64) (*db.Ingredient, error) {
	ingredient := db.Ingredient{}
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err, "Ingredient")
	}
	return &ingredient, nil
}

// LoadIngredientsCSV seeds ingredients from a CSV with "name" and "measurement unit" columns.
// It does nothing when the catalog already holds ingredients.
func (s *Catalog) LoadIngredientsCSV(ctx context.Context, r io.Reader) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Ingredient{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count ingredients")
	}
	if count > 0 {
		s.logger.Infow("ingredients already loaded", "count", count)
		return 0, nil
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read csv header")
	}
	nameIdx, unitIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "name":
			nameIdx = i
		case "measurement unit", "measurement_unit":
			unitIdx = i
		}
	}
	if nameIdx < 0 || unitIdx < 0 {
		return 0, errors.New("csv header must contain 'name' and 'measurement unit'")
	}

	ingredients := make([]db.Ingredient, 0)
	seen := make(map[[2]string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrap(err, "read csv record")
		}
		name, unit := strings.TrimSpace(record[nameIdx]), strings.TrimSpace(record[unitIdx])
		if name == "" || unit == "" {
			continue
		}
		k := [2]string{name, unit}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ingredients = append(ingredients, db.Ingredient{Name: name, MeasurementUnit: unit})
	}
	if len(ingredients) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&ingredients, csvBatchSize).Error; err != nil {
		return 0, errors.Wrap(err, "insert ingredients")
	}
	s.logger.Infow("ingredients loaded", "count", len(ingredients))
	return len(ingredients), nil
}
