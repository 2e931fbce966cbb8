package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
)

const recipeDir = "recipes/images"

var (
	Module = fx.Provide(NewStore)

	ErrInvalidImage = errors.New("upload a valid image")
)

type Store struct {
	root    string
	url     string
	maxSize uint
	logger  *zap.SugaredLogger
}

func NewStore(cfg *config.Config, l *zap.SugaredLogger) *Store {
	return &Store{
		root:    cfg.MediaRoot,
		url:     cfg.MediaURL,
		maxSize: cfg.ImageMaxSize,
		logger:  l,
	}
}

// SaveRecipeImage decodes a base64 data URI, downscales it to fit maxSize on the longest side
// and writes it under the media root. It returns the public URL path of the stored file.
func (s *Store) SaveRecipeImage(dataURI string) (string, error) {
	img, format, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	b := img.Bounds()
	if s.maxSize > 0 && (uint(b.Dx()) > s.maxSize || uint(b.Dy()) > s.maxSize) {
		img = resize.Thumbnail(s.maxSize, s.maxSize, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		format = "jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return "", errors.Wrap(err, "encode image")
	}

	name := uuid.New().String() + "." + extension(format)
	dir := filepath.Join(s.root, filepath.FromSlash(recipeDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create media dir")
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrap(err, "write image")
	}

	s.logger.Debugw("image stored", "name", name, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return path.Join(s.url, recipeDir, name), nil
}

// Remove deletes a file previously returned by SaveRecipeImage. Unknown paths are ignored.
func (s *Store) Remove(publicPath string) {
	rel := strings.TrimPrefix(publicPath, s.url)
	if rel == publicPath || rel == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("remove image", "path", publicPath, "error", err)
	}
}

func decodeDataURI(dataURI string) (image.Image, string, error) {
	header, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, "", ErrInvalidImage
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Wrap(ErrInvalidImage, err.Error())
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Wrap(ErrInvalidImage, err.Error())
	}
	return img, format, nil
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
