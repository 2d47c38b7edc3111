package imagefile

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // регистрируем декодер webp для image.Decode

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

// Расширения, которые принимаем от пользователя
var supportedExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// Store читает и пишет изображения на диск
type Store struct {
	JPEGQuality int
}

// NewStore создаёт хранилище с качеством JPEG 90
func NewStore() *Store {
	return &Store{JPEGQuality: 90}
}

// Load декодирует файл с учётом EXIF-ориентации (фото с телефона часто повёрнуты).
func (s *Store) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrInvalidImage, path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", entity.ErrInvalidImage, path)
	}
	return img, nil
}

// Decode декодирует изображение из байтов (фото из Telegram)
func (s *Store) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}
	return img, nil
}

// Save записывает изображение в формате по расширению. Каталог создаётся при необходимости,
// существующий файл перезаписывается.
func (s *Store) Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(s.JPEGQuality)); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// EncodeJPEG кодирует изображение в JPEG для отправки в чат
func (s *Store) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail уменьшает изображение, чтобы оно влезло в maxW x maxH с сохранением пропорций.
// Маленькие изображения не увеличиваются.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// IsImageFile проверяет расширение файла
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range supportedExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Проверка реализации интерфейса
var _ port.ImageStore = (*Store)(nil)
