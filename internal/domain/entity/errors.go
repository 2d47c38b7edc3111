package entity

import "errors"

var (
	// ErrCalorieTableLoad таблица калорийности не прочитана (файла нет или JSON битый).
	// Ошибка не фатальная: работаем с пустой таблицей.
	ErrCalorieTableLoad = errors.New("calorie table load failed")

	// ErrClassNotFound класса нет в таблице калорийности
	ErrClassNotFound = errors.New("class not found in calorie table")

	// ErrInvalidImage путь не читается или файл не декодируется как изображение
	ErrInvalidImage = errors.New("invalid image")

	// ErrDetector сбой модели детекции или таблицы меток
	ErrDetector = errors.New("detector failure")
)
