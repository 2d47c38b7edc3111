package port

// CalorieTable таблица калорийности, ккал на 100 г
type CalorieTable interface {
	// Lookup ищет класс без учёта регистра, ошибка ErrClassNotFound если его нет
	Lookup(className string) (float64, error)
}
