package entity

// SessionState состояние диалога в чате
type SessionState string

const (
	StateMainMenu      SessionState = "main_menu"      // В главном меню
	StateAwaitingPhoto SessionState = "awaiting_photo" // Ожидание фото еды
	StateProcessing    SessionState = "processing"     // Обработка изображения
)

// Session состояние чата с ботом. Живёт только в памяти процесса.
type Session struct {
	UserID     int64             // Telegram User ID
	ChatID     int64             // Telegram Chat ID
	State      SessionState      // Текущее состояние
	LastResult *EstimationResult // Последний подсчёт калорий, nil если не было
}

// NewSession создаёт сессию в главном меню
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// Remember сохраняет последний результат и возвращает в главное меню
func (s *Session) Remember(result *EstimationResult) {
	s.LastResult = result
	s.State = StateMainMenu
}

// Reset сбрасывает сессию после ошибки
func (s *Session) Reset() {
	s.LastResult = nil
	s.State = StateMainMenu
}
