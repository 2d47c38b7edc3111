package storage

import (
	"context"
	"sync"

	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/domain/port"
)

// sessionKey у пользователя своя сессия в каждом чате (личка и группы не смешиваются)
type sessionKey struct {
	userID int64
	chatID int64
}

// MemorySessionRepository in-memory хранилище сессий. Ничего не переживает перезапуск.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[sessionKey]*entity.Session),
	}
}

// Get возвращает сессию пользователя в чате, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	key := sessionKey{userID: userID, chatID: chatID}

	r.mu.RLock()
	session, exists := r.sessions[key]
	r.mu.RUnlock()

	if exists {
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Могли создать между RUnlock и Lock
	if session, exists := r.sessions[key]; exists {
		return session, nil
	}
	session = entity.NewSession(userID, chatID)
	r.sessions[key] = session

	return session, nil
}

// Save сохраняет сессию
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	r.sessions[sessionKey{userID: session.UserID, chatID: session.ChatID}] = session
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
