package studio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"emotion-video-server/modules/enhance"
)

// 세션 만료 기준
const (
	IdleTimeout     = 2 * time.Hour
	cleanupInterval = 10 * time.Minute
)

// Manager - 위저드 세션 관리
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	enhancer    enhance.Enhancer
	generator   Generator
	bannedWords []string
	hub         *Hub

	totalSessions int
	startTime     time.Time
}

// NewManager - Manager 생성
func NewManager(enhancer enhance.Enhancer, generator Generator, bannedWords []string, hub *Hub) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		enhancer:    enhancer,
		generator:   generator,
		bannedWords: bannedWords,
		hub:         hub,
		startTime:   time.Now(),
	}
}

// Create - 새 세션
func (m *Manager) Create() *Session {
	id := uuid.New().String()

	var notify func(State)
	if m.hub != nil {
		notify = m.hub.Broadcast
	}
	session := NewSession(id, m.enhancer, m.generator, m.bannedWords, notify)

	m.mu.Lock()
	m.sessions[id] = session
	m.totalSessions++
	active := len(m.sessions)
	m.mu.Unlock()

	log.Printf("✅ Created new session: %s (Total: %d, Active: %d)", id, m.totalSessions, active)
	return session
}

// Get - 세션 조회
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Remove - 세션 삭제 (진행 중이면 취소)
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		_ = session.Cancel()
	}
	return ok
}

// Metrics - /metrics 응답용
func (m *Manager) Metrics() map[string]interface{} {
	m.mu.RLock()
	active := len(m.sessions)
	total := m.totalSessions
	processing := 0
	for _, session := range m.sessions {
		if session.State().Processing {
			processing++
		}
	}
	m.mu.RUnlock()

	metrics := map[string]interface{}{
		"uptime":         time.Since(m.startTime).String(),
		"startTime":      m.startTime,
		"totalSessions":  total,
		"activeSessions": active,
		"processing":     processing,
	}
	if m.hub != nil {
		current, connections := m.hub.Stats()
		metrics["currentClients"] = current
		metrics["totalConnections"] = connections
	}
	return metrics
}

// CleanupIdle - 오래 쓰지 않은 세션 정리 (진행 중 세션 제외)
func (m *Manager) CleanupIdle(maxIdle time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	cleaned := 0
	for id, session := range m.sessions {
		if session.idleSince(now) > maxIdle {
			delete(m.sessions, id)
			cleaned++
			log.Printf("⏰ Cleaned up inactive session: %s", id)
		}
	}

	if cleaned > 0 {
		log.Printf("🧼 Cleaned up %d inactive sessions (Active: %d)", cleaned, len(m.sessions))
	}
	return cleaned
}

// StartCleanupRoutine - 주기적 정리
func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanupIdle(IdleTimeout)
			}
		}
	}()

	log.Printf("🔄 Started session cleanup routine (every %s, idle > %s)", cleanupInterval, IdleTimeout)
}
