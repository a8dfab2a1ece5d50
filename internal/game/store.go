package game

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/wfunc/battleship/internal/errors"
)

// Store 游戏存储接口
type Store interface {
	Create(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Delete(ctx context.Context, id string) error
}

// Session 单局游戏及其锁。
// 写操作持有互斥锁，读操作在读锁下拿到深拷贝
type Session struct {
	mu   sync.RWMutex
	game *Game
}

// NewSession 创建会话
func NewSession(g *Game) *Session {
	return &Session{game: g}
}

// Snapshot 返回当前状态的深拷贝
func (s *Session) Snapshot() *Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Clone()
}

// View 在读锁下访问游戏，fn 不得修改或保留 g
func (s *Session) View(fn func(g *Game) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.game)
}

// Update 在写锁下修改游戏，返回修改后的快照
func (s *Session) Update(fn func(g *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.game); err != nil {
		return nil, err
	}
	return s.game.Clone(), nil
}

// MemoryStore 内存存储
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create 保存新游戏
func (m *MemoryStore) Create(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[g.ID]; exists {
		return apperrors.New(apperrors.ErrAlreadyExists, g.ID)
	}
	m.sessions[g.ID] = NewSession(g)
	return nil
}

// Get 获取游戏会话
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[id]
	if !exists {
		return nil, apperrors.New(apperrors.ErrGameNotFound, id)
	}
	return s, nil
}

// List 按创建时间排序返回全部会话
func (m *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	type entry struct {
		s  *Session
		id string
		at int64
	}
	entries := make([]entry, 0, len(m.sessions))
	for id, s := range m.sessions {
		// CreatedAt 创建后不再变化
		entries = append(entries, entry{s: s, id: id, at: s.game.CreatedAt.UnixNano()})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].at == entries[j].at {
			return entries[i].id < entries[j].id
		}
		return entries[i].at < entries[j].at
	})

	sessions := make([]*Session, len(entries))
	for i, e := range entries {
		sessions[i] = e.s
	}
	return sessions, nil
}

// Delete 删除游戏
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return apperrors.New(apperrors.ErrGameNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Count 当前游戏数量
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
