package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/alien-planet/internal/game"
)

// MemorySnapshotStore хранит сохранения в памяти.
// Используется, когда BadgerDB отключён в конфиге, и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	data  map[string][]byte // id -> JSON снимка
	infos map[string]game.SnapshotInfo
}

var _ game.SnapshotStore = (*MemorySnapshotStore)(nil)

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		data:  make(map[string][]byte),
		infos: make(map[string]game.SnapshotInfo),
	}
}

// Save сохраняет копию снимка
func (r *MemorySnapshotStore) Save(ctx context.Context, snap *game.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("у сохранения нет ID")
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[snap.ID] = data
	r.infos[snap.ID] = snap.Info()
	return nil
}

// Load возвращает независимую копию снимка
func (r *MemorySnapshotStore) Load(ctx context.Context, id string) (*game.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.RLock()
	data, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сохранения: %w", err)
	}
	return &snap, nil
}

// List возвращает описания сохранений, новые первыми
func (r *MemorySnapshotStore) List(ctx context.Context) ([]game.SnapshotInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.SnapshotInfo, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete удаляет сохранение из памяти
func (r *MemorySnapshotStore) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	delete(r.data, id)
	delete(r.infos, id)
	return nil
}
