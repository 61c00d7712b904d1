package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/annel0/alien-planet/internal/game"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrSnapshotNotFound возвращается, если сохранения с таким ID нет
var ErrSnapshotNotFound = errors.New("сохранение не найдено")

var errNotReady = errors.New("хранилище не готово")

const (
	snapshotPrefix = "snapshot:"
	infoPrefix     = "info:"
)

// SnapshotStorage хранит сохранения игры в BadgerDB.
// Снимок лежит под ключом snapshot:<id> в виде JSON, сжатого zstd;
// краткое описание: под info:<id>, чтобы список не распаковывал снимки.
type SnapshotStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ game.SnapshotStore = (*SnapshotStorage)(nil)

// NewSnapshotStorage открывает хранилище в каталоге dataPath/snapshots
func NewSnapshotStorage(dataPath string) (*SnapshotStorage, error) {
	dbPath := filepath.Join(dataPath, "snapshots")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("создание zstd-кодировщика: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("создание zstd-декодера: %w", err)
	}

	logging.Info("💾 хранилище сохранений открыто: %s", dbPath)
	return &SnapshotStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close закрывает хранилище данных
func (s *SnapshotStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}

	s.isReady = false
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}

// Save записывает снимок и его описание одной транзакцией
func (s *SnapshotStorage) Save(ctx context.Context, snap *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.ID == "" {
		return errors.New("у сохранения нет ID")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return errNotReady
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}
	info, err := json.Marshal(snap.Info())
	if err != nil {
		return fmt.Errorf("ошибка сериализации описания: %w", err)
	}
	compressed := s.encoder.EncodeAll(data, nil)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotPrefix+snap.ID), compressed); err != nil {
			return err
		}
		return txn.Set([]byte(infoPrefix+snap.ID), info)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	logging.Debug("сохранение %s: %d байт JSON, %d байт сжато", snap.ID, len(data), len(compressed))
	return nil
}

// Load читает снимок по ID
func (s *SnapshotStorage) Load(ctx context.Context, id string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, errNotReady
	}

	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotPrefix + id))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("распаковка сохранения %s: %w", id, err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сохранения: %w", err)
	}
	return &snap, nil
}

// List возвращает описания сохранений, новые первыми
func (s *SnapshotStorage) List(ctx context.Context) ([]game.SnapshotInfo, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, errNotReady
	}

	var out []game.SnapshotInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(infoPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var info game.SnapshotInfo
				if err := json.Unmarshal(val, &info); err != nil {
					return err
				}
				out = append(out, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка сохранений: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete удаляет сохранение
func (s *SnapshotStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return errNotReady
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(infoPrefix + id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
			}
			return err
		}
		if err := txn.Delete([]byte(snapshotPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(infoPrefix + id))
	})
}
