package levelDbStore

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

const keyPrefix = "pagination:"

// LevelDbStore persists pagination preferences between CLI invocations.
type LevelDbStore struct {
	db     *leveldb.DB
	logger *zap.Logger
}

func NewLevelDbStore(path string, l *zap.Logger) (*LevelDbStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open preferences store at %s", path)
	}
	return &LevelDbStore{
		db:     db,
		logger: l,
	}, nil
}

func (s *LevelDbStore) Get(key string) ([]byte, bool) {
	v, err := s.db.Get([]byte(keyPrefix+key), nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			s.logger.Sugar().Debugw("Failed to read pagination preference", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

func (s *LevelDbStore) Set(key string, value []byte) {
	if err := s.db.Put([]byte(keyPrefix+key), value, nil); err != nil {
		s.logger.Sugar().Debugw("Failed to write pagination preference", zap.String("key", key), zap.Error(err))
	}
}

func (s *LevelDbStore) Remove(key string) {
	if err := s.db.Delete([]byte(keyPrefix+key), nil); err != nil {
		s.logger.Sugar().Debugw("Failed to remove pagination preference", zap.String("key", key), zap.Error(err))
	}
}

func (s *LevelDbStore) Close() error {
	return s.db.Close()
}
