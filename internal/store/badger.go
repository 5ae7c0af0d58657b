package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/model"
)

const roomPrefix = "room:"

// BadgerStore keeps one JSON value per room under "room:<id>".
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a store in dir. An empty dir gives an
// in-memory database.
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.WithLogger(badgerLogger{logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open room store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func roomKey(id string) []byte {
	return []byte(roomPrefix + id)
}

func (s *BadgerStore) Save(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", rec.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(rec.ID), data)
	})
}

func (s *BadgerStore) Load(ctx context.Context, id string) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(roomKey(id))
	})
}

func (s *BadgerStore) List(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var recs []model.Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(roomPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec model.Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

// badgerLogger routes badger's printf-style logging into zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
