// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.
//
// This file is derived from storage/database/leveldb_database.go. Re-purposed
// as chainkit's single-engine Database port implementation in place of the
// teacher's multi-backend DBManager entry.

package storagedb

import (
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
)

// OpenFileLimit mirrors the teacher's guard on concurrently open files.
var OpenFileLimit = 64

type levelDB struct {
	fn string
	db *leveldb.DB

	compTimeMeter  metrics.Meter
	compReadMeter  metrics.Meter
	compWriteMeter metrics.Meter
	diskReadMeter  metrics.Meter
	diskWriteMeter metrics.Meter

	quitLock sync.Mutex
	quitChan chan chan error

	log *log.Logger
}

func ldbOptions(cacheMiB, numHandles int) *opt.Options {
	return &opt.Options{
		OpenFilesCacheCapacity: numHandles,
		BlockCacheCapacity:     cacheMiB / 2 * opt.MiB,
		WriteBuffer:            cacheMiB / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		DisableBufferPool:      true,
	}
}

// NewLevelDB opens (or creates) a leveldb-backed Database at dir, recovering
// from a corrupted store the same way the teacher's NewLDBDatabase does.
func NewLevelDB(dir string, cacheMiB, numHandles int) (Database, error) {
	logger := log.NewModuleLogger(log.Storage).With("path", dir)

	if cacheMiB < 16 {
		cacheMiB = 16
	}
	if numHandles < 16 {
		numHandles = 16
	}
	logger.Info("opening leveldb store", "cacheMiB", cacheMiB, "numHandles", numHandles)

	db, err := leveldb.OpenFile(dir, ldbOptions(cacheMiB, numHandles))
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		logger.Warn("recovering corrupted leveldb store")
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	ldb := &levelDB{fn: dir, db: db, log: logger}
	ldb.meter("chainkit/storagedb/")
	return ldb, nil
}

func (db *levelDB) Put(key, value []byte) error { return db.db.Put(key, value, nil) }
func (db *levelDB) Has(key []byte) (bool, error) { return db.db.Has(key, nil) }
func (db *levelDB) Get(key []byte) ([]byte, error) { return db.db.Get(key, nil) }
func (db *levelDB) Delete(key []byte) error { return db.db.Delete(key, nil) }

func (db *levelDB) NewIterator() iterator.Iterator { return db.db.NewIterator(nil, nil) }

func (db *levelDB) NewIteratorWithPrefix(prefix []byte) iterator.Iterator {
	return db.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (db *levelDB) NewBatch() Batch { return &ldbBatch{db: db.db, b: new(leveldb.Batch)} }

func (db *levelDB) Close() {
	db.quitLock.Lock()
	defer db.quitLock.Unlock()

	if db.quitChan != nil {
		errc := make(chan error)
		db.quitChan <- errc
		if err := <-errc; err != nil {
			db.log.Error("metrics collection failed", "err", err)
		}
		db.quitChan = nil
	}
	if err := db.db.Close(); err != nil {
		db.log.Error("failed to close leveldb store", "err", err)
	}
}

// meter wires the teacher's compaction/IO meters into the registered set, and
// starts the background collector only when metrics are enabled.
func (db *levelDB) meter(prefix string) {
	db.compTimeMeter = metrics.NewRegisteredMeter(prefix+"compaction/time", nil)
	db.compReadMeter = metrics.NewRegisteredMeter(prefix+"compaction/read", nil)
	db.compWriteMeter = metrics.NewRegisteredMeter(prefix+"compaction/write", nil)
	db.diskReadMeter = metrics.NewRegisteredMeter(prefix+"disk/read", nil)
	db.diskWriteMeter = metrics.NewRegisteredMeter(prefix+"disk/write", nil)

	if !metrics.Enabled {
		return
	}

	db.quitLock.Lock()
	db.quitChan = make(chan chan error)
	db.quitLock.Unlock()

	go db.collect(3 * time.Second)
}

func (db *levelDB) collect(refresh time.Duration) {
	s := new(leveldb.DBStats)

	var prevCompRead, prevCompWrite int64
	var prevCompTime time.Duration
	var prevRead, prevWrite uint64

	var errc chan error
	var merr error

collecting:
	for {
		merr = db.db.Stats(s)
		if merr != nil {
			break
		}

		var currCompRead, currCompWrite int64
		var currCompTime time.Duration
		for i := range s.LevelDurations {
			currCompTime += s.LevelDurations[i]
			currCompRead += s.LevelRead[i]
			currCompWrite += s.LevelWrite[i]
		}

		db.compTimeMeter.Mark(int64(currCompTime.Seconds() - prevCompTime.Seconds()))
		db.compReadMeter.Mark(currCompRead - prevCompRead)
		db.compWriteMeter.Mark(currCompWrite - prevCompWrite)
		prevCompTime, prevCompRead, prevCompWrite = currCompTime, currCompRead, currCompWrite

		db.diskReadMeter.Mark(int64(s.IORead - prevRead))
		db.diskWriteMeter.Mark(int64(s.IOWrite - prevWrite))
		prevRead, prevWrite = s.IORead, s.IOWrite

		select {
		case errc = <-db.quitChan:
			break collecting
		case <-time.After(refresh):
		}
	}

	if errc == nil {
		errc = <-db.quitChan
	}
	errc <- merr
}

type ldbBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *ldbBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

func (b *ldbBatch) Write() error    { return b.db.Write(b.b, nil) }
func (b *ldbBatch) ValueSize() int  { return b.size }
func (b *ldbBatch) Reset()          { b.b.Reset(); b.size = 0 }
