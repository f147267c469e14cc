/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 23 15:10:01 2017 mstenber
 * Last modified: Thu Feb 14 12:58:20 2019 mstenber
 * Edit time:     171 min
 *
 */

package badger

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
	"github.com/fingon/go-blkcache/util"
)

var blockPrefix = []byte("b")

// badgerDevice provides on-disk storage in badger:
//
// - key prefix 'b' + big-endian block id -> (codec-encoded) block data
type badgerDevice struct {
	blockdev.KVDeviceBase
	db *badger.DB
}

var _ blockdev.Device = &badgerDevice{}

// mlogLogger forwards badger's own chatter to mlog.
type mlogLogger struct{}

func (mlogLogger) Errorf(format string, args ...interface{}) {
	mlog.Printf2("blockdev/badger/db", "ERROR "+format, args...)
}

func (mlogLogger) Warningf(format string, args ...interface{}) {
	mlog.Printf2("blockdev/badger/db", "WARNING "+format, args...)
}

func (mlogLogger) Infof(format string, args ...interface{}) {
	mlog.Printf2("blockdev/badger/db", format, args...)
}

func (mlogLogger) Debugf(format string, args ...interface{}) {
	mlog.Printf2("blockdev/badger/db", format, args...)
}

func NewBadgerDevice(config blockdev.Configuration) (blockdev.Device, error) {
	self := &badgerDevice{}
	self.Configuration = config
	opts := badger.DefaultOptions(config.Directory).WithLogger(mlogLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "badger.Open %s", config.Directory)
	}
	mlog.Printf2("blockdev/badger/badger", "NewBadgerDevice %v", config.Directory)
	self.db = db
	return self, nil
}

func (self *badgerDevice) Close() error {
	return self.db.Close()
}

func (self *badgerDevice) key(id uint64) []byte {
	return util.ConcatBytes(blockPrefix, self.Key(id))
}

func (self *badgerDevice) ReadBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	var value []byte
	err := self.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(self.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "reading block %d", id)
	}
	return self.DecodeBlock(id, value, buf)
}

func (self *badgerDevice) WriteBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	value, err := self.EncodeBlock(id, buf)
	if err != nil {
		return err
	}
	mlog.Printf2("blockdev/badger/badger", "bad.WriteBlock %d (%d b)", id, len(value))
	err = self.db.Update(func(txn *badger.Txn) error {
		return txn.Set(self.key(id), value)
	})
	if err != nil {
		return errors.Wrapf(err, "storing block %d", id)
	}
	return nil
}
