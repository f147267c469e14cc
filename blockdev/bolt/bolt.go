/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 22:49:15 2018 mstenber
 * Last modified: Thu Feb 14 12:31:48 2019 mstenber
 * Edit time:     62 min
 *
 */

package bolt

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
)

// DatabaseName is the name of the bbolt file within the directory.
const DatabaseName = "blocks.bolt"

var blocksBucket = []byte("blocks")

// boltDevice provides on-disk storage in a single bbolt bucket:
//
// - big-endian block id -> (codec-encoded) block data
//
// Missing keys are blocks that were never written.
type boltDevice struct {
	blockdev.KVDeviceBase

	db *bbolt.DB
}

var _ blockdev.Device = &boltDevice{}

func NewBoltDevice(config blockdev.Configuration) (blockdev.Device, error) {
	self := &boltDevice{}
	self.Configuration = config
	if err := os.MkdirAll(config.Directory, 0700); err != nil {
		return nil, errors.Wrap(err, "creating bolt directory")
	}
	path := filepath.Join(config.Directory, DatabaseName)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "bbolt.Open %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating bucket")
	}
	mlog.Printf2("blockdev/bolt/bolt", "NewBoltDevice %v", path)
	self.db = db
	return self, nil
}

func (self *boltDevice) Close() error {
	mlog.Printf2("blockdev/bolt/bolt", "bbolt.Close")
	return self.db.Close()
}

func (self *boltDevice) ReadBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	// the value is only valid within the transaction
	return self.db.View(func(tx *bbolt.Tx) error {
		return self.DecodeBlock(id, tx.Bucket(blocksBucket).Get(self.Key(id)), buf)
	})
}

func (self *boltDevice) WriteBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	value, err := self.EncodeBlock(id, buf)
	if err != nil {
		return err
	}
	mlog.Printf2("blockdev/bolt/bolt", "bbolt.WriteBlock %d (%d b)", id, len(value))
	err = self.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(self.Key(id), value)
	})
	if err != nil {
		return errors.Wrapf(err, "storing block %d", id)
	}
	return nil
}
