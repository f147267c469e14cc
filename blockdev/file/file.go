/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 15:44:41 2018 mstenber
 * Last modified: Thu Feb 14 12:02:56 2019 mstenber
 * Edit time:     96 min
 *
 */

package file

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
)

// ImageName is the name of the image file within the directory.
const ImageName = "blocks.img"

// fileDevice stores the blocks in a single flat image file; block n
// lives at offset n * BlockSize. Reads past the end of the file are
// zero; writes past it grow the file.
//
// Codecs are not supported, as the layout needs fixed-size blocks.
type fileDevice struct {
	blockdev.Configuration
	f *os.File
}

var _ blockdev.Device = &fileDevice{}

func NewFileDevice(config blockdev.Configuration) (blockdev.Device, error) {
	if config.Codec != nil {
		return nil, blockdev.ErrCodecNotSupported
	}
	if err := os.MkdirAll(config.Directory, 0700); err != nil {
		return nil, errors.Wrap(err, "creating image directory")
	}
	path := filepath.Join(config.Directory, ImageName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	mlog.Printf2("blockdev/file/file", "NewFileDevice %v", path)
	return &fileDevice{Configuration: config, f: f}, nil
}

func (self *fileDevice) Close() error {
	mlog.Printf2("blockdev/file/file", "fd.Close")
	if err := self.f.Sync(); err != nil {
		self.f.Close()
		return errors.Wrap(err, "syncing image")
	}
	return self.f.Close()
}

func (self *fileDevice) ReadBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	n, err := self.f.ReadAt(buf, int64(id)*blockdev.BlockSize)
	if err == io.EOF {
		// sparse tail of the image
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		err = nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading block %d", id)
	}
	return nil
}

func (self *fileDevice) WriteBlock(id uint64, buf []byte) error {
	if err := self.CheckAccess(id, buf); err != nil {
		return err
	}
	mlog.Printf2("blockdev/file/file", "fd.WriteBlock %d", id)
	if _, err := self.f.WriteAt(buf, int64(id)*blockdev.BlockSize); err != nil {
		return errors.Wrapf(err, "writing block %d", id)
	}
	return nil
}
