/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Mon Feb 18 16:10:02 2019 mstenber
 * Last modified: Tue Feb 19 11:47:20 2019 mstenber
 * Edit time:     71 min
 *
 */

// bitmap is a free-space allocator over a contiguous run of blocks.
//
// Each block holds WordsPerBlock uint64 words in host byte order; bit
// k of word w in the o'th block is unit o*BitsPerBlock + w*64 + k. A
// set bit means the unit is in use. All access goes through the block
// cache, so the bitmap is persisted whenever the cache is flushed.
package bitmap

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/fingon/go-blkcache/bcache"
	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
)

const (
	WordsPerBlock = blockdev.BlockSize / 8
	BitsPerBlock  = blockdev.BlockSize * 8
)

type bitmapBlock [WordsPerBlock]uint64

type Bitmap struct {
	// StartBlockId is the first block of the bitmap on the device.
	StartBlockId uint64

	// Blocks is the number of consecutive bitmap blocks.
	Blocks uint64

	// Cache used to reach the blocks; nil means bcache.Default().
	Cache *bcache.Manager
}

func New(startBlockId, blocks uint64, cache *bcache.Manager) *Bitmap {
	return &Bitmap{StartBlockId: startBlockId, Blocks: blocks, Cache: cache}
}

func (self *Bitmap) cache() *bcache.Manager {
	if self.Cache == nil {
		return bcache.Default()
	}
	return self.Cache
}

// Capacity is the number of units the bitmap tracks.
func (self *Bitmap) Capacity() uint64 {
	return self.Blocks * BitsPerBlock
}

func decompose(bit uint64) (blockOffset uint64, word, shift int) {
	blockOffset = bit / BitsPerBlock
	rest := bit % BitsPerBlock
	return blockOffset, int(rest / 64), int(rest % 64)
}

// acquire returns the handle of the bitmap block at blockOffset.
func (self *Bitmap) acquire(device blockdev.BlockDevice, blockOffset uint64) (*bcache.Handle, error) {
	id := self.StartBlockId + blockOffset
	h, err := self.cache().Acquire(id, device)
	if err != nil {
		return nil, errors.Wrapf(err, "bitmap block %d", blockOffset)
	}
	return h, nil
}

func (self *Bitmap) checkBit(bit uint64) {
	if bit >= self.Capacity() {
		mlog.Panicf("bitmap/bitmap", "bit %d out of range (capacity %d)", bit, self.Capacity())
	}
}

// Allocate marks the lowest free unit used and returns it. When every
// unit is in use, ok is false and err nil.
func (self *Bitmap) Allocate(device blockdev.BlockDevice) (bit uint64, ok bool, err error) {
	for o := uint64(0); o < self.Blocks && !ok; o++ {
		var h *bcache.Handle
		h, err = self.acquire(device, o)
		if err != nil {
			return
		}
		func() {
			defer h.Release()
			l := h.Lock()
			defer l.Unlock()
			words := bcache.ViewAs[bitmapBlock](l, 0)
			for w, v := range words {
				if v == ^uint64(0) {
					continue
				}
				k := bits.TrailingZeros64(^v)
				bcache.ViewAsMut[bitmapBlock](l, 0)[w] = v | (1 << uint(k))
				bit = o*BitsPerBlock + uint64(w)*64 + uint64(k)
				ok = true
				return
			}
		}()
	}
	mlog.Printf2("bitmap/bitmap", "b.Allocate => %v %v", bit, ok)
	return
}

// Deallocate marks bit free again. Freeing a free or nonexistent unit
// is a fatal bookkeeping error.
func (self *Bitmap) Deallocate(device blockdev.BlockDevice, bit uint64) error {
	mlog.Printf2("bitmap/bitmap", "b.Deallocate %v", bit)
	self.checkBit(bit)
	o, w, k := decompose(bit)
	h, err := self.acquire(device, o)
	if err != nil {
		return err
	}
	defer h.Release()
	l := h.Lock()
	defer l.Unlock()
	words := bcache.ViewAs[bitmapBlock](l, 0)
	mask := uint64(1) << uint(k)
	if words[w]&mask == 0 {
		mlog.Panicf("bitmap/bitmap", "double free of bit %d", bit)
	}
	bcache.ViewAsMut[bitmapBlock](l, 0)[w] &^= mask
	return nil
}

// IsAllocated reports whether bit is in use.
func (self *Bitmap) IsAllocated(device blockdev.BlockDevice, bit uint64) (bool, error) {
	self.checkBit(bit)
	o, w, k := decompose(bit)
	h, err := self.acquire(device, o)
	if err != nil {
		return false, err
	}
	defer h.Release()
	return bcache.Read(h, 0, func(words *bitmapBlock) bool {
		return words[w]&(uint64(1)<<uint(k)) != 0
	}), nil
}

// CountAllocated returns the number of units in use.
func (self *Bitmap) CountAllocated(device blockdev.BlockDevice) (uint64, error) {
	count := uint64(0)
	for o := uint64(0); o < self.Blocks; o++ {
		h, err := self.acquire(device, o)
		if err != nil {
			return 0, err
		}
		count += bcache.Read(h, 0, func(words *bitmapBlock) uint64 {
			n := 0
			for _, v := range words {
				n += bits.OnesCount64(v)
			}
			return uint64(n)
		})
		h.Release()
	}
	return count, nil
}

// Reset marks every unit free.
func (self *Bitmap) Reset(device blockdev.BlockDevice) error {
	mlog.Printf2("bitmap/bitmap", "b.Reset %d blocks", self.Blocks)
	for o := uint64(0); o < self.Blocks; o++ {
		h, err := self.acquire(device, o)
		if err != nil {
			return err
		}
		bcache.Modify(h, 0, func(words *bitmapBlock) bool {
			*words = bitmapBlock{}
			return true
		})
		h.Release()
	}
	return nil
}
