/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Fri Feb 15 11:41:50 2019 mstenber
 * Last modified: Mon Feb 18 13:20:02 2019 mstenber
 * Edit time:     63 min
 *
 */

package bcache

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/mlog"
)

// Typed views reinterpret the block data in place. T must be a
// fixed-size, pointer-free type (fixed width integers, floats, bools,
// arrays and structs of those), the view must fit in the block, and
// the offset must be aligned for T. Violations panic: they mean the
// on-disk layout description is broken.

// reflect.Type -> bool
var plainTypes sync.Map

func isPlain(t reflect.Type) bool {
	if v, ok := plainTypes.Load(t); ok {
		return v.(bool)
	}
	p := checkPlain(t)
	plainTypes.Store(t, p)
	return p
}

func checkPlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return checkPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !checkPlain(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	// int, uint and uintptr vary by platform; pointers, slices,
	// maps, strings etc. can not live on disk
	return false
}

func viewAt[T any](e *Entry, offset int) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if offset < 0 || offset >= blockdev.BlockSize || offset+size > blockdev.BlockSize {
		mlog.Panicf("bcache/view", "view of %d bytes at offset %d exceeds block %d",
			size, offset, e.blockId)
	}
	if align := int(unsafe.Alignof(zero)); offset%align != 0 {
		mlog.Panicf("bcache/view", "offset %d is not %d-aligned", offset, align)
	}
	if t := reflect.TypeOf((*T)(nil)).Elem(); !isPlain(t) {
		mlog.Panicf("bcache/view", "%v can not be viewed in a block", t)
	}
	return (*T)(unsafe.Add(e.base(), offset))
}

// ViewAs returns a read-only view of T at offset; writes through it
// are not tracked and must not be done.
func ViewAs[T any](l *Locked, offset int) *T {
	return viewAt[T](l.live(), offset)
}

// ViewAsMut returns a mutable view of T at offset. The block is
// considered dirty from now on, whether it is written or not.
func ViewAsMut[T any](l *Locked, offset int) *T {
	e := l.live()
	v := viewAt[T](e, offset)
	e.dirty = true
	return v
}

// Read calls f with a read-only view of T at offset, holding the
// entry lock for the duration of the call.
func Read[T, V any](h *Handle, offset int, f func(*T) V) V {
	l := h.Lock()
	defer l.Unlock()
	return f(ViewAs[T](l, offset))
}

// Modify calls f with a mutable view of T at offset, holding the
// entry lock for the duration of the call. The block becomes dirty.
func Modify[T, V any](h *Handle, offset int, f func(*T) V) V {
	l := h.Lock()
	defer l.Unlock()
	return f(ViewAsMut[T](l, offset))
}
