/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Fri Dec 29 09:03:12 2017 mstenber
 * Last modified: Mon Feb 11 16:31:52 2019 mstenber
 * Edit time:     11 min
 *
 */

package util

import "encoding/binary"

func ConcatBytes(bytes ...[]byte) []byte {
	nl := 0
	for _, b := range bytes {
		nl += len(b)
	}
	r := make([]byte, 0, nl)
	for _, b := range bytes {
		r = append(r, b...)
	}
	return r
}

// Uint64Bytes encodes n big-endian, so that byte-wise ordering of
// keys matches the numeric ordering of block ids.
func Uint64Bytes(n uint64) []byte {
	nb := make([]byte, 8)
	binary.BigEndian.PutUint64(nb, n)
	return nb
}

// BytesUint64 is the inverse of Uint64Bytes.
func BytesUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
