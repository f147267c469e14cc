/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Dec 30 14:12:08 2017 mstenber
 * Last modified: Tue Feb 12 10:55:31 2019 mstenber
 * Edit time:     24 min
 *
 */

package mlog

import (
	"bytes"
	"log"
	"testing"

	"github.com/stvp/assert"
)

func capture(pattern string) (*bytes.Buffer, func()) {
	var b bytes.Buffer
	u1 := SetLogger(log.New(&b, "", 0))
	u2 := SetPattern(pattern)
	u3 := SetGoroutineIds(false)
	return &b, func() {
		u3()
		u2()
		u1()
	}
}

func TestMlog(t *testing.T) {
	add := func(pattern string, outputted bool) {
		t.Run(pattern, func(t *testing.T) {
			b, undo := capture(pattern)
			defer undo()
			Printf("foo %s", "bar")
			assert.Equal(t, b.Len() > 0, outputted)
			if outputted {
				assert.Equal(t, b.String(), "foo bar\n")
			}
		})
	}
	add("", false)
	add("zzzglorb", false)
	add("mlog_test", true)
}

func TestPrintf2Topic(t *testing.T) {
	b, undo := capture("^bcache/")
	defer undo()
	Printf2("bitmap/bitmap", "no")
	Printf2("bcache/manager", "yes %d", 1)
	assert.Equal(t, b.String(), "yes 1\n")
}

func TestMlogRecursion(t *testing.T) {
	b, undo := capture(".")
	defer undo()
	Printf("d0")
	func() {
		Printf("d1")
		func() {
			Printf("d2")
		}()
		Printf("D1")
	}()
	Printf("D0")
	assert.Equal(t, b.String(), "d0\n.d1\n..d2\n.D1\nD0\n")
}

func TestPanicf(t *testing.T) {
	b, undo := capture("fault")
	defer undo()
	var got interface{}
	func() {
		defer func() {
			got = recover()
		}()
		Panicf("fault", "broken %d", 42)
	}()
	assert.Equal(t, got, "broken 42")
	assert.Equal(t, b.String(), "PANIC broken 42\n")
}

func BenchmarkMlogDisabled(b *testing.B) {
	defer SetPattern("")()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Printf2("x", "y", 42)
	}
}

func BenchmarkMlogNotMatching(b *testing.B) {
	defer SetPattern("zzglorb")()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Printf2("bcache/manager", "x")
	}
}
