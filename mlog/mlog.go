/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Dec 30 13:41:33 2017 mstenber
 * Last modified: Tue Feb 12 10:41:09 2019 mstenber
 * Edit time:     131 min
 *
 */

// mlog is maybe-log, a small wrapper of the standard 'log' package
// for tracing the block cache and its users.
//
// Output is chosen with a regular expression matched against the
// source file (or the explicit topic given to Printf2); it comes from
// the MLOG environment variable or the -mlog flag. By default
// everything is off, and disabled calls cost one atomic load.
//
// Call stack depth is used to indent nested calls, and the goroutine
// id is prepended so that interleaved cache users can be told apart.
package mlog

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fingon/go-blkcache/util/gid"
)

const (
	stateUninitialized int32 = iota
	stateInitializing
	stateDisabled
	stateEnabled
)

const maxDepth = 100

var logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)

// status may be read without mutex, using atomic access
var status = stateUninitialized

var mutex sync.Mutex

// Rest of the state is protected by mutex
var flagPattern *string
var pattern string
var patternRegexp *regexp.Regexp
var topicEnabled map[string]bool
var minDepth int
var callers []uintptr
var dumpGids = true

func init() {
	flagPattern = flag.String("mlog", "", "Enable logging based on the given file/topic regular expression")
	Reset()
}

// Reset returns the module to its factory default state. The next
// log call re-reads MLOG (or -mlog).
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	atomic.StoreInt32(&status, stateUninitialized)
	minDepth = maxDepth
	callers = make([]uintptr, maxDepth)
}

// IsEnabled can be used to check if mlog is in use at all before
// doing something expensive.
func IsEnabled() bool {
	return atomic.LoadInt32(&status) != stateDisabled
}

// SetLogger overrides the output logger. The returned function
// restores the previous one.
func SetLogger(l *log.Logger) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	old := logger
	logger = l
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = old
	}
}

// SetPattern sets the pattern by hand, overriding the environment.
// The returned function restores the previous pattern.
func SetPattern(p string) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	old := pattern
	usePattern(p)
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		usePattern(old)
	}
}

// SetGoroutineIds chooses whether goroutine ids prefix the output.
func SetGoroutineIds(value bool) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	old := dumpGids
	dumpGids = value
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		dumpGids = old
	}
}

func usePattern(p string) {
	pattern = p
	minDepth = maxDepth
	if p == "" {
		atomic.StoreInt32(&status, stateDisabled)
		return
	}
	patternRegexp = regexp.MustCompile(p)
	topicEnabled = make(map[string]bool)
	atomic.StoreInt32(&status, stateEnabled)
}

func initialize() {
	if !atomic.CompareAndSwapInt32(&status, stateUninitialized, stateInitializing) {
		return
	}
	p := os.Getenv("MLOG")
	if *flagPattern != "" {
		p = *flagPattern
	}
	usePattern(p)
}

// Printf is drop-in replacement of log.Printf. It pays for
// runtime.Caller whenever mlog is enabled at all; Printf2 does not.
func Printf(format string, args ...interface{}) {
	if atomic.LoadInt32(&status) == stateDisabled {
		return
	}
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	Printf2(file, format, args...)
}

// Printf2 logs with an explicit topic (conventionally "package/file")
// that is matched against the pattern.
func Printf2(topic string, format string, args ...interface{}) {
	st := atomic.LoadInt32(&status)
	if st == stateDisabled {
		return
	}
	mutex.Lock()
	defer mutex.Unlock()
	if st < stateDisabled {
		initialize()
		if atomic.LoadInt32(&status) != stateEnabled {
			return
		}
	}
	if !matches(topic) {
		return
	}
	depth := runtime.Callers(1, callers)
	if depth < minDepth {
		minDepth = depth
	}
	depth -= minDepth
	if depth > 0 {
		format = strings.Repeat(".", depth) + format
	}
	if dumpGids {
		format = fmt.Sprintf("%8d %s", gid.GetGoroutineID(), format)
	}
	logger.Printf(format, args...)
}

func matches(topic string) bool {
	enabled, ok := topicEnabled[topic]
	if !ok {
		enabled = patternRegexp.MatchString(topic)
		topicEnabled[topic] = enabled
	}
	return enabled
}

// Panicf formats the message, logs it under the topic if the topic is
// enabled, and panics with it. It is used for broken contracts that
// must never be turned into recoverable errors.
func Panicf(topic string, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	Printf2(topic, "PANIC %s", msg)
	panic(msg)
}
