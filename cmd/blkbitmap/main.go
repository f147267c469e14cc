/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Tue Feb 19 14:20:12 2019 mstenber
 * Last modified: Tue Feb 19 16:41:08 2019 mstenber
 * Edit time:     63 min
 *
 */

package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/fingon/go-blkcache/bcache"
	"github.com/fingon/go-blkcache/bitmap"
	"github.com/fingon/go-blkcache/blockdev"
	"github.com/fingon/go-blkcache/config"
	"github.com/fingon/go-blkcache/mlog"
)

// session is one opened device with its cache and bitmap.
type session struct {
	config *config.Config
	device blockdev.Device
	cache  *bcache.Manager
	bitmap *bitmap.Bitmap
}

func openSession(path string) (*session, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	dev, err := c.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s device", c.Backend)
	}
	cache := c.NewManager()
	return &session{config: c, device: dev, cache: cache, bitmap: c.NewBitmap(cache)}, nil
}

func (self *session) close() error {
	err := self.cache.Close()
	mlog.Printf2("cmd/blkbitmap/main", "closing, cache %v", self.cache.Stats())
	if err2 := self.device.Close(); err == nil {
		err = err2
	}
	return err
}

func withSession(f func(*session, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) (err error) {
		s, err := openSession(ctx.String("config"))
		if err != nil {
			return err
		}
		defer func() {
			if err2 := s.close(); err == nil {
				err = err2
			}
		}()
		return f(s, ctx)
	}
}

func parseArgs(ctx *cli.Context, min int) ([]uint64, error) {
	if ctx.NArg() < min {
		return nil, errors.Errorf("%s needs at least %d argument(s)", ctx.Command.Name, min)
	}
	r := make([]uint64, ctx.NArg())
	for i, arg := range ctx.Args().Slice() {
		v, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number %q", arg)
		}
		r[i] = v
	}
	return r, nil
}

func (self *session) checkBit(bit uint64) error {
	if bit >= self.bitmap.Capacity() {
		return errors.Errorf("bit %d is out of range (capacity %d)", bit, self.bitmap.Capacity())
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blkbitmap",
		Usage: "inspect and change a block bitmap through the block cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file (BLKCACHE_* environment variables override it)",
				EnvVars: []string{"BLKCACHE_CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{{
			Name:  "format",
			Usage: "mark every unit free",
			Action: withSession(func(s *session, ctx *cli.Context) error {
				return s.bitmap.Reset(s.device)
			}),
		}, {
			Name:  "alloc",
			Usage: "allocate the lowest free unit(s) and print them",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Usage:   "number of units to allocate",
					Value:   1,
				},
			},
			Action: withSession(func(s *session, ctx *cli.Context) error {
				for i := 0; i < ctx.Int("count"); i++ {
					bit, ok, err := s.bitmap.Allocate(s.device)
					if err != nil {
						return err
					}
					if !ok {
						return errors.Errorf("bitmap full after %d allocation(s)", i)
					}
					fmt.Fprintln(ctx.App.Writer, bit)
				}
				return nil
			}),
		}, {
			Name:      "free",
			Usage:     "free the given units",
			ArgsUsage: "BIT...",
			Action: withSession(func(s *session, ctx *cli.Context) error {
				bits, err := parseArgs(ctx, 1)
				if err != nil {
					return err
				}
				for _, bit := range bits {
					if err := s.checkBit(bit); err != nil {
						return err
					}
					set, err := s.bitmap.IsAllocated(s.device, bit)
					if err != nil {
						return err
					}
					if !set {
						return errors.Errorf("bit %d is not allocated", bit)
					}
					if err := s.bitmap.Deallocate(s.device, bit); err != nil {
						return err
					}
				}
				return nil
			}),
		}, {
			Name:      "test",
			Usage:     "print whether the given units are allocated",
			ArgsUsage: "BIT...",
			Action: withSession(func(s *session, ctx *cli.Context) error {
				bits, err := parseArgs(ctx, 1)
				if err != nil {
					return err
				}
				for _, bit := range bits {
					if err := s.checkBit(bit); err != nil {
						return err
					}
					set, err := s.bitmap.IsAllocated(s.device, bit)
					if err != nil {
						return err
					}
					state := "free"
					if set {
						state = "allocated"
					}
					fmt.Fprintf(ctx.App.Writer, "%d %s\n", bit, state)
				}
				return nil
			}),
		}, {
			Name:  "stat",
			Usage: "print bitmap usage",
			Action: withSession(func(s *session, ctx *cli.Context) error {
				n, err := s.bitmap.CountAllocated(s.device)
				if err != nil {
					return err
				}
				capacity := s.bitmap.Capacity()
				fmt.Fprintf(ctx.App.Writer, "blocks: %d-%d\n",
					s.bitmap.StartBlockId, s.bitmap.StartBlockId+s.bitmap.Blocks-1)
				fmt.Fprintf(ctx.App.Writer, "capacity: %d\n", capacity)
				fmt.Fprintf(ctx.App.Writer, "allocated: %d\n", n)
				fmt.Fprintf(ctx.App.Writer, "free: %d\n", capacity-n)
				return nil
			}),
		}, {
			Name:      "dump",
			Usage:     "hex dump device blocks",
			ArgsUsage: "BLOCK...",
			Action: withSession(func(s *session, ctx *cli.Context) error {
				ids, err := parseArgs(ctx, 1)
				if err != nil {
					return err
				}
				for _, id := range ids {
					h, err := s.cache.Acquire(id, s.device)
					if err != nil {
						return err
					}
					data := bcache.Read(h, 0, func(b *[blockdev.BlockSize]byte) [blockdev.BlockSize]byte {
						return *b
					})
					h.Release()
					fmt.Fprintf(ctx.App.Writer, "block %d:\n%s", id, hex.Dump(data[:]))
				}
				return nil
			}),
		}},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
