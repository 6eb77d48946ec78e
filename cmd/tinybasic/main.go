// Command tinybasic runs the interactive interpreter described in
// SPEC_FULL.md: a line-numbered BASIC dialect sized for memory-constrained
// hosts, built around a single fixed-size arena shared by program text,
// variables, and the FOR/GOSUB/expression stack.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	basic "tinybasic"
	"tinybasic/internal/flushio"
	"tinybasic/internal/lineio"
	"tinybasic/internal/logio"
)

func main() {
	var (
		arenaSize uint
		timeout   time.Duration
		trace     bool
		dump      bool
		load      string
	)
	flag.UintVar(&arenaSize, "arena-size", 4096, "interpreter memory size in bytes")
	flag.DurationVar(&timeout, "timeout", 0, "run deadline, 0 for none")
	flag.BoolVar(&trace, "trace", false, "enable statement trace logging")
	flag.BoolVar(&dump, "dump", false, "print an arena dump after the run ends")
	flag.StringVar(&load, "load", "", "preload a program from a file before the interactive prompt")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	var in lineio.Queue
	if load != "" {
		f, err := os.Open(load)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		defer f.Close()
		in.In = append(in.In, f)
	}
	in.In = append(in.In, os.Stdin)

	// broke is set by the SIGINT watcher below and polled by the
	// dispatcher between statements (spec §5's break key).
	var broke int32
	breakPoll := func() bool { return atomic.LoadInt32(&broke) != 0 }

	opts := []basic.Option{
		basic.WithArenaSize(arenaSize),
		basic.WithInput(&in),
		basic.WithOutput(flushio.NewWriteFlusher(os.Stdout)),
		basic.WithBreakPoll(breakPoll),
	}
	if trace {
		opts = append(opts, basic.WithLogf(log.Leveledf("TRACE")))
	}

	it, err := basic.New(opts...)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	if dump {
		lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
		defer lw.Close()
		defer basic.NewDumper(it, lw).Dump()
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	done := make(chan struct{})

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		select {
		case <-sigCh:
			atomic.StoreInt32(&broke, 1)
		case <-egctx.Done():
		case <-done:
		}
		return nil
	})
	eg.Go(func() error {
		defer close(done)
		return it.Run(egctx)
	})

	log.ErrorIf(eg.Wait())
}
