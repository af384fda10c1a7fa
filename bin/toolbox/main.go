package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"toolbox/mconf"
	"toolbox/table"
	"toolbox/tagexpr"
	"toolbox/tags"
)

// func usage {{{

func usage() {
	fmt.Printf("usage: %s\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(-1)
} // }}}

// type toolbox struct {{{

type toolbox struct {
	l zerolog.Logger

	// -rule mode.
	rule    string
	tagList string

	// -conf mode.
	conf        string
	watch       bool
	markdown    bool
	skipMissing bool
	raw         bool
	interval    time.Duration

	debug bool
} // }}}

// func main {{{

func main() {
	// Set the time logging format
	zerolog.TimeFieldFormat = time.RFC3339

	tb := &toolbox{}

	tb.l = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Lets load our flags.
	flag.StringVar(&tb.rule, "rule", "", "Tag expression to evaluate against -tags")
	flag.StringVar(&tb.tagList, "tags", "", "Comma-separated tags for -rule")
	flag.StringVar(&tb.conf, "conf", "", "Comma-separated configuration sources: a file path, ENV:PREFIX or PG:uri#table")
	flag.BoolVar(&tb.watch, "watch", false, "Keep watching the -conf sources and log changes")
	flag.BoolVar(&tb.markdown, "markdown", false, "Render the -conf result as Markdown instead of ASCII")
	flag.BoolVar(&tb.skipMissing, "skip-missing", false, "Tolerate -conf sources that are not there")
	flag.BoolVar(&tb.raw, "raw", false, "Keep ini, environment and database values as raw strings")
	flag.DurationVar(&tb.interval, "interval", mconf.DefaultInterval, "Poll interval for -watch")
	flag.BoolVar(&tb.debug, "debug", false, "Log at debug level")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if tb.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	switch {
	case tb.rule != "":
		tb.evalRule()
	case tb.conf != "":
		tb.runConf()
	default:
		usage()
	}
} // }}}

// func toolbox.evalRule {{{

// Evaluates -rule against -tags and prints the verdict.
func (tb *toolbox) evalRule() {
	ts := tags.Tags(strings.Split(tb.tagList, ",")).Fix()

	ok, err := tagexpr.Evaluate(tb.rule, ts)
	if err != nil {
		tb.l.Err(err).Str("rule", tb.rule).Msg("Bad rule")
		os.Exit(-1)
	}

	fmt.Println(ok)
} // }}}

// func toolbox.runConf {{{

// Builds the source chain from -conf and either renders it once or
// keeps watching it.
func (tb *toolbox) runConf() {
	var sources []mconf.Source

	for _, spec := range strings.Split(tb.conf, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		sources = append(sources, mconf.Parse(spec))
	}

	if len(sources) == 0 {
		usage()
	}

	r := mconf.New(mconf.Config{
		SkipMissing: tb.skipMissing,
		NoConvert:   tb.raw,
		Logger:      &tb.l,
	}, sources...)

	if tb.watch {
		tb.watchConf(r)
		r.Close()
		return
	}

	m, err := r.Resolve()
	if err != nil {
		tb.l.Err(err).Msg("resolve")
		r.Close()
		os.Exit(-1)
	}

	fmt.Print(tb.render(m))
	r.Close()
} // }}}

// func toolbox.watchConf {{{

// Renders the chain once, then sits on it until a signal, rendering
// every accepted change.
func (tb *toolbox) watchConf(r *mconf.Resolver) {
	fl := tb.l.With().Str("func", "watchConf").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := r.Watch(ctx, mconf.WatchConf{
		Interval: tb.interval,
		Notify: func(m map[string]any) {
			fl.Info().Int("keys", len(m)).Msg("Configuration changed")
			fmt.Print(tb.render(m))
		},
	})
	if err != nil {
		fl.Err(err).Msg("watch")
		os.Exit(-1)
	}

	fmt.Print(tb.render(w.Current()))

	tb.Wait()

	w.Stop()
} // }}}

// func toolbox.render {{{

// The flat configuration as a two-column table, keys sorted.
func (tb *toolbox) render(m map[string]any) string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	rows := make([][]any, 0, len(keys))

	for _, k := range keys {
		rows = append(rows, []any{k, m[k]})
	}

	cols := []table.Column{
		{Name: "Key"},
		{Name: "Value"},
	}

	if tb.markdown {
		return table.RenderMarkdown(cols, rows)
	}

	return table.RenderASCII(cols, rows)
} // }}}

// func toolbox.Wait {{{

// Does not return until a signal such as SIGTERM or SIGINT.
func (tb *toolbox) Wait() {
	fl := tb.l.With().Str("func", "Wait").Logger()

	// And now we just loop waiting for a signal.
	endSig := make(chan os.Signal, 1)
	signal.Notify(endSig, os.Interrupt, syscall.SIGTERM)

	fl.Info().Msg("Waiting on signal")

	// Wait for a signal ...
	<-endSig

	signal.Stop(endSig)
} // }}}
