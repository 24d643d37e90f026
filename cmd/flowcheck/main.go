// Command flowcheck compiles flow files and prints their states, as text or
// as a Graphviz digraph. With -ticks it also starts each flow headless and
// prints the transitions it takes on its own.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/milk9111/appflow/app"
	"github.com/milk9111/appflow/flow"
	"github.com/milk9111/appflow/fsm"
	"github.com/milk9111/appflow/logger"
	"github.com/milk9111/appflow/prefabs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("flowcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "output format: text or dot")
	ticks := fs.Int("ticks", 0, "start each flow and update it this many times")
	level := fs.String("log-level", "warn", "debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: flowcheck [flags] [flow.yaml ...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	write, ok := writers[*format]
	if !ok {
		fmt.Fprintf(stderr, "flowcheck: unknown format %q\n", *format)
		return 2
	}
	lvl, err := logger.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(stderr, "flowcheck:", err)
		return 2
	}
	log := logger.New(logger.WithLevel(lvl), logger.WithOutput(stderr), logger.WithAttr(logger.Component("flowcheck")))

	files := fs.Args()
	if len(files) == 0 {
		files = prefabs.Flows()
	}
	catalog := app.Register(flow.NewCatalog(flow.WithLogger(log)), app.Headless())

	failed := 0
	for _, file := range files {
		f, err := catalog.Load(file)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", file, err)
			failed++
			continue
		}
		write(stdout, f)
		if *ticks > 0 {
			if err := simulate(stdout, f, *ticks); err != nil {
				fmt.Fprintf(stderr, "%s: %v\n", file, err)
				failed++
			}
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

var writers = map[string]func(io.Writer, *flow.Flow){
	"text": writeText,
	"dot":  writeDot,
}

func writeText(w io.Writer, f *flow.Flow) {
	fmt.Fprintf(w, "%s: %d states, initial %s\n", f.Spec.Name, len(f.Spec.States), f.Spec.Initial)
	for _, s := range f.Spec.States {
		types := make([]string, 0, len(s.Behaviours))
		for _, b := range s.Behaviours {
			types = append(types, b.Type)
		}
		fmt.Fprintf(w, "  %s [%s]", s.Name, strings.Join(types, " "))
		if st, err := f.Machine.GetState(s.Name); err == nil && len(st.Transitions()) > 0 {
			fmt.Fprintf(w, " -> %s", strings.Join(st.Transitions(), ", "))
		}
		fmt.Fprintln(w)
	}
}

func writeDot(w io.Writer, f *flow.Flow) {
	fmt.Fprintf(w, "digraph %q {\n", f.Spec.Name)
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintf(w, "  %q [shape=doublecircle];\n", f.Spec.Initial)
	for _, id := range f.Machine.States() {
		st, err := f.Machine.GetState(id)
		if err != nil {
			continue
		}
		for _, to := range st.Transitions() {
			fmt.Fprintf(w, "  %q -> %q;\n", id, to)
		}
	}
	fmt.Fprintln(w, "}")
}

// simulate runs f without input for n updates and prints every transition.
func simulate(w io.Writer, f *flow.Flow, n int) error {
	m := f.Machine
	tick := 0
	m.Observe(func(t fsm.Transition[string]) {
		fmt.Fprintf(w, "  tick %d: %s\n", tick, t)
	})
	if err := f.Start(); err != nil {
		return err
	}
	for tick = 1; tick <= n; tick++ {
		if err := m.Update(); err != nil {
			return err
		}
	}
	cur, _ := m.Current()
	fmt.Fprintf(w, "  after %d ticks: %s\n", n, cur)
	tick = n
	return m.Stop()
}
