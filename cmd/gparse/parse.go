package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	gparse "github.com/jayantk/jklol-sub002"
	"github.com/jayantk/jklol-sub002/arith"
	"github.com/jayantk/jklol-sub002/config"
	"github.com/jayantk/jklol-sub002/promcollector"
	"github.com/jayantk/jklol-sub002/search"
)

type parseFlags struct {
	strategy    string
	beam        int
	noLookahead bool
	world       string
	logLevel    string
	json        bool
	limit       int
	metrics     bool
	timings     bool
}

func newParseCmd(gf *globalFlags) *cobra.Command {
	var pf parseFlags

	cmd := &cobra.Command{
		Use:   "parse [flags] words...",
		Short: "Parse a sentence and print its grounded parses",
		Example: `  gparse parse one plus two
  gparse parse --world x=3 two times x
  gparse parse --strategy pipelined --json one_or_two plus one`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.load()
			if err != nil {
				return err
			}
			pf.apply(cmd, cfg)
			return runParse(cmd, cfg, &pf, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&pf.strategy, "strategy", config.StrategyInterleaved, "search strategy (interleaved|pipelined)")
	f.IntVar(&pf.beam, "beam", gparse.DefaultBeamSize, "beam size")
	f.BoolVar(&pf.noLookahead, "no-lookahead", false, "queue deterministic evaluation steps")
	f.StringVar(&pf.world, "world", "", "variable assignment, e.g. x=1,y=2")
	f.StringVar(&pf.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	f.BoolVar(&pf.json, "json", false, "print results as JSON")
	f.IntVarP(&pf.limit, "limit", "n", 0, "print at most n results")
	f.BoolVar(&pf.metrics, "metrics", false, "print metric counters after parsing")
	f.BoolVar(&pf.timings, "timings", false, "print search phase timings after parsing")
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (pf *parseFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("strategy") {
		cfg.Search.Strategy = pf.strategy
	}
	if f.Changed("beam") {
		cfg.Search.BeamSize = pf.beam
	}
	if f.Changed("no-lookahead") {
		cfg.Search.DisableLookahead = pf.noLookahead
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = pf.logLevel
	}
	if pf.metrics {
		cfg.Metrics.Enabled = true
	}
}

type resultJSON struct {
	Prob        float64 `json:"prob"`
	Score       float64 `json:"score"`
	Denotation  any     `json:"denotation"`
	World       string  `json:"world"`
	LogicalForm string  `json:"logical_form"`
	Span        string  `json:"span"`
}

func runParse(cmd *cobra.Command, cfg *config.Config, pf *parseFlags, words []string) error {
	opts, err := cfg.Options(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	lex, err := loadLexicon(cfg)
	if err != nil {
		return err
	}
	g, err := arith.NewGrammar(lex)
	if err != nil {
		return err
	}
	world, err := arith.ParseWorld(pf.world)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, gparse.WithMetricsCollector(promcollector.New(reg, cfg.Metrics.Namespace)))
	}
	var sw *search.Stopwatch
	if pf.timings {
		sw = search.NewStopwatch()
		opts = append(opts, gparse.WithTimer(sw))
	}

	p, err := gparse.New(g, arith.NewEvaluator(lex.Domain...), opts...)
	if err != nil {
		return err
	}
	results, err := p.Search(splitWords(words)...).
		Diagram(world).
		Limit(pf.limit).
		Execute(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if pf.json {
		err = printJSON(out, g, results)
	} else {
		err = printResults(out, g, results)
	}
	if err != nil {
		return err
	}
	if sw != nil {
		printTimings(cmd.ErrOrStderr(), sw)
	}
	if reg != nil {
		return printMetrics(cmd.ErrOrStderr(), reg)
	}
	return nil
}

// splitWords tokenizes arguments so that a quoted sentence is accepted too.
func splitWords(args []string) []string {
	return gparse.Tokenize(strings.Join(args, " "))
}

func logicalForm(g *arith.Grammar, r gparse.Result) string {
	if lf, ok := g.LogicalForm(r.Parse); ok {
		return fmt.Sprint(lf)
	}
	return "-"
}

func printResults(w io.Writer, g *arith.Grammar, results []gparse.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no parse")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROB\tDENOTATION\tWORLD\tLOGICAL FORM")
	for _, r := range results {
		fmt.Fprintf(tw, "%.6g\t%v\t%v\t%s\n", r.Prob, r.Denotation, r.Diagram, logicalForm(g, r))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, g *arith.Grammar, results []gparse.Result) error {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, resultJSON{
			Prob:        r.Prob,
			Score:       r.Score,
			Denotation:  r.Denotation,
			World:       fmt.Sprint(r.Diagram),
			LogicalForm: logicalForm(g, r),
			Span:        r.Parse.Span.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTimings(w io.Writer, sw *search.Stopwatch) {
	phases := sw.Snapshot()
	names := slices.Sorted(maps.Keys(phases))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tCOUNT\tTOTAL")
	for _, name := range names {
		ps := phases[name]
		fmt.Fprintf(tw, "%s\t%d\t%v\n", name, ps.Count, ps.Total)
	}
	tw.Flush()
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			c := m.GetCounter()
			if c == nil {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, c.GetValue())
		}
	}
	return nil
}
