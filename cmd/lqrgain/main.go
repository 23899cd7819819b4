package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/lqrgain/internal/config"
	"github.com/san-kum/lqrgain/internal/design"
	"github.com/san-kum/lqrgain/internal/report"
	"github.com/san-kum/lqrgain/internal/storage"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	// physical constants
	gravity  float64
	length   float64
	cartMass float64
	poleMass float64
	friction float64
	// cost weights (diagonals)
	qDiag []float64
	rDiag []float64
	// solver
	method    string
	tolerance float64
	maxIter   int
	// output
	format string
	save   bool
	// sweep
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepPlot  bool
)

var logger = log.New(io.Discard, "lqrgain: ", log.Ltime)

// main is the entry point for the lqrgain CLI. Without a subcommand it solves
// the configured design and prints the gain row.
func main() {
	rootCmd := &cobra.Command{
		Use:          "lqrgain",
		Short:        "LQR gain design for the inverted pendulum on a cart",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetOutput(os.Stderr)
			}
		},
		RunE: solveDesign,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lqrgain", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log solver diagnostics to stderr")

	addDesignFlags(rootCmd)
	rootCmd.Flags().StringVar(&format, "format", "text", "output format (text, pretty, yaml, json)")
	rootCmd.Flags().BoolVar(&save, "save", false, "store the solved design in the data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "re-solve with R scaled over a logarithmic range",
		Args:  cobra.NoArgs,
		RunE:  sweepDesign,
	}
	addDesignFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.01, "smallest R scale")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 100, "largest R scale")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of scales")
	sweepCmd.Flags().BoolVar(&sweepPlot, "plot", true, "plot gain magnitude")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tM\tm\tl\tμ\tQ\tR")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				p := cfg.Params
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%v\t%v\n",
					name, p.CartMass, p.PoleMass, p.Length, p.Friction, cfg.Weights.Q, cfg.Weights.R)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored designs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored design as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file (default values or --preset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset to write")

	rootCmd.AddCommand(sweepCmd, presetsCmd, listCmd, showCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDesignFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&gravity, "gravity", 9.81, "gravitational acceleration g")
	f.Float64Var(&length, "length", 1.0, "pendulum length l")
	f.Float64Var(&cartMass, "cart-mass", 0.5, "cart mass M")
	f.Float64Var(&poleMass, "pole-mass", 0.3, "pendulum mass m")
	f.Float64Var(&friction, "friction", 0.01, "friction coefficient μ")
	f.Float64SliceVar(&qDiag, "q", []float64{100, 20, 1, 1}, "state cost diagonal")
	f.Float64SliceVar(&rDiag, "r", []float64{1}, "input cost diagonal")
	f.StringVar(&method, "method", "hamiltonian", "riccati solver (hamiltonian, newton)")
	f.Float64Var(&tolerance, "tolerance", 1e-10, "newton refinement tolerance")
	f.IntVar(&maxIter, "max-iter", 50, "newton refinement iteration limit")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		logger.Printf("preset %s", preset)
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Printf("config %s", configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("gravity") {
		cfg.Params.Gravity = gravity
	}
	if flags.Changed("length") {
		cfg.Params.Length = length
	}
	if flags.Changed("cart-mass") {
		cfg.Params.CartMass = cartMass
	}
	if flags.Changed("pole-mass") {
		cfg.Params.PoleMass = poleMass
	}
	if flags.Changed("friction") {
		cfg.Params.Friction = friction
	}
	if flags.Changed("q") {
		cfg.Weights.Q = qDiag
	}
	if flags.Changed("r") {
		cfg.Weights.R = rDiag
	}
	if flags.Changed("method") {
		cfg.Solver.Method = method
	}
	if flags.Changed("tolerance") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIter = maxIter
	}
	return cfg, nil
}

func solveDesign(cmd *cobra.Command, args []string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := design.Run(cfg)
	if err != nil {
		return err
	}
	logger.Printf("solved with %s in %v", out.Result.Method, time.Since(start))
	logger.Printf("riccati residual %.3e, stability margin %.4f", out.Result.Residual, out.Result.Margin())

	text, err := report.Render(out, f)
	if err != nil {
		return err
	}
	fmt.Println(text)

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "run id: %s\n", runID)
	}
	return nil
}

func sweepDesign(cmd *cobra.Command, args []string) error {
	if sweepFrom <= 0 || sweepTo <= sweepFrom {
		return fmt.Errorf("invalid sweep range [%g, %g]", sweepFrom, sweepTo)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	scales := design.LogScales(sweepFrom, sweepTo, sweepSteps)
	logger.Printf("sweeping %d scales of R=%v", len(scales), cfg.Weights.R)
	points, err := design.Sweep(cfg, scales)
	if err != nil {
		return err
	}

	fmt.Print(report.SweepTable(points))
	if sweepPlot {
		fmt.Println()
		fmt.Println(report.SweepPlot(points))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no stored designs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMETHOD\tMARGIN\tGAIN")
	for _, run := range runs {
		gain := ""
		if len(run.K) > 0 {
			gain = report.Line(run.K[0])
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%s\n",
			run.ID, run.Timestamp.Format("2006-01-02 15:04:05"), run.Method, run.Margin, gain)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
