package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ascentd/ascent/internal/logging"
	"github.com/ascentd/ascent/internal/search"
	"github.com/ascentd/ascent/internal/strategy"
)

var (
	objective   string
	dims        int
	lowerBound  float64
	upperBound  float64
	evaluations int
	popSize     int
	maximize    bool
	errorPolicy string
	earlyStop   int
	evalTimeout time.Duration
	memoryLimit int64
	runTimeout  time.Duration
	seed        uint64
	showBar     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a search against a named benchmark objective",
	Long: `Runs a random search over a box-bounded vector space and prints the best
candidate found. Interrupting with Ctrl-C ends the run gracefully and still
reports the best solution seen so far.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().StringVar(&objective, "objective", "sphere", "Objective: sphere, rastrigin, eggholder")
	runCmd.Flags().IntVar(&dims, "dims", 2, "Dimensionality of the search space")
	runCmd.Flags().Float64Var(&lowerBound, "min", -5.12, "Lower bound for every dimension")
	runCmd.Flags().Float64Var(&upperBound, "max", 5.12, "Upper bound for every dimension")
	runCmd.Flags().IntVar(&evaluations, "evaluations", 1000, "Evaluation budget (0 = unbounded)")
	runCmd.Flags().IntVar(&popSize, "pop", 10, "Candidates per generation")
	runCmd.Flags().BoolVar(&maximize, "maximize", false, "Maximize instead of minimize")
	runCmd.Flags().StringVar(&errorPolicy, "error-policy", "continue", "Evaluation failure policy: raise, continue")
	runCmd.Flags().IntVar(&earlyStop, "early-stop", 0, "Stop after this many generations without improvement (0 = never)")
	runCmd.Flags().DurationVar(&evalTimeout, "eval-timeout", 0, "Wall-clock limit per evaluation (0 = none)")
	runCmd.Flags().Int64Var(&memoryLimit, "memory-limit", 0, "Memory ceiling per evaluation in bytes (0 = none)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Wall-clock limit for the whole search (0 = none)")
	runCmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().BoolVar(&showBar, "progress", false, "Render a progress bar instead of the textual trace")
	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	bench, err := strategy.ObjectiveByName(objective)
	if err != nil {
		return err
	}
	if dims < bench.MinDims {
		return fmt.Errorf("objective %q needs at least %d dimensions, got %d", objective, bench.MinDims, dims)
	}

	bounds := make([][2]float64, dims)
	for i := range bounds {
		bounds[i] = [2]float64{lowerBound, upperBound}
	}
	space, err := strategy.NewVectorSpace(bounds, seed)
	if err != nil {
		return err
	}

	engine, err := search.New(search.Config{
		Generator:         strategy.RandomSearch(),
		SamplerBuilder:    space.SamplerBuilder(),
		Fitness:           strategy.FitnessFor(bench.Fn),
		PopulationSize:    popSize,
		Maximize:          maximize,
		ErrorPolicy:       search.ErrorPolicy(errorPolicy),
		EvaluationTimeout: evalTimeout,
		MemoryLimit:       memoryLimit,
		EarlyStop:         earlyStop,
		SearchTimeout:     runTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observers := []search.Observer{
		search.NewLogObserver(logging.NewZapLogger(logger), runTimeout),
	}
	if showBar {
		observers = append(observers, search.NewProgressObserver(os.Stderr))
	} else {
		observers = append(observers, search.NewConsoleObserver(os.Stdout))
	}

	best, err := engine.Run(ctx, evaluations, observers...)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no solution found")
	}

	fmt.Printf("best fitness: %g\n", best.Fitness)
	fmt.Printf("best candidate: %v\n", best.Candidate)
	return nil
}
