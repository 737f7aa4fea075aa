// quantnet solves small poker games for quantal response equilibria with a
// damped Newton method on the QRE fixed point, continuing β from near zero
// up to the target. Iteration telemetry is written as JSON for the browser
// visualization.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/nolimitwaiz/QuantNet-Solver/checkpoint"
	"github.com/nolimitwaiz/QuantNet-Solver/poker"
	"github.com/nolimitwaiz/QuantNet-Solver/solver"
	"github.com/nolimitwaiz/QuantNet-Solver/telemetry"
)

var (
	gameName       = flag.String("game", "kuhn", "game to solve (kuhn|leduc)")
	targetBeta     = flag.Float64("beta", 10.0, "target rationality parameter")
	tol            = flag.Float64("tol", 1e-8, "convergence tolerance on the residual norm")
	maxIters       = flag.Int("max-iters", 50, "max Newton iterations per beta")
	outputPath     = flag.String("output", "viz/solver_output.json", "telemetry output path")
	checkpointPath = flag.String("checkpoint", "", "optional LevelDB directory for warm starts")
	verbose        = flag.Bool("verbose", false, "log per-iteration details")
)

func main() {
	flag.Parse()

	var game poker.Game
	switch *gameName {
	case "kuhn":
		game = poker.NewKuhnPoker()
	case "leduc":
		game = poker.NewLeducPoker()
	default:
		fmt.Fprintf(os.Stderr, "unknown game: %s\n", *gameName)
		os.Exit(1)
	}

	fmt.Printf("Game: %s\n", game.Name())
	stats := poker.ComputeTreeStats(game.Root())
	fmt.Printf("Tree nodes: %d (chance %d, player %d, terminal %d)\n",
		stats.TotalNodes, stats.ChanceNodes, stats.PlayerNodes, stats.TerminalNodes)

	qre := poker.NewQREResidual(game, 0.01)
	index := qre.Index()
	fmt.Printf("Information sets: %d\n", index.NumInfoSets())
	fmt.Printf("Strategy dimensions: %d\n", index.TotalDim())

	sink, err := telemetry.NewSink(*outputPath)
	if err != nil {
		glog.Fatalf("creating telemetry sink: %v", err)
	}
	fmt.Printf("Writing telemetry to: %s\n", sink.Path())

	// Warm start from a checkpoint when one exists for this game.
	w := make([]float64, index.TotalDim())
	var store *checkpoint.Store
	if *checkpointPath != "" {
		store, err = checkpoint.Open(*checkpointPath)
		if err != nil {
			glog.Fatalf("opening checkpoint: %v", err)
		}
		defer store.Close()

		saved, ok, err := store.Load(index)
		if err != nil {
			glog.Fatalf("loading checkpoint: %v", err)
		}
		if ok {
			w = saved
			glog.Infof("warm-starting from checkpoint %s", *checkpointPath)
		}
	}

	config := solver.DefaultConfig()
	config.Tol = *tol
	config.MaxIters = *maxIters
	config.Verbose = *verbose

	newton := solver.NewNewton(config)
	schedule := solver.BetaSchedule(*targetBeta)
	fmt.Printf("Beta schedule: %v\n\n", schedule)

	totalIters := 0
	currentBeta := schedule[0]
	newton.SetCallback(func(stats solver.IterationStats, x []float64) {
		totalIters++

		sigma := poker.StrategyFromLogits(x, index)
		exploit := poker.Exploitability(game.Root(), sigma)
		ev := poker.ComputeEV(game.Root(), sigma)

		actionEVs := make(map[string]map[string]float64)
		for id, actionEU := range poker.AllExpectedUtilities(game, sigma, index) {
			m := make(map[string]float64, len(actionEU))
			for action, eu := range actionEU {
				m[action.String()] = eu
			}
			actionEVs[id] = m
		}

		if *verbose {
			glog.Infof("iter %d: residual=%.3e, exploitability=%.3e", stats.Iteration, stats.ResidualNorm, exploit)
		}

		err := sink.LogIteration(telemetry.Snapshot{
			Iteration:      stats.Iteration,
			ResidualNorm:   stats.ResidualNorm,
			StepNorm:       stats.StepNorm,
			Alpha:          stats.Alpha,
			Lambda:         stats.Lambda,
			Beta:           currentBeta,
			Game:           game.Name(),
			Strategy:       sigma.ActionProbs(),
			ActionEVs:      actionEVs,
			Exploitability: &exploit,
			ExpectedValue:  &ev,
		})
		if err != nil {
			glog.Warningf("writing telemetry: %v", err)
		}
	})

	continuation := &solver.Continuation{
		Newton:   newton,
		Schedule: schedule,
		OnStage: func(beta float64) {
			currentBeta = beta
			fmt.Printf("Solving for beta = %.2f...\n", beta)
		},
	}

	result, err := continuation.Run(qre, w)
	if err != nil {
		glog.Fatalf("solving: %v", err)
	}
	for i, stage := range result.Stages {
		outcome := "max iters"
		if stage.Converged {
			outcome = "converged"
		}
		fmt.Printf("  beta %-6.4g %s in %d iterations, residual = %.3e\n",
			schedule[i], outcome, stage.Iterations, stage.FinalResidual)
	}

	finalSigma := poker.StrategyFromLogits(result.X, index)
	finalExploit := poker.Exploitability(game.Root(), finalSigma)
	finalEV := poker.ComputeEV(game.Root(), finalSigma)

	fmt.Printf("\nTotal iterations: %d\n", result.TotalIterations)
	fmt.Printf("Final exploitability: %.6e\n", finalExploit)
	fmt.Printf("Expected value (P0): %.6f\n\n", finalEV)

	fmt.Println("Final Strategy:")
	for _, is := range game.InfoSets() {
		probs := finalSigma.Probs(is.ID)
		fmt.Printf("%s:\n", is.ID)
		for a, action := range is.LegalActions {
			fmt.Printf("  %s: %.4f\n", action, probs[a])
		}
	}

	if store != nil {
		if err := store.Save(index, result.X); err != nil {
			glog.Warningf("saving checkpoint: %v", err)
		}
	}

	if err := sink.Finish(finalExploit, totalIters); err != nil {
		glog.Warningf("writing telemetry: %v", err)
	}
	fmt.Printf("\nVisualization data written to: %s\n", sink.Path())
}
