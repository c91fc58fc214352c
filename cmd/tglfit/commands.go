package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n0madic/go-multitask-lasso/config"
	"github.com/n0madic/go-multitask-lasso/dataset"
	tglfista "github.com/n0madic/go-multitask-lasso/tgl-fista"
)

func newFitCmd() *cobra.Command {
	var (
		dataPath, configPath, outPath string
		rho1, rho2, rho3              float64
		maxIter                       int
		parallel                      bool
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model to a dataset file",
		Example: `  tglfit fit --data tasks.yaml --rho1 0.1 --rho2 1 --rho3 0.5 --out model.gob
  tglfit fit --data tasks.yaml --config opts.yaml -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := dataset.Load(dataPath)
			if err != nil {
				return err
			}

			var cfg *config.Config
			if configPath != "" {
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			opts, pen, err := config.Resolve(cfg)
			if err != nil {
				return err
			}

			// Flags override the file.
			flags := cmd.Flags()
			if flags.Changed("rho1") {
				pen.Rho1 = rho1
			}
			if flags.Changed("rho2") {
				pen.Rho2 = rho2
			}
			if flags.Changed("rho3") {
				pen.Rho3 = rho3
			}
			if flags.Changed("max-iter") {
				opts.MaxIter = maxIter
			}
			if flags.Changed("parallel") {
				opts.Parallel = parallel
			}
			opts.Logger = logger

			logger.Info("fitting",
				zap.String("data", dataPath),
				zap.Int("tasks", len(tasks)),
				zap.Float64("rho1", pen.Rho1),
				zap.Float64("rho2", pen.Rho2),
				zap.Float64("rho3", pen.Rho3),
			)

			model, err := tglfista.Solve(tasks, pen, tglfista.WithOptions(opts))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stopped: %s after %d iterations, objective %.6g\n",
				model.Reason(), model.Iterations(), model.Objective())
			fmt.Fprintf(out, "active features: %v\n", model.ActiveFeatures(0))

			if outPath == "" {
				return nil
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create model file: %w", err)
			}
			if err := model.Save(f); err != nil {
				f.Close()
				return fmt.Errorf("failed to save model: %w", err)
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "dataset file (YAML or JSON)")
	cmd.Flags().StringVar(&configPath, "config", "", "solver options file (YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the fitted model to this file")
	cmd.Flags().Float64Var(&rho1, "rho1", 0, "ridge weight")
	cmd.Flags().Float64Var(&rho2, "rho2", 0, "temporal smoothness weight")
	cmd.Flags().Float64Var(&rho3, "rho3", 0, "group sparsity weight")
	cmd.Flags().IntVar(&maxIter, "max-iter", tglfista.DefaultMaxIter, "iteration budget")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "evaluate tasks concurrently")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		modelPath, sample string
		task              int
	)

	cmd := &cobra.Command{
		Use:     "predict",
		Short:   "Predict the response of one sample for one task",
		Example: `  tglfit predict --model model.gob --task 2 --x 0.1,1.5,-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			x, err := parseSample(sample)
			if err != nil {
				return err
			}
			y, err := model.Predict(task, x)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(y, 'g', -1, 64))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "fitted model file")
	cmd.Flags().IntVar(&task, "task", 0, "task index")
	cmd.Flags().StringVar(&sample, "x", "", "comma separated feature values")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print statistics of a fitted model",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			stats := model.GetStats()
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %v\n", k, stats[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "fitted model file")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		cfg     dataset.SyntheticConfig
		seed    int64
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset to a file or stdout",
		Example: `  tglfit generate --features 20 --tasks 8 --out tasks.yaml
  tglfit generate --seed 7 > tasks.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, _, err := dataset.Synthetic(cfg, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			data, err := dataset.Encode(tasks)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create dataset file: %w", err)
			}
			if _, err := f.Write(data); err != nil {
				f.Close()
				return fmt.Errorf("failed to write dataset: %w", err)
			}
			return f.Close()
		},
	}

	cmd.Flags().IntVar(&cfg.Features, "features", 10, "feature dimension d")
	cmd.Flags().IntVar(&cfg.Tasks, "tasks", 5, "number of tasks T")
	cmd.Flags().IntVar(&cfg.Samples, "samples", 30, "samples per task")
	cmd.Flags().IntVar(&cfg.Active, "active", 3, "non-zero rows of the ground truth")
	cmd.Flags().Float64Var(&cfg.Drift, "drift", 0.1, "per-task coefficient drift")
	cmd.Flags().Float64Var(&cfg.Noise, "noise", 0.1, "response noise standard deviation")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the dataset to this file instead of stdout")
	return cmd
}

func loadModel(path string) (*tglfista.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	model, err := tglfista.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return model, nil
}

func parseSample(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	x := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		x[i] = v
	}
	return x, nil
}
