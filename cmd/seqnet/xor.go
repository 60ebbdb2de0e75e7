package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/born-ml/seqnet/internal/config"
	"github.com/born-ml/seqnet/internal/eval"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/serialization"
	"github.com/born-ml/seqnet/internal/tensor"
	"github.com/born-ml/seqnet/internal/train"
)

func xorData() (xs, ys []*tensor.Tensor) {
	in := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	out := []float64{0, 1, 1, 0}
	for i := range in {
		xs = append(xs, tensor.MustFromSlice(in[i], 2))
		ys = append(ys, tensor.MustFromSlice([]float64{out[i]}, 1))
	}
	return xs, ys
}

func runXOR(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("xor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file (defaults: SGD lr=0.5 momentum=0.9, 5000 epochs)")
	savePath := fs.String("save", "", "Write the trained model to this .nn or .yaml file")
	logs := fs.Bool("logs", false, "Log the loss of every epoch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	m := model.New(
		nn.NewInput(2),
		nn.NewDense(2, nn.Sigmoid{}, nn.WithSeed(cfg.Seed)),
		nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(cfg.Seed+1)),
	)
	opt, err := cfg.NewOptimizer()
	if err != nil {
		return err
	}
	l, err := cfg.NewLoss()
	if err != nil {
		return err
	}
	if err := m.Compile(opt, l); err != nil {
		return err
	}
	m.SetParallel(cfg.Parallel())
	if err := m.Summary(stdout); err != nil {
		return err
	}

	engine, err := train.New(m, train.Options{
		Seed:             cfg.Seed,
		History:          cfg.Train.History,
		Logs:             *logs || cfg.Train.Logs,
		Logger:           log.New(stderr, "", log.LstdFlags),
		AverageGradients: cfg.Train.AverageGradients,
	})
	if err != nil {
		return err
	}

	xs, ys := xorData()
	fmt.Fprintf(stdout, "\nTraining %d epochs (%s, lr=%g, batch %d)...\n",
		cfg.Train.Epochs, cfg.Optimizer.Name, opt.LR(), cfg.Train.BatchSize)
	if err := engine.Fit(xs, ys, cfg.Train.Epochs, cfg.Train.BatchSize); err != nil {
		return err
	}

	ev, err := eval.New(m)
	if err != nil {
		return err
	}
	preds, err := ev.Predict(xs)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nPredictions:")
	correct := 0
	for i, p := range preds {
		fmt.Fprintf(stdout, "  %v -> %.4f (target %v)\n", xs[i].Values(), p.Item(), ys[i].Item())
		if math.Round(p.Item()) == ys[i].Item() {
			correct++
		}
	}
	finalLoss, err := ev.MeanLoss(l, xs, ys)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nAccuracy: %.2f%%\n", 100*float64(correct)/float64(len(xs)))
	fmt.Fprintf(stdout, "Final loss: %.6f\n", finalLoss)

	if *savePath != "" {
		if err := serialization.SaveModel(*savePath, m); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved model to %s\n", *savePath)
	}
	return nil
}
