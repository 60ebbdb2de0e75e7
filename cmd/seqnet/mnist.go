package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/born-ml/seqnet/internal/dataset"
	"github.com/born-ml/seqnet/internal/eval"
	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/serialization"
	"github.com/born-ml/seqnet/internal/train"
)

const digits = 10

// newDigitNet builds a small convolutional classifier for (1, 28, 28) images.
//
// Architecture:
//
//	Conv2D(8, 3x3, ReLU) -> (8, 26, 26)
//	MaxPool2D(2x2)       -> (8, 13, 13)
//	Flatten              -> 1352
//	Dense(32, ReLU)
//	Dense(10, Softmax)
func newDigitNet(seed int64) *model.Sequential {
	return model.New(
		nn.NewInput(1, 28, 28),
		nn.NewConv2D(8, 3, 3, nn.ReLU{}, nn.WithSeed(seed)),
		nn.NewMaxPool2D(2, 2),
		nn.NewFlatten(),
		nn.NewDense(32, nn.ReLU{}, nn.WithSeed(seed+1)),
		nn.NewDense(digits, nn.Softmax{}, nn.WithSeed(seed+2)),
	)
}

func runMNIST(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mnist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataDir := fs.String("data", "./data", "Directory containing the IDX files (train-images-idx3-ubyte, ...)")
	useTrain := fs.Bool("train", true, "Use the training files instead of the t10k files")
	synthetic := fs.Bool("synthetic", false, "Use generated band images instead of IDX files")
	maxSamples := fs.Int("samples", 1000, "Max samples to load (0 = all)")
	valRatio := fs.Float64("val", 0.2, "Fraction of samples held out for validation")
	epochs := fs.Int("epochs", 5, "Number of training epochs")
	batchSize := fs.Int("batch", 16, "Batch size for training")
	lr := fs.Float64("lr", 0.001, "Learning rate for Adam optimizer")
	workers := fs.Int("workers", 1, "Worker goroutines for convolution, pooling and evaluation")
	seed := fs.Int64("seed", 1, "Seed for weights and shuffling")
	savePath := fs.String("save", "", "Write the trained model to this .nn or .yaml file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var data *dataset.Dataset
	var err error
	if *synthetic {
		data, err = dataset.Synthetic(max(*maxSamples, digits), digits, 28)
	} else {
		prefix := "t10k"
		if *useTrain {
			prefix = "train"
		}
		data, err = dataset.LoadIDX(
			filepath.Join(*dataDir, prefix+"-images-idx3-ubyte"),
			filepath.Join(*dataDir, prefix+"-labels-idx1-ubyte"),
			digits, *maxSamples)
	}
	if err != nil {
		return err
	}
	data.Shuffle(rand.New(rand.NewSource(*seed)))
	trainData, valData, err := data.Split(1 - *valRatio)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Train: %d samples, Val: %d samples\n", trainData.Len(), valData.Len())

	par, err := parallel.New(*workers, 1)
	if err != nil {
		return err
	}
	m := newDigitNet(*seed)
	if err := m.Compile(optim.NewAdam(optim.AdamConfig{LR: *lr}), loss.CategoricalCrossEntropy{}); err != nil {
		return err
	}
	m.SetParallel(par)
	if err := m.Summary(stdout); err != nil {
		return err
	}

	engine, err := train.New(m, train.Options{
		Seed:             *seed,
		Logs:             true,
		Logger:           log.New(stderr, "", log.LstdFlags),
		AverageGradients: true,
	})
	if err != nil {
		return err
	}
	if err := engine.Fit(trainData.Inputs(), trainData.Targets(), *epochs, *batchSize); err != nil {
		return err
	}

	if valData.Len() == 0 {
		valData = trainData
	}
	ev, err := eval.New(m, eval.WithWorkers(*workers))
	if err != nil {
		return err
	}
	xs, ys := valData.Inputs(), valData.Targets()
	acc, err := ev.Accuracy(xs, ys)
	if err != nil {
		return err
	}
	f1, err := ev.F1(xs, ys)
	if err != nil {
		return err
	}
	valLoss, err := ev.MeanLoss(m.Loss(), xs, ys)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nValidation: Loss=%.4f, Acc=%.2f%%, F1=%.4f\n", valLoss, acc*100, f1)

	if *savePath != "" {
		if err := serialization.SaveModel(*savePath, m); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved model to %s\n", *savePath)
	}
	return nil
}
