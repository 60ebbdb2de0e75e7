package nn

import (
	"testing"

	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// TestMaxPool2D_Creation tests MaxPool2D layer creation.
func TestMaxPool2D_Creation(t *testing.T) {
	pool := NewMaxPool2D(2, 2)

	spec := pool.Spec()
	if spec.PoolH != 2 || spec.PoolW != 2 {
		t.Errorf("Expected pool 2x2, got %dx%d", spec.PoolH, spec.PoolW)
	}

	// Check parameters (should be empty)
	if len(pool.Parameters()) != 0 {
		t.Errorf("Expected 0 parameters (MaxPool2D has no learnable params), got %d", len(pool.Parameters()))
	}
}

// TestMaxPool2D_ForwardValues tests forward pass with known values.
func TestMaxPool2D_ForwardValues(t *testing.T) {
	pool := NewMaxPool2D(2, 2)
	if err := pool.Build(tensor.Shape{1, 4, 4}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Input: [1, 4, 4] with sequential values 1-16
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i + 1)
	}
	output, err := pool.Forward(tensor.MustFromSlice(data, 1, 4, 4))
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// Expected output (max in each 2x2 window):
	// [[1,2,3,4],      -> [[6,8],
	//  [5,6,7,8],         [14,16]]
	//  [9,10,11,12],
	//  [13,14,15,16]]
	expected := []float64{6, 8, 14, 16}
	for i, exp := range expected {
		if got := output.Values()[i]; got != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, got)
		}
	}
}

// TestMaxPool2D_WithDifferentPool tests a non-square pool on several channels.
func TestMaxPool2D_WithDifferentPool(t *testing.T) {
	pool := NewMaxPool2D(1, 3)
	if err := pool.Build(tensor.Shape{2, 2, 6}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	input := tensor.MustFromSlice([]float64{
		1, 5, 2, 0, 0, 3,
		-1, -2, -3, 4, 4, 4,

		9, 8, 7, 6, 5, 4,
		0, 0, 0, 0, 0, 1,
	}, 2, 2, 6)
	output, err := pool.Forward(input)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	expected := tensor.MustFromSlice([]float64{5, 3, -1, 4, 9, 6, 0, 1}, 2, 2, 2)
	if !output.Equal(expected) {
		t.Errorf("Output: expected %v, got %v", expected, output)
	}

	// Ties go to the first element of the window.
	dx, err := pool.Backward(tensor.Ones(2, 2, 2))
	if err != nil {
		t.Fatalf("Backward failed: %v", err)
	}
	if dx.At(0, 1, 3) != 1 || dx.At(0, 1, 4) != 0 {
		t.Errorf("Expected gradient on the first tied element, got %v", dx)
	}
}

// TestMaxPool2D_ComputeOutputSize tests that partial windows are dropped.
func TestMaxPool2D_ComputeOutputSize(t *testing.T) {
	tests := []struct {
		name     string
		pool     [2]int
		input    tensor.Shape
		expected tensor.Shape
	}{
		{"MNIST after conv1", [2]int{2, 2}, tensor.Shape{6, 24, 24}, tensor.Shape{6, 12, 12}},
		{"odd size", [2]int{2, 2}, tensor.Shape{1, 5, 7}, tensor.Shape{1, 2, 3}},
		{"whole image", [2]int{4, 4}, tensor.Shape{3, 4, 4}, tensor.Shape{3, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewMaxPool2D(tt.pool[0], tt.pool[1])
			if err := pool.Build(tt.input); err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if !pool.OutputShape().Equal(tt.expected) {
				t.Errorf("Output shape: expected %v, got %v", tt.expected, pool.OutputShape())
			}
		})
	}
}

// TestMaxPool2D_AfterConv2D tests pooling stacked on a convolution on several workers.
func TestMaxPool2D_AfterConv2D(t *testing.T) {
	par, err := parallel.New(4, 1)
	if err != nil {
		t.Fatalf("parallel.New failed: %v", err)
	}

	conv := NewConv2D(6, 5, 5, ReLU{})
	pool := NewMaxPool2D(2, 2)
	conv.SetParallel(par)
	pool.SetParallel(par)

	if err := conv.Build(tensor.Shape{1, 28, 28}); err != nil {
		t.Fatalf("Conv2D build failed: %v", err)
	}
	if err := pool.Build(conv.OutputShape()); err != nil {
		t.Fatalf("MaxPool2D build failed: %v", err)
	}

	h, err := conv.Forward(randomInput(1, 1, 28, 28))
	if err != nil {
		t.Fatalf("Conv2D forward failed: %v", err)
	}
	output, err := pool.Forward(h)
	if err != nil {
		t.Fatalf("MaxPool2D forward failed: %v", err)
	}

	// [6, 24, 24] -> [6, 12, 12]
	if !output.Shape().Equal(tensor.Shape{6, 12, 12}) {
		t.Errorf("Output shape: expected [6 12 12], got %v", output.Shape())
	}
	if output.Min() < 0 {
		t.Errorf("Expected non-negative output after ReLU, got min %v", output.Min())
	}

	dh, err := pool.Backward(tensor.Ones(6, 12, 12))
	if err != nil {
		t.Fatalf("MaxPool2D backward failed: %v", err)
	}
	if dh.Sum() != 6*12*12 {
		t.Errorf("Expected one routed gradient per window, got sum %v", dh.Sum())
	}
	if _, err := conv.Backward(dh); err != nil {
		t.Fatalf("Conv2D backward failed: %v", err)
	}
}
