package training

import (
	"math"
	"math/rand"
)

// network is a trainable mirror of ml.MLP: same fixed 12 -> 32 -> 16 -> 1
// architecture and the same flat bias-then-weights layout per layer, so a
// trained weight buffer loads directly into an ml.MLP via SetWeights. It
// exists separately from ml.MLP because inference has no business carrying
// backprop buffers and an Adam optimizer state.
type network struct {
	inputSize, hidden1, hidden2, outputSize int
	weights []float32

	// Adam optimizer state, one slot per weight.
	m, v []float32
	t int
}

const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEpsilon = 1e-8
	learningRate = 0.001
)

func genomeSize(inputSize, hidden1, hidden2, outputSize int) int {
	size := (inputSize + 1) * hidden1
	size += (hidden1 + 1) * hidden2
	size += (hidden2 + 1) * outputSize
	return size
}

// newNetwork builds a network with Xavier-like initialized weights, using
// rng so callers can seed it for reproducible tests.
func newNetwork(inputSize, hidden1, hidden2, outputSize int, rng *rand.Rand) *network {
	n := &network{
		inputSize: inputSize,
		hidden1: hidden1,
		hidden2: hidden2,
		outputSize: outputSize,
	}
	size := genomeSize(inputSize, hidden1, hidden2, outputSize)
	n.weights = make([]float32, size)
	scale := float32(math.Sqrt(2.0 / float64(size)))
	for i := range n.weights {
		n.weights[i] = float32(rng.NormFloat64()) * scale
	}
	n.m = make([]float32, size)
	n.v = make([]float32, size)
	return n
}

// forwardCache holds every intermediate activation needed for backprop on
// one example.
type forwardCache struct {
	input []float32
	h1Pre, h1 []float32
	h2Pre, h2 []float32
	outPre float32
	out float32
}

func (n *network) forward(input []float32) forwardCache {
	cache := forwardCache{
		input: input,
		h1Pre: make([]float32, n.hidden1),
		h1: make([]float32, n.hidden1),
		h2Pre: make([]float32, n.hidden2),
		h2: make([]float32, n.hidden2),
	}

	offset := 0
	for j := 0; j < n.hidden1; j++ {
		sum := n.weights[offset]
		offset++
		for i := 0; i < n.inputSize; i++ {
			sum += input[i] * n.weights[offset]
			offset++
		}
		cache.h1Pre[j] = sum
		cache.h1[j] = relu(sum)
	}

	for j := 0; j < n.hidden2; j++ {
		sum := n.weights[offset]
		offset++
		for i := 0; i < n.hidden1; i++ {
			sum += cache.h1[i] * n.weights[offset]
			offset++
		}
		cache.h2Pre[j] = sum
		cache.h2[j] = relu(sum)
	}

	sum := n.weights[offset]
	offset++
	for i := 0; i < n.hidden2; i++ {
		sum += cache.h2[i] * n.weights[offset]
		offset++
	}
	cache.outPre = sum
	cache.out = sigmoid(sum)
	return cache
}

// backward computes the gradient of the binary cross-entropy loss with
// respect to every weight for one example, given its true label, and
// accumulates it into grad (same flat layout as n.weights).
func (n *network) backward(cache forwardCache, label float32, grad []float32) {
	// BCE + sigmoid simplifies to (yhat - y) at the output pre-activation.
	dOut := cache.out - label

	h1WeightsOffset := n.weightsOffsetH1()
	outWeightsOffset := n.weightsOffsetOut()

	// Gradient for the output layer (bias + hidden2 weights).
	grad[outWeightsOffset] += dOut
	dH2 := make([]float32, n.hidden2)
	for i := 0; i < n.hidden2; i++ {
		wIdx := outWeightsOffset + 1 + i
		grad[wIdx] += dOut * cache.h2[i]
		dH2[i] = dOut * n.weights[wIdx] * reluGrad(cache.h2Pre[i])
	}

	// Gradient for the hidden2 layer (bias + hidden1 weights per neuron).
	dH1 := make([]float32, n.hidden1)
	offset := h1WeightsOffset
	for j := 0; j < n.hidden2; j++ {
		grad[offset] += dH2[j]
		offset++
		for i := 0; i < n.hidden1; i++ {
			grad[offset] += dH2[j] * cache.h1[i]
			dH1[i] += dH2[j] * n.weights[offset] * reluGrad(cache.h1Pre[i])
			offset++
		}
	}

	// Gradient for the hidden1 layer (bias + input weights per neuron).
	offset = 0
	for j := 0; j < n.hidden1; j++ {
		grad[offset] += dH1[j]
		offset++
		for i := 0; i < n.inputSize; i++ {
			grad[offset] += dH1[j] * cache.input[i]
			offset++
		}
	}
}

func (n *network) weightsOffsetH1() int {
	return (n.inputSize + 1) * n.hidden1
}

func (n *network) weightsOffsetOut() int {
	return n.weightsOffsetH1() + (n.hidden1+1)*n.hidden2
}

// applyGradient runs one Adam update step using the accumulated gradient
// (already averaged over the batch by the caller).
func (n *network) applyGradient(grad []float32) {
	n.t++
	biasCorrection1 := 1 - float32(math.Pow(adamBeta1, float64(n.t)))
	biasCorrection2 := 1 - float32(math.Pow(adamBeta2, float64(n.t)))

	for i, g := range grad {
		n.m[i] = adamBeta1*n.m[i] + (1-adamBeta1)*g
		n.v[i] = adamBeta2*n.v[i] + (1-adamBeta2)*g*g

		mHat := n.m[i] / biasCorrection1
		vHat := n.v[i] / biasCorrection2

		n.weights[i] -= learningRate * mHat / (float32(math.Sqrt(float64(vHat))) + adamEpsilon)
	}
}

// exportWeights returns a copy of the trained weights, ready for
// ml.MLP.SetWeights.
func (n *network) exportWeights() []float32 {
	out := make([]float32, len(n.weights))
	copy(out, n.weights)
	return out
}

func relu(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

func reluGrad(x float32) float32 {
	if x > 0 {
		return 1
	}
	return 0
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}
