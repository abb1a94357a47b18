// Package tree implements a CART decision tree for regression.
//
// The tree partitions the feature space with axis-aligned threshold splits
// chosen to minimize the squared error of the children, and predicts the mean
// target of the training samples that reach a leaf.
package tree

import (
	"errors"
	"fmt"
	"slices"
)

// impurityEpsilon is the mean squared error at or below which a node is pure.
const impurityEpsilon = 1e-12

var (
	// ErrEmptyTrainingSet is returned by Fit when there are no samples.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrShapeMismatch is returned by Fit when X and y disagree in shape.
	ErrShapeMismatch = errors.New("feature matrix and target shape mismatch")
)

// Node is a single tree node. Leaves have nil children.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// IsLeaf reports whether the node has no split.
func (n *Node) IsLeaf() bool {
	return n.Left == nil || n.Right == nil
}

// Regressor is a decision tree regression model.
type Regressor struct {
	MaxDepth        int   `json:"max_depth,omitempty"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Features        int   `json:"n_features"`
	Root            *Node `json:"root"`
}

// Option customizes a Regressor.
type Option func(*Regressor)

// WithMaxDepth bounds the tree depth; zero means unbounded.
func WithMaxDepth(depth int) Option {
	return func(r *Regressor) { r.MaxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(r *Regressor) {
		if n >= 2 {
			r.MinSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the minimum number of samples on each side of a split.
func WithMinSamplesLeaf(n int) Option {
	return func(r *Regressor) {
		if n >= 1 {
			r.MinSamplesLeaf = n
		}
	}
}

// NewRegressor returns an unfitted tree with default hyperparameters:
// unbounded depth, two samples to split, one sample per leaf.
func NewRegressor(opts ...Option) *Regressor {
	r := &Regressor{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit grows the tree on the row-major matrix X and targets y.
func (r *Regressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(y) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(X), len(y))
	}
	features := len(X[0])
	for i, row := range X {
		if len(row) != features {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), features)
		}
	}

	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	r.Features = features
	b := builder{r: r, X: X, y: y}
	r.Root = b.grow(idx, 0)
	return nil
}

// Predict returns the mean target of the leaf x falls into.
// x must have as many features as the training rows.
func (r *Regressor) Predict(x []float64) float64 {
	n := r.Root
	if n == nil {
		return 0
	}
	for !n.IsLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Depth returns the number of split levels; a single leaf has depth 0.
func (r *Regressor) Depth() int {
	return depth(r.Root)
}

// Leaves counts the leaf nodes.
func (r *Regressor) Leaves() int {
	return leaves(r.Root)
}

func depth(n *Node) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	return 1 + max(depth(n.Left), depth(n.Right))
}

func leaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return leaves(n.Left) + leaves(n.Right)
}

type builder struct {
	r *Regressor
	X [][]float64
	y []float64
}

type split struct {
	feature   int
	threshold float64
	cost      float64
	pos       int
	order     []int
}

func (b *builder) grow(idx []int, level int) *Node {
	node := &Node{Samples: len(idx), Value: b.mean(idx)}

	if len(idx) < b.r.MinSamplesSplit || len(idx) < 2*b.r.MinSamplesLeaf {
		return node
	}
	if b.r.MaxDepth > 0 && level >= b.r.MaxDepth {
		return node
	}
	if b.sse(idx)/float64(len(idx)) <= impurityEpsilon {
		return node
	}

	best, ok := b.bestSplit(idx)
	if !ok {
		return node
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = b.grow(best.order[:best.pos], level+1)
	node.Right = b.grow(best.order[best.pos:], level+1)
	return node
}

// bestSplit scans every feature in order and every boundary between distinct
// sorted values; the first strictly better candidate wins.
func (b *builder) bestSplit(idx []int) (split, bool) {
	var (
		best  split
		found bool
	)
	minLeaf := b.r.MinSamplesLeaf
	n := len(idx)

	for f := 0; f < b.r.Features; f++ {
		order := slices.Clone(idx)
		slices.SortStableFunc(order, func(a, c int) int {
			switch {
			case b.X[a][f] < b.X[c][f]:
				return -1
			case b.X[a][f] > b.X[c][f]:
				return 1
			default:
				return 0
			}
		})

		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		for pos := 1; pos < n; pos++ {
			prev := order[pos-1]
			leftSum += b.y[prev]
			leftSq += b.y[prev] * b.y[prev]

			lo, hi := b.X[prev][f], b.X[order[pos]][f]
			if lo == hi {
				continue
			}
			if pos < minLeaf || n-pos < minLeaf {
				continue
			}

			nl, nr := float64(pos), float64(n-pos)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			cost := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if !found || cost < best.cost {
				threshold := lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				best = split{
					feature:   f,
					threshold: threshold,
					cost:      cost,
					pos:       pos,
					order:     order,
				}
				found = true
			}
		}
	}

	return best, found
}

func (b *builder) mean(idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

func (b *builder) sse(idx []int) float64 {
	m := b.mean(idx)
	var s float64
	for _, i := range idx {
		d := b.y[i] - m
		s += d * d
	}
	return s
}
