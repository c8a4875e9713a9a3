package ml

import (
	"math/rand/v2"
	"sort"
)

// GBTConfig configures the gradient-boosted tree regressor.
type GBTConfig struct {
	NumTrees       int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	SubsampleRatio float64
	Seed           int64
}

// DefaultGBTConfig returns the production training configuration.
func DefaultGBTConfig() GBTConfig {
	return GBTConfig{
		NumTrees:       200,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 5,
		SubsampleRatio: 0.8,
		Seed:           42,
	}
}

// TreeNode is one node of a regression tree, stored flat by index.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Value     float64
}

// Tree is a depth-limited regression tree.
type Tree struct {
	Nodes []TreeNode
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// GBTRegressor is a gradient-boosted ensemble of regression trees fit to the
// squared loss: each tree fits the residuals of the running prediction and is
// added with the configured learning rate. Training is deterministic for a
// fixed seed.
type GBTRegressor struct {
	Config GBTConfig
	Base   float64
	Trees  []Tree
}

// NewGBTRegressor creates an unfitted regressor, filling config defaults.
func NewGBTRegressor(cfg GBTConfig) *GBTRegressor {
	def := DefaultGBTConfig()
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = def.NumTrees
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if cfg.SubsampleRatio <= 0 || cfg.SubsampleRatio > 1 {
		cfg.SubsampleRatio = def.SubsampleRatio
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return &GBTRegressor{Config: cfg}
}

// Fit trains the ensemble on X (rows of encoded features) and targets y.
func (m *GBTRegressor) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || len(y) != n {
		return ErrNoTrainingData
	}

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	m.Base = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.Base
	}

	rng := rand.New(rand.NewPCG(uint64(m.Config.Seed), uint64(m.Config.Seed)))
	residual := make([]float64, n)
	sampleSize := int(m.Config.SubsampleRatio * float64(n))
	if sampleSize < 2*m.Config.MinSamplesLeaf {
		sampleSize = n
	}

	m.Trees = make([]Tree, 0, m.Config.NumTrees)
	for t := 0; t < m.Config.NumTrees; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}

		idx := subsample(rng, n, sampleSize)
		builder := &treeBuilder{
			x:        X,
			target:   residual,
			maxDepth: m.Config.MaxDepth,
			minLeaf:  m.Config.MinSamplesLeaf,
		}
		tree := builder.build(idx)
		m.Trees = append(m.Trees, tree)

		for i := range pred {
			pred[i] += m.Config.LearningRate * tree.predict(X[i])
		}
	}

	return nil
}

// Predict returns the model output for one encoded row.
func (m *GBTRegressor) Predict(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotFitted
	}
	out := m.Base
	for i := range m.Trees {
		out += m.Config.LearningRate * m.Trees[i].predict(x)
	}
	return out, nil
}

// PredictBatch returns model outputs for many rows in one invocation.
func (m *GBTRegressor) PredictBatch(X [][]float64) ([]float64, error) {
	if len(m.Trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(X))
	for i, x := range X {
		v, err := m.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// subsample draws size distinct row indices without replacement.
func subsample(rng *rand.Rand, n, size int) []int {
	if size >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return rng.Perm(n)[:size]
}

// treeBuilder grows one regression tree by greedy variance reduction.
type treeBuilder struct {
	x        [][]float64
	target   []float64
	maxDepth int
	minLeaf  int
	nodes    []TreeNode
}

func (b *treeBuilder) build(idx []int) Tree {
	b.nodes = b.nodes[:0]
	b.grow(idx, 0)
	return Tree{Nodes: b.nodes}
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf {
		return b.leaf(idx)
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return b.leaf(idx)
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: feature, Threshold: threshold})
	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[node].Left = leftIdx
	b.nodes[node].Right = rightIdx
	return node
}

func (b *treeBuilder) leaf(idx []int) int {
	sum := 0.0
	for _, i := range idx {
		sum += b.target[i]
	}
	value := 0.0
	if len(idx) > 0 {
		value = sum / float64(len(idx))
	}

	node := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Value: value})
	return node
}

// bestSplit finds the (feature, threshold) pair maximizing the variance
// reduction of the target over idx. It scans each feature in sorted order
// using prefix sums; splits are only placed between distinct feature values
// and must leave at least minLeaf samples on each side.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	total := 0.0
	for _, i := range idx {
		total += b.target[i]
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	numFeatures := len(b.x[idx[0]])
	order := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool {
			return b.x[order[a]][f] < b.x[order[c]][f]
		})

		leftSum := 0.0
		for pos := 0; pos < n-1; pos++ {
			leftSum += b.target[order[pos]]
			nl := pos + 1
			nr := n - nl
			if nl < b.minLeaf || nr < b.minLeaf {
				continue
			}

			cur := b.x[order[pos]][f]
			next := b.x[order[pos+1]][f]
			if cur == next {
				continue
			}

			rightSum := total - leftSum
			// Gain relative to the unsplit node, dropping constant terms:
			// maximizing sum_l^2/n_l + sum_r^2/n_r minimizes the split SSE.
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr) - total*total/float64(n)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
