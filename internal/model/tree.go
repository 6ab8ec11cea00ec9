package model

import "sort"

// CART-style decision tree with gini impurity splits. Depth and sample
// minimums are bounded so the tree does not memorize synthetic noise.

type treeNode struct {
	// Internal nodes
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	// Leaves
	leaf  bool
	class int
	probs []float64
}

type decisionTree struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	numClasses      int

	root       *treeNode
	gains      []float64 // impurity decrease accumulated per feature
	numSamples int
}

func newDecisionTree(numFeatures, numClasses int) *decisionTree {
	return &decisionTree{
		maxDepth:        5,
		minSamplesSplit: 10,
		minSamplesLeaf:  5,
		numClasses:      numClasses,
		gains:           make([]float64, numFeatures),
	}
}

func (t *decisionTree) fit(X [][]float64, y []int) {
	t.numSamples = len(X)
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(X, y, idx, 0)
}

func (t *decisionTree) predict(x []float64) (int, []float64) {
	node := t.root
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.class, node.probs
}

// importances returns the normalized per-feature impurity decrease
// (split-gain importance), summing to 1 when any split occurred.
func (t *decisionTree) importances() []float64 {
	total := 0.0
	for _, g := range t.gains {
		total += g
	}
	out := make([]float64, len(t.gains))
	if total == 0 {
		return out
	}
	for i, g := range t.gains {
		out[i] = g / total
	}
	return out
}

func (t *decisionTree) build(X [][]float64, y []int, idx []int, depth int) *treeNode {
	counts := t.classCounts(y, idx)

	if depth >= t.maxDepth || len(idx) < t.minSamplesSplit || isPure(counts) {
		return t.makeLeaf(counts, len(idx))
	}

	feature, threshold, gain, leftIdx, rightIdx := t.bestSplit(X, y, idx, counts)
	if feature < 0 {
		return t.makeLeaf(counts, len(idx))
	}

	t.gains[feature] += float64(len(idx)) / float64(t.numSamples) * gain

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.build(X, y, leftIdx, depth+1),
		right:     t.build(X, y, rightIdx, depth+1),
	}
}

func (t *decisionTree) makeLeaf(counts []int, total int) *treeNode {
	probs := make([]float64, t.numClasses)
	best := 0
	for c, n := range counts {
		if total > 0 {
			probs[c] = float64(n) / float64(total)
		}
		if n > counts[best] {
			best = c
		}
	}
	return &treeNode{leaf: true, class: best, probs: probs}
}

// bestSplit scans every feature for the threshold with the largest weighted
// gini decrease, honoring the minimum leaf size. Returns feature -1 when no
// valid split exists.
func (t *decisionTree) bestSplit(X [][]float64, y []int, idx []int, parentCounts []int) (int, float64, float64, []int, []int) {
	n := len(idx)
	parentGini := gini(parentCounts, n)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	numFeatures := len(X[idx[0]])
	for f := 0; f < numFeatures; f++ {
		sorted := make([]int, n)
		copy(sorted, idx)
		sortByFeature(X, sorted, f)

		leftCounts := make([]int, t.numClasses)
		rightCounts := make([]int, t.numClasses)
		copy(rightCounts, parentCounts)

		for i := 0; i < n-1; i++ {
			c := y[sorted[i]]
			leftCounts[c]++
			rightCounts[c]--

			nLeft := i + 1
			nRight := n - nLeft
			if nLeft < t.minSamplesLeaf || nRight < t.minSamplesLeaf {
				continue
			}
			// Only split between distinct values
			if X[sorted[i]][f] == X[sorted[i+1]][f] {
				continue
			}

			weighted := float64(nLeft)/float64(n)*gini(leftCounts, nLeft) +
				float64(nRight)/float64(n)*gini(rightCounts, nRight)
			gain := parentGini - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (X[sorted[i]][f] + X[sorted[i+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, 0, nil, nil
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	return bestFeature, bestThreshold, bestGain, leftIdx, rightIdx
}

func (t *decisionTree) classCounts(y []int, idx []int) []int {
	counts := make([]int, t.numClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

// sortByFeature stably sorts the index slice by feature value. Ties keep
// their original order, so tree construction is deterministic.
func sortByFeature(X [][]float64, idx []int, f int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return X[idx[a]][f] < X[idx[b]][f]
	})
}
