package detector

import (
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
)

const (
	defaultTrees         = 100
	defaultSampleSize    = 256
	defaultContamination = 0.05
	defaultSeed          = 42
)

// Forest is an isolation forest: anomalies isolate in few random splits, so
// short average path lengths mean high anomaly scores. The score threshold
// is fixed at fit time so that roughly the contamination fraction of the
// training population lands above it.
type Forest struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64

	Roots     []*Node
	Threshold float64
	Dims      int
}

// Node is one node of an isolation tree. Leaves carry the size of the
// sample that ended there; internal nodes carry the split.
type Node struct {
	SplitAttr int
	SplitVal  float64
	Left      *Node
	Right     *Node
	Size      int
}

type Option func(*Forest)

func WithTrees(n int) Option { return func(f *Forest) { f.Trees = n } }

func WithSampleSize(n int) Option { return func(f *Forest) { f.SampleSize = n } }

func WithContamination(c float64) Option { return func(f *Forest) { f.Contamination = c } }

func WithSeed(s int64) Option { return func(f *Forest) { f.Seed = s } }

func New(opts ...Option) *Forest {
	f := &Forest{
		Trees:         defaultTrees,
		SampleSize:    defaultSampleSize,
		Contamination: defaultContamination,
		Seed:          defaultSeed,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit builds the forest on the training data and fixes the anomaly
// threshold at the (1-contamination) quantile of the training scores.
// Randomness is confined to Fit; the fitted forest predicts
// deterministically.
func (f *Forest) Fit(data [][]float64) error {
	if len(data) == 0 {
		return fmt.Errorf("fit: empty training data")
	}
	dims := len(data[0])
	if dims == 0 {
		return fmt.Errorf("fit: samples have no features")
	}
	for i, row := range data {
		if len(row) != dims {
			return fmt.Errorf("fit: sample %d has %d features, want %d", i, len(row), dims)
		}
	}
	if f.Contamination < 0 || f.Contamination >= 1 {
		return fmt.Errorf("fit: contamination %v out of range [0,1)", f.Contamination)
	}

	sample := f.SampleSize
	if sample > len(data) {
		sample = len(data)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Dims = dims
	f.Roots = make([]*Node, f.Trees)
	for i := range f.Roots {
		idx := rng.Perm(len(data))[:sample]
		sub := make([][]float64, sample)
		for j, k := range idx {
			sub[j] = data[k]
		}
		f.Roots[i] = buildTree(sub, 0, maxDepth, rng)
	}

	scores := make([]float64, len(data))
	for i, row := range data {
		scores[i] = f.score(row)
	}
	sort.Float64s(scores)

	// Highest contamination-fraction of training scores sit at or above the
	// threshold.
	k := int(f.Contamination*float64(len(scores)) + 0.5)
	if k < 1 {
		// contamination too small for the population: nothing flagged
		f.Threshold = scores[len(scores)-1] + 1
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}
	f.Threshold = scores[len(scores)-k]
	return nil
}

func buildTree(data [][]float64, depth, maxDepth int, rng *rand.Rand) *Node {
	if len(data) <= 1 || depth >= maxDepth {
		return &Node{Size: len(data)}
	}

	attr := rng.Intn(len(data[0]))
	min, max := data[0][attr], data[0][attr]
	for _, row := range data[1:] {
		if row[attr] < min {
			min = row[attr]
		}
		if row[attr] > max {
			max = row[attr]
		}
	}
	if min == max {
		return &Node{Size: len(data)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right [][]float64
	for _, row := range data {
		if row[attr] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return &Node{
		SplitAttr: attr,
		SplitVal:  split,
		Left:      buildTree(left, depth+1, maxDepth, rng),
		Right:     buildTree(right, depth+1, maxDepth, rng),
	}
}

// Predict labels each sample: -1 when its score reaches the fitted
// threshold, +1 otherwise.
func (f *Forest) Predict(data [][]float64) ([]int, error) {
	if len(f.Roots) == 0 {
		return nil, ErrNotFitted
	}
	preds := make([]int, len(data))
	for i, row := range data {
		if len(row) != f.Dims {
			return nil, fmt.Errorf("predict: sample %d has %d features, want %d", i, len(row), f.Dims)
		}
		if f.score(row) >= f.Threshold {
			preds[i] = PredAnomaly
		} else {
			preds[i] = PredNormal
		}
	}
	return preds, nil
}

// score is the standard isolation forest anomaly score in (0,1): higher
// means shorter average path, i.e. easier to isolate.
func (f *Forest) score(x []float64) float64 {
	var sum float64
	for _, root := range f.Roots {
		sum += pathLength(root, x, 0)
	}
	avg := sum / float64(len(f.Roots))
	sample := f.SampleSize
	return math.Pow(2, -avg/avgPathLength(sample))
}

func pathLength(n *Node, x []float64, depth float64) float64 {
	if n.Left == nil && n.Right == nil {
		return depth + avgPathLength(n.Size)
	}
	if x[n.SplitAttr] < n.SplitVal {
		return pathLength(n.Left, x, depth+1)
	}
	return pathLength(n.Right, x, depth+1)
}

const eulerGamma = 0.5772156649015329

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search over n items; normalizes path lengths across sample sizes.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}

// ===== persistence =====

// Save writes the fitted forest with gob. The artifact is a single opaque
// file with no versioning scheme.
func (f *Forest) Save(w io.Writer) error {
	if len(f.Roots) == 0 {
		return ErrNotFitted
	}
	return gob.NewEncoder(w).Encode(f)
}

// SaveFile persists the forest, creating parent directories as needed.
func (f *Forest) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Save(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// LoadForest reads a fitted forest back from its gob encoding.
func LoadForest(r io.Reader) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrModelUnavailable, err)
	}
	if len(f.Roots) == 0 {
		return nil, fmt.Errorf("%w: artifact holds no trees", ErrModelUnavailable)
	}
	return &f, nil
}

// LoadFile loads the model artifact from disk.
func LoadFile(path string) (*Forest, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, path)
	}
	defer in.Close()
	return LoadForest(in)
}
