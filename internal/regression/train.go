package regression

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"StockPredictor/internal/model"
)

// DefaultTestRatio is the share of points held out for evaluation.
const DefaultTestRatio = 0.20

// Options controls the train/evaluation partition.
type Options struct {
	TestRatio float64    // 0 means DefaultTestRatio
	Rand      *rand.Rand // nil means a fresh time-seeded source
}

// FitResult is everything produced by one training run.
type FitResult struct {
	Model     LinearModel
	Train     []model.Point
	Test      []model.Point
	Predicted []float64 // model output for each Test point, same order
	TrainedAt time.Time
}

// NewSeededRand returns a deterministic source for reproducible partitions.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Split shuffles pts and holds out ceil(ratio*n) of them for evaluation.
// The input slice is not modified.
func Split(pts []model.Point, ratio float64, rng *rand.Rand) (train, test []model.Point, err error) {
	if ratio < 0 || ratio >= 1 {
		return nil, nil, errors.New("test ratio must be in [0, 1)")
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = NewSeededRand(now)
	}

	n := len(pts)
	nTest := int(math.Ceil(ratio * float64(n)))
	if nTest > n {
		nTest = n
	}

	shuffled := make([]model.Point, n)
	copy(shuffled, pts)
	rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	test = shuffled[:nTest]
	train = shuffled[nTest:]
	return train, test, nil
}

// Train partitions pts, fits the training subset and predicts the evaluation subset.
func Train(pts []model.Point, opts Options) (*FitResult, error) {
	ratio := opts.TestRatio
	if ratio == 0 {
		ratio = DefaultTestRatio
	}

	train, test, err := Split(pts, ratio, opts.Rand)
	if err != nil {
		return nil, err
	}

	m, err := Fit(train)
	if err != nil {
		return nil, err
	}

	// Ascending dates so the evaluation table reads chronologically.
	model.SortPoints(test)

	return &FitResult{
		Model:     m,
		Train:     train,
		Test:      test,
		Predicted: m.PredictAll(test),
		TrainedAt: time.Now(),
	}, nil
}
