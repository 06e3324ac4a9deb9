package estimator

import "fmt"

type forestDoc struct {
	header
	Trees []treeDoc `json:"trees"`
}

type boostingDoc struct {
	header
	Init         float64   `json:"init"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []treeDoc `json:"trees"`
}

// buildTrees decodes every tree with a shared row width.
func buildTrees(docs []treeDoc, width int) ([]*tree, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: ensemble has no trees", ErrMalformed)
	}
	trees := make([]*tree, len(docs))
	for i, d := range docs {
		t, err := buildTree(d, width)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = t
	}
	return trees, nil
}

// RandomForest averages the predictions of its trees.
type RandomForest struct {
	trees       []*tree
	width       int
	description string
}

func newRandomForest(h header, doc forestDoc) (*RandomForest, error) {
	trees, err := buildTrees(doc.Trees, h.NFeatures)
	if err != nil {
		return nil, err
	}
	return &RandomForest{trees: trees, width: h.NFeatures, description: describe(h, "Random Forest model")}, nil
}

// Predict implements Estimator.
func (m *RandomForest) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, m.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, t := range m.trees {
			sum += t.eval(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out, nil
}

// NumFeatures implements Estimator.
func (m *RandomForest) NumFeatures() int { return m.width }

// Describe implements Estimator.
func (m *RandomForest) Describe() string { return m.description }

// GradientBoosting sums scaled tree corrections on top of an initial value.
type GradientBoosting struct {
	init         float64
	learningRate float64
	trees        []*tree
	width        int
	description  string
}

func newGradientBoosting(h header, doc boostingDoc) (*GradientBoosting, error) {
	if doc.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: learning_rate must be positive", ErrMalformed)
	}
	trees, err := buildTrees(doc.Trees, h.NFeatures)
	if err != nil {
		return nil, err
	}
	return &GradientBoosting{
		init:         doc.Init,
		learningRate: doc.LearningRate,
		trees:        trees,
		width:        h.NFeatures,
		description:  describe(h, "Gradient Boosting model"),
	}, nil
}

// Predict implements Estimator.
func (m *GradientBoosting) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, m.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		y := m.init
		for _, t := range m.trees {
			y += m.learningRate * t.eval(row)
		}
		out[i] = y
	}
	return out, nil
}

// NumFeatures implements Estimator.
func (m *GradientBoosting) NumFeatures() int { return m.width }

// Describe implements Estimator.
func (m *GradientBoosting) Describe() string { return m.description }
