package estimator

import "fmt"

// leaf marks a node without children, matching the exported node arrays.
const leaf = -1

// treeDoc is a fitted regression tree in flattened parallel-array form.
type treeDoc struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

type treeModelDoc struct {
	header
	Tree treeDoc `json:"tree"`
}

type node struct {
	left, right int
	feature     int
	threshold   float64
	value       float64
}

// tree evaluates a single fitted regression tree.
type tree struct {
	nodes []node
	width int
}

// buildTree validates the arrays. Children must point forward so that
// evaluation always terminates.
func buildTree(doc treeDoc, width int) (*tree, error) {
	n := len(doc.Value)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrMalformed)
	}
	if len(doc.ChildrenLeft) != n || len(doc.ChildrenRight) != n || len(doc.Feature) != n || len(doc.Threshold) != n {
		return nil, fmt.Errorf("%w: tree arrays differ in length", ErrMalformed)
	}

	maxFeature := -1
	t := &tree{nodes: make([]node, n), width: width}
	for i := 0; i < n; i++ {
		l, r := doc.ChildrenLeft[i], doc.ChildrenRight[i]
		nd := node{left: l, right: r, feature: doc.Feature[i], threshold: doc.Threshold[i], value: doc.Value[i]}
		switch {
		case l == leaf && r == leaf:
		case l <= i || r <= i || l >= n || r >= n:
			return nil, fmt.Errorf("%w: invalid children at node %d", ErrMalformed, i)
		case nd.feature < 0:
			return nil, fmt.Errorf("%w: negative feature index at node %d", ErrMalformed, i)
		default:
			if nd.feature > maxFeature {
				maxFeature = nd.feature
			}
		}
		t.nodes[i] = nd
	}

	if width <= 0 {
		return nil, fmt.Errorf("%w: tree models must declare n_features", ErrMalformed)
	}
	if maxFeature >= width {
		return nil, fmt.Errorf("%w: tree splits on feature %d but n_features is %d", ErrMalformed, maxFeature, width)
	}
	return t, nil
}

func (t *tree) eval(row []float64) float64 {
	i := 0
	for {
		nd := t.nodes[i]
		if nd.left == leaf {
			return nd.value
		}
		if row[nd.feature] <= nd.threshold {
			i = nd.left
		} else {
			i = nd.right
		}
	}
}

// DecisionTree is a single regression tree.
type DecisionTree struct {
	t           *tree
	description string
}

func newDecisionTree(h header, doc treeModelDoc) (*DecisionTree, error) {
	t, err := buildTree(doc.Tree, h.NFeatures)
	if err != nil {
		return nil, err
	}
	return &DecisionTree{t: t, description: describe(h, "Decision Tree model")}, nil
}

// Predict implements Estimator.
func (m *DecisionTree) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, m.t.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.t.eval(row)
	}
	return out, nil
}

// NumFeatures implements Estimator.
func (m *DecisionTree) NumFeatures() int { return m.t.width }

// Describe implements Estimator.
func (m *DecisionTree) Describe() string { return m.description }
