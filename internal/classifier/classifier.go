// Package classifier learns a description -> category mapping from confirmed ledger rows
// and predicts categories for unlabeled descriptions.
//
// A Model is an owned value: LoadData builds a new one from scratch on every call, and
// nothing is shared between models. Prediction first looks for a description seen during
// training (the most frequent label for it wins) and otherwise falls back to a
// multinomial naive Bayes over description tokens.
package classifier

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// Model is a trained classifier. The zero value and a nil *Model are untrained.
type Model struct {
	bayes     *bayesian.Classifier
	memorized map[string]string
	classes   []bayesian.Class
	examples  int
	mu        sync.Mutex
}

// LoadData fits a new model on every record with a non-empty category, using the
// description as the only feature. Records without a category are ignored; with none
// left the returned model is untrained.
func LoadData(records []model.Record) *Model {
	labelCounts := make(map[string]map[string]int)
	classSet := make(map[string]struct{})
	m := &Model{memorized: make(map[string]string)}

	type example struct {
		tokens []string
		label  string
	}
	var examples []example

	for _, r := range records {
		if !r.Confirmed() {
			continue
		}
		tokens := Tokenize(r.Description)
		key := strings.Join(tokens, " ")
		if labelCounts[key] == nil {
			labelCounts[key] = make(map[string]int)
		}
		labelCounts[key][r.Category]++
		classSet[r.Category] = struct{}{}
		examples = append(examples, example{tokens: tokens, label: r.Category})
	}

	m.examples = len(examples)
	if m.examples == 0 {
		return m
	}

	for key, counts := range labelCounts {
		m.memorized[key] = mostFrequent(counts)
	}

	// Sorted classes make score ties resolve the same way on every run.
	names := make([]string, 0, len(classSet))
	for name := range classSet {
		names = append(names, name)
	}
	sort.Strings(names)
	m.classes = make([]bayesian.Class, len(names))
	for i, name := range names {
		m.classes[i] = bayesian.Class(name)
	}

	// bayesian needs at least two classes; with one, every prediction is that class.
	if len(m.classes) >= 2 {
		m.bayes = bayesian.NewClassifier(m.classes...)
		for _, ex := range examples {
			m.bayes.Learn(ex.tokens, bayesian.Class(ex.label))
		}
	}

	return m
}

// Trained reports whether the model has seen at least one confirmed example.
func (m *Model) Trained() bool {
	return m != nil && m.examples > 0
}

// Examples returns the number of confirmed rows the model was fit on.
func (m *Model) Examples() int {
	if m == nil {
		return 0
	}
	return m.examples
}

// Classes returns the known categories in sorted order.
func (m *Model) Classes() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.classes))
	for i, c := range m.classes {
		out[i] = string(c)
	}
	return out
}

// Predict returns exactly one category per description, in input order.
// It fails with common.ErrModelNotTrained on an untrained model.
func (m *Model) Predict(descriptions []string) ([]string, error) {
	if !m.Trained() {
		return nil, fmt.Errorf("%w: no confirmed transactions to learn from", common.ErrModelNotTrained)
	}

	// Scoring updates counters inside bayesian.Classifier.
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(descriptions))
	for i, desc := range descriptions {
		out[i] = m.predictOne(desc)
	}
	return out, nil
}

func (m *Model) predictOne(description string) string {
	tokens := Tokenize(description)
	if label, ok := m.memorized[strings.Join(tokens, " ")]; ok {
		return label
	}
	if m.bayes == nil {
		return string(m.classes[0])
	}
	_, best, _ := m.bayes.LogScores(tokens)
	return string(m.classes[best])
}

// Tokenize lower-cases a description and splits it into letter/digit runs.
func Tokenize(description string) []string {
	return strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// mostFrequent picks the label with the highest count, breaking ties alphabetically.
func mostFrequent(counts map[string]int) string {
	best, bestCount := "", -1
	for label, n := range counts {
		if n > bestCount || (n == bestCount && label < best) {
			best, bestCount = label, n
		}
	}
	return best
}
