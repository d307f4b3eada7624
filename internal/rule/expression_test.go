package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeaf(t *testing.T) {
	expr, err := Parse([]byte(`{"kind":"duels_won","threshold":10}`))
	require.NoError(t, err)
	assert.True(t, expr.IsLeaf())
	assert.Equal(t, "duels_won", expr.Kind)
	assert.Equal(t, 10.0, expr.Threshold)
}

func TestParseComposite(t *testing.T) {
	expr, err := Parse([]byte(`{"all":[{"kind":"duels_won","threshold":5},{"kind":"study_minutes","threshold":60}]}`))
	require.NoError(t, err)
	assert.False(t, expr.IsLeaf())
	require.Len(t, expr.All, 2)
	assert.Equal(t, "study_minutes", expr.All[1].Kind)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"moons_landed","threshold":1}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseRejectsZeroThreshold(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"duels_won","threshold":0}`))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = Parse([]byte(`{"kind":"duels_won","threshold":-3}`))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestParseRejectsAmbiguousNode(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"duels_won","threshold":1,"all":[{"kind":"duels_lost","threshold":1}]}`))
	assert.ErrorIs(t, err, ErrAmbiguousExpression)

	_, err = Parse([]byte(`{"all":[{"kind":"duels_won","threshold":1}],"any":[{"kind":"duels_lost","threshold":1}]}`))
	assert.ErrorIs(t, err, ErrAmbiguousExpression)
}

func TestParseRejectsEmptyShapes(t *testing.T) {
	_, err := Parse([]byte(`{}`))
	assert.ErrorIs(t, err, ErrEmptyExpression)

	_, err = Parse([]byte(`{"all":[]}`))
	assert.ErrorIs(t, err, ErrEmptyComposite)

	_, err = Parse([]byte(`{"any":[]}`))
	assert.ErrorIs(t, err, ErrEmptyComposite)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"kind":"duels_won","treshold":10}`))
	require.Error(t, err)
}

func TestParseRejectsInvalidNestedChild(t *testing.T) {
	_, err := Parse([]byte(`{"any":[{"kind":"duels_won","threshold":5},{"kind":"bad_kind","threshold":1}]}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecodeToleratesUnknownKind(t *testing.T) {
	// Decode is the evaluation-path reader: a retired kind must still load.
	expr, err := Decode([]byte(`{"kind":"moons_landed","threshold":1}`))
	require.NoError(t, err)
	assert.Equal(t, "moons_landed", expr.Kind)
}

func TestKnownKindsAreSelfConsistent(t *testing.T) {
	for _, kind := range KnownKinds {
		assert.True(t, IsKnownKind(kind), kind)
	}
	assert.False(t, IsKnownKind("not_a_kind"))
}
