package isalnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
)

func TestNew(t *testing.T) {
	ds, err := New(datasets.Options{Train: true, Args: config.Args{"class_weight": "balanced"}})
	require.NoError(t, err)
	assert.Equal(t, 256, ds.Len())
	assert.Equal(t, []int{194, 62}, datasets.TallyLabels(ds).Counts())
	assert.Greater(t, ds.ClassWeight()[1], ds.ClassWeight()[0])

	assert.Equal(t, 1, ds.Label('q'))
	assert.Equal(t, 0, ds.Label('_'))
	x, err := ds.Raw('A')
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 0, 1, 0}, x.Data)
}

func TestNewRejectsArgs(t *testing.T) {
	_, err := New(datasets.Options{Args: config.Args{"size": "small"}})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}
