package squareroot

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
	assert.Equal(t, 16, ds.NumClasses())

	counts := datasets.TallyLabels(ds).Counts()
	for k, c := range counts {
		assert.Equal(t, 2*k+1, c, "root %d", k)
	}
	w := ds.ClassWeight()
	assert.Greater(t, w[0], w[15], "rare roots weigh more")

	x, err := ds.Raw(5)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 1, 0, 0, 0, 0, 0}, x.Data)
	assert.Equal(t, 2, ds.Label(5))
}

func TestSizes(t *testing.T) {
	ds, err := New(datasets.Options{Args: config.Args{"size": "medium"}})
	require.NoError(t, err)
	assert.Equal(t, 1024, ds.Len())
	assert.Equal(t, 32, ds.NumClasses())

	_, err = New(datasets.Options{Args: config.Args{"size": "galactic"}})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}
