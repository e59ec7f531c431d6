package evaluate_test

import (
	"testing"

	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfig_LaterLayersWin(t *testing.T) {
	base := evaluate.Config{"enabled": true, "a": 1}
	kind := evaluate.Config{"a": 2, "b": "kind"}
	over := evaluate.Config{"b": "override", "c": 3.5}

	got := evaluate.MergeConfig(base, kind, over)

	assert.Equal(t, evaluate.Config{"enabled": true, "a": 2, "b": "override", "c": 3.5}, got)
	assert.Equal(t, 1, base["a"], "inputs must not be modified")
	assert.Equal(t, "kind", kind["b"])
}

func TestMergeConfig_NilLayers(t *testing.T) {
	got := evaluate.MergeConfig(nil, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConfig_Decode_WeakTypes(t *testing.T) {
	var out struct {
		Key  string   `mapstructure:"key"`
		Min  *float64 `mapstructure:"min"`
		Max  *float64 `mapstructure:"max"`
		Flag bool     `mapstructure:"flag"`
	}
	err := evaluate.Config{"key": "rmsd", "min": 1, "flag": "true"}.Decode(&out)
	require.NoError(t, err)

	assert.Equal(t, "rmsd", out.Key)
	require.NotNil(t, out.Min)
	assert.Equal(t, 1.0, *out.Min)
	assert.Nil(t, out.Max)
	assert.True(t, out.Flag)
}

func TestConfig_String_Sorted(t *testing.T) {
	c := evaluate.Config{"z": 1, "a": "x", "m": true}
	assert.Equal(t, "a=x, m=true, z=1", c.String())
}
