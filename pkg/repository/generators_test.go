package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorRegistry_RegisterAndGenerate(t *testing.T) {
	r := NewGeneratorRegistry()
	r.Register("seq", func() (any, error) { return int64(42), nil })

	v, err := r.Generate("seq")
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestGeneratorRegistry_UnknownNameErrors(t *testing.T) {
	r := NewGeneratorRegistry()
	_, err := r.Generate("missing")
	require.Error(t, err)
}

func TestGeneratorRegistry_RegisterReplacesExisting(t *testing.T) {
	r := NewGeneratorRegistry()
	r.Register("seq", func() (any, error) { return 1, nil })
	r.Register("seq", func() (any, error) { return 2, nil })

	v, err := r.Generate("seq")
	require.NoError(t, err)
	require.Equal(t, 2, v)
}
