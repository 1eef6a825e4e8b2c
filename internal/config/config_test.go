package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngspe/mintyml-go/mintyml"
)

func TestLoadAppliesOverFlagDefaults(t *testing.T) {
	data := []byte("xml: true\nindent: 4\nspecialTags:\n  strong: b\n")
	f, err := Load(data)
	require.NoError(t, err)

	opts := f.Apply(mintyml.DefaultOptions())
	assert.True(t, opts.XML)
	require.NotNil(t, opts.Indent)
	assert.Equal(t, 4, *opts.Indent)
	require.Contains(t, opts.SpecialTags, "strong")
	require.NotNil(t, opts.SpecialTags["strong"])
	assert.Equal(t, "b", *opts.SpecialTags["strong"])
}

func TestLoadNullSpecialTagMeansUnwrap(t *testing.T) {
	f, err := Load([]byte("specialTags:\n  quote: null\n"))
	require.NoError(t, err)

	opts := f.Apply(mintyml.DefaultOptions())
	require.Contains(t, opts.SpecialTags, "quote")
	assert.Nil(t, opts.SpecialTags["quote"])
}

func TestLoadEmptyDocument(t *testing.T) {
	f, err := Load([]byte(""))
	require.NoError(t, err)
	opts := f.Apply(mintyml.DefaultOptions())
	assert.Equal(t, mintyml.DefaultOptions(), opts)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load([]byte("bogus: true\n"))
	require.Error(t, err)
}

func TestLoadRejectsWrongType(t *testing.T) {
	_, err := Load([]byte("indent: \"four\"\n"))
	require.Error(t, err)
}
