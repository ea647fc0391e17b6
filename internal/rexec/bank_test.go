package rexec

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_SaveAndGet(t *testing.T) {
	b := NewBank()
	re := regexp.MustCompile(`(?P<word>\w+)`)
	require.NoError(t, b.Save("words", "split into words", re))

	e, ok := b.Get("words")
	require.True(t, ok)
	assert.Equal(t, "split into words", e.Info)
	assert.Equal(t, []string{"word"}, e.Groups)
	assert.Same(t, re, e.Pattern)
}

func TestBank_DuplicateName(t *testing.T) {
	b := NewBank()
	re := regexp.MustCompile(`x`)
	require.NoError(t, b.Save("x", "", re))

	err := b.Save("x", "", re)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameInUse))
}

func TestBank_Print(t *testing.T) {
	b := NewBank()
	b.MustSave("one", "first", regexp.MustCompile(`(?P<g>1)`))
	b.MustSave("two", "second", regexp.MustCompile(`2`))

	var buf bytes.Buffer
	b.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "one: first")
	assert.Contains(t, out, "groups:  g")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("one:")), bytes.Index(buf.Bytes(), []byte("two:")))
}

func TestDefaultBank_HasGroupNamePattern(t *testing.T) {
	e, ok := Default.Get("parseRegexGroupNames")
	require.True(t, ok)
	assert.Equal(t, []string{"groupName"}, e.Groups)
}
