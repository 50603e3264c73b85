package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Nil(t, DedupeAndTrim(nil))
}

func TestPointerHelpers(t *testing.T) {
	assert.Nil(t, TrimSpacePtr(nil))
	name := " Kv 12 "
	assert.Equal(t, "Kv 12", *TrimSpacePtr(&name))

	assert.Nil(t, DedupeAndTrimPtr(nil))
	ids := []string{"P1", " P1", "P2"}
	assert.Equal(t, []string{"P1", "P2"}, *DedupeAndTrimPtr(&ids))

	blank := []string{" ", ""}
	cleared := DedupeAndTrimPtr(&blank)
	if assert.NotNil(t, cleared) {
		assert.Empty(t, *cleared)
	}
}
