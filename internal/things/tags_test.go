package things

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTagsTrimsAndLowercases(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("a, B , c"))
}

func TestParseTagsDropsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"go", "notes"}, ParseTags(" , Go,, notes ,"))
	assert.Empty(t, ParseTags(""))
	assert.Empty(t, ParseTags(" , "))
}

func TestParseTagsKeepsOrderAndDuplicates(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "b"}, ParseTags("b,A,B"))
}

func TestFormatTagsRoundTripsThroughParse(t *testing.T) {
	tags := ParseTags("Travel, food ,  2020")
	assert.Equal(t, "travel, food, 2020", FormatTags(tags))
	assert.Equal(t, tags, ParseTags(FormatTags(tags)))
}
