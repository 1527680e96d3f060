package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRank(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{1, "01"},
		{9, "09"},
		{42, "42"},
		{100, "100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRank(tt.rank))
	}
}

func TestRankedName(t *testing.T) {
	assert.Equal(t, "01-Assets", RankedName("01", "Assets"))
	assert.Equal(t, "03-", RankedName("03", ""))
}

func TestStripRank(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"01-Assets", "Assets"},
		{"12-Cash", "Cash"},
		{"01-", "01-"},
		{"ab", "ab"},
		{"", ""},
		{"02-Účty", "Účty"},
		// Three-digit ranks leave the hyphen behind.
		{"100-Misc", "-Misc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripRank(tt.input), "StripRank(%q)", tt.input)
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "A1", JoinPath("", "A1"))
	assert.Equal(t, "A1 | A2", JoinPath("A1", "A2"))
	assert.Equal(t, "A1 | A2 | A3", JoinPath(JoinPath("A1", "A2"), "A3"))
}

func TestPathDepth(t *testing.T) {
	assert.Equal(t, 0, PathDepth("A1"))
	assert.Equal(t, 1, PathDepth("A1 | A2"))
	assert.Equal(t, 2, PathDepth("A1 | A2 | A3"))
}

func TestSegment(t *testing.T) {
	path := "A1 | A2 | A3"
	tests := []struct {
		i, fallback int
		want        string
	}{
		{0, 2, "A1"},
		{1, 2, "A2"},
		{2, 2, "A3"},
		{3, 2, "A3"},
		{9, 2, "A3"},
		{5, 7, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Segment(path, tt.i, tt.fallback), "Segment(%d, %d)", tt.i, tt.fallback)
	}
}

func TestSegment_StripsQuotes(t *testing.T) {
	assert.Equal(t, "01-Big Co", Segment(`"01-Big Co" | 01-Cash`, 0, 1))
}
