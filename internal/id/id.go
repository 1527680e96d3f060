package id

import (
	"fmt"
	"strings"
)

// PathSeparator joins ancestor-to-self segments in full code and name paths.
const PathSeparator = " | "

// rankPrefixLen is the width of "NN-" in a rank-prefixed name.
const rankPrefixLen = 3

// FormatRank returns a sibling rank like "01". Ranks of 100 or more are wider, not truncated.
func FormatRank(rank int) string {
	return fmt.Sprintf("%02d", rank)
}

// RankedName prefixes a name with its sibling rank: "01-Assets".
func RankedName(rank, name string) string {
	return rank + "-" + name
}

// StripRank drops the leading "NN-" of a rank-prefixed name.
// Strings of three characters or fewer are returned unchanged.
// Ranks wider than two digits leave part of the prefix behind.
func StripRank(name string) string {
	r := []rune(name)
	if len(r) <= rankPrefixLen {
		return name
	}
	return string(r[rankPrefixLen:])
}

// JoinPath appends a segment to a parent path. An empty parent yields the segment itself.
func JoinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + PathSeparator + segment
}

// SplitPath returns the segments of a full path.
func SplitPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

// PathDepth returns the zero-based depth encoded by a full path.
func PathDepth(path string) int {
	return strings.Count(path, PathSeparator)
}

// Segment returns segment i of a full path with double quotes removed.
// When the path is shorter than i+1 the segment at fallback is returned,
// so a node repeats its own deepest segment in level columns below it.
func Segment(path string, i, fallback int) string {
	parts := SplitPath(path)
	switch {
	case i < len(parts):
		return strings.ReplaceAll(parts[i], `"`, "")
	case fallback >= 0 && fallback < len(parts):
		return strings.ReplaceAll(parts[fallback], `"`, "")
	default:
		return ""
	}
}
