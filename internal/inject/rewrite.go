package inject

// Segment replaces lines Start..End (inclusive) of the original text.
type Segment struct {
	Start int
	End   int
	Lines []string
}

// Rewrite materializes lines with segments applied in one ascending pass.
// Segments must be sorted by Start and must not overlap; a segment that
// starts inside an earlier one is ignored. Line indexes always refer to the
// original input, so no segment shifts another.
func Rewrite(lines []string, segments []Segment) []string {
	out := make([]string, 0, len(lines))
	next := 0

	for i := 0; i < len(lines); {
		for next < len(segments) && segments[next].Start < i {
			next++
		}
		if next < len(segments) && segments[next].Start == i {
			seg := segments[next]
			out = append(out, seg.Lines...)
			next++
			if seg.End < i {
				seg.End = i
			}
			i = seg.End + 1
			continue
		}
		out = append(out, lines[i])
		i++
	}

	return out
}
