package span

// Invert returns the complement of sel within [0, docLen).
//
// sel must be sorted by start and non-overlapping. Zero-length spans are
// skipped and never split a gap. The result always ends with
// [cursor, docLen), which is zero-length when the selection reaches the end
// of the document.
func Invert(sel Selection, docLen int) Selection {
	out := make(Selection, 0, len(sel)+1)
	cursor := 0
	for _, sp := range sel {
		if sp.Start == sp.End {
			continue
		}
		if sp.Start > cursor {
			out = append(out, Span{Start: cursor, End: sp.Start})
		}
		cursor = sp.End
	}
	return append(out, Span{Start: cursor, End: docLen})
}

// TrimEmpty returns spans without the zero-length entries.
func TrimEmpty(spans Selection) Selection {
	out := make(Selection, 0, len(spans))
	for _, sp := range spans {
		if !sp.IsEmpty() {
			out = append(out, sp)
		}
	}
	return out
}
