package text

import "strings"

// BPEMarker joins a subword to the one that follows it.
const BPEMarker = "@@ "

// bpeTail is the marker form left at the very end of a line.
const bpeTail = "@@"

// StripBPE rejoins subwords split by BPE. Only marker bytes are removed;
// spacing elsewhere in the line is preserved. Removal repeats until no
// marker is left, so the result is stable under a second call.
func StripBPE(line string) string {
	for {
		s := strings.ReplaceAll(line, BPEMarker, "")
		s = strings.TrimSuffix(s, bpeTail)
		if s == line {
			return s
		}
		line = s
	}
}
