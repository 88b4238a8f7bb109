package text

import "strings"

// mosesEntities undoes the escaping applied by the Moses tokenizer.
var mosesEntities = strings.NewReplacer(
	"&apos;", "'",
	"&quot;", `"`,
	"&#124;", "|",
	"&#91;", "[",
	"&#93;", "]",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// UnescapeMoses replaces Moses XML escapes with the characters they stand for.
func UnescapeMoses(line string) string {
	if !strings.Contains(line, "&") {
		return line
	}
	return mosesEntities.Replace(line)
}
