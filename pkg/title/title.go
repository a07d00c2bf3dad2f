package title

import "strings"

// maxLength matches the width of the title column in storage.
const maxLength = 255

// Derive computes a note's display title from its content.
//
// The title is the first line of the content with any run of leading
// '#' characters (markdown heading markers) and the whitespace after
// them removed, then trimmed. Empty content yields an empty title.
//
// Note creation and note updates must both go through this function;
// the stored title is never edited directly.
func Derive(content string) string {
	line := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}

	line = strings.TrimLeft(line, "#")
	line = strings.TrimSpace(line)

	if len(line) > maxLength {
		line = line[:maxLength]
	}

	return line
}
