package plan

import "strings"

// RenderTree renders any Treeable as a box-drawing tree: a 4-space indent
// per depth level, "╟──" for a non-last sibling, "╙──" for the last, and
// "║" continuing a still-open ancestor branch down the left margin. This
// is a debug aid, not a stable machine-readable format.
func RenderTree(t Treeable) string {
	var b strings.Builder
	renderNode(&b, t, "")
	return b.String()
}

func renderNode(b *strings.Builder, t Treeable, prefix string) {
	b.WriteString(t.Label())
	b.WriteByte('\n')

	children := t.Children()
	for i, c := range children {
		isLast := i == len(children)-1
		var connector, childPrefix string
		if isLast {
			connector = prefix + "╙── "
			childPrefix = prefix + "    "
		} else {
			connector = prefix + "╟── "
			childPrefix = prefix + "║   "
		}
		b.WriteString(connector)
		renderNode(b, c, childPrefix)
	}
}
