package completion

import (
	"fmt"

	"go.lsp.dev/protocol"
)

// Items turns component names into completion items that insert an empty
// element, e.g. <nav-bar></nav-bar>.
func Items(names []string) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label:            name,
			Kind:             protocol.CompletionItemKindClass,
			InsertText:       fmt.Sprintf("<%s></%s>", name, name),
			InsertTextFormat: protocol.InsertTextFormatPlainText,
			Documentation:    fmt.Sprintf("Call HTML6 component <%s>|</%s>", name, name),
		})
	}
	return items
}
