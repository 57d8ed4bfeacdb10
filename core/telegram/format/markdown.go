package format

import "strings"

// markdownV1Escaper covers the four characters Telegram's legacy
// Markdown mode treats as markup.
var markdownV1Escaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes user-supplied text for Telegram Markdown (v1)
// so nicknames and descriptions cannot break message formatting.
func EscapeMarkdown(text string) string {
	return markdownV1Escaper.Replace(text)
}
