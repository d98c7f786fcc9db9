package assistant

import "strings"

// markupReplacer strips the fixed set of lightweight markup tokens the model
// tends to sprinkle into replies. This is deliberately not a markdown parser;
// display and speech just want the bare words.
var markupReplacer = strings.NewReplacer(
	"**", "",
	"__", "",
	"*", "",
	"_", "",
	"#", "",
	"`", "",
)

// StripMarkup returns the text with bold/italic/heading/code markers removed.
func StripMarkup(text string) string {
	return markupReplacer.Replace(text)
}
