package summary

import (
	"fmt"
	"strings"
)

// Section headings every summary must contain, in this order.
const (
	HeadingAuthor = "## Author & Work Introduction"
	HeadingGenre  = "## Genre & Characteristics"
	HeadingPlot   = "## Plot Summary"
)

// Headings lists the required headings in order.
var Headings = []string{HeadingAuthor, HeadingGenre, HeadingPlot}

const systemInstruction = `You are a book information analyst.
Always use the Google Search tool to look up current information about the book the user names before answering.
Answer in Markdown with exactly these three sections, in this order, and nothing else:

` + HeadingAuthor + `
` + HeadingGenre + `
` + HeadingPlot + `

Do not add greetings, closing remarks, opinions, or speculation. Write in the language of the book title.`

// userPrompt names the book to analyse. An empty category is sent as "unspecified".
func userPrompt(title, category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = "unspecified"
	}
	return fmt.Sprintf("Search for and summarize this book. Title: '%s', category: '%s'",
		strings.TrimSpace(title), category)
}
