package repl

import (
	"sort"
	"strings"
	"unicode"
)

// Keywords are the words offered by the default completer.
var Keywords = []string{
	"clear", "describe", "desc", "exit", "help", "info", "keyspaces", "quit",
	"source", "table", "tables",
	"select", "from", "where", "insert", "into", "values", "update", "set",
	"delete", "create", "drop", "alter", "database", "use", "show",
	"databases", "order", "group", "by", "limit", "join", "primary", "key",
}

// Completer completes the word under the cursor with known keywords. Words
// returns extra candidates, such as keyspace or table names, on every call.
type Completer struct {
	Keywords []string
	Words    func() []string
}

// NewCompleter returns a Completer for the default keywords.
func NewCompleter(words func() []string) *Completer {
	return &Completer{Keywords: Keywords, Words: words}
}

// Do implements readline.AutoCompleter. It returns the missing suffixes of
// every candidate and the length of the word being completed.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if pos > len(line) {
		pos = len(line)
	}

	start := pos
	for start > 0 && !unicode.IsSpace(line[start-1]) {
		start--
	}

	word := string(line[start:pos])
	n := pos - start
	if n == 0 {
		return nil, 0
	}

	upper := strings.ToUpper(word) == word && strings.ToLower(word) != word
	lower := strings.ToLower(word)

	var suffixes []string
	seen := make(map[string]bool)
	for _, candidate := range c.candidates() {
		runes := []rune(candidate)
		if len(runes) <= n || !strings.HasPrefix(strings.ToLower(candidate), lower) {
			continue
		}

		suffix := string(runes[n:])
		if upper {
			suffix = strings.ToUpper(suffix)
		}

		if !seen[suffix] {
			seen[suffix] = true
			suffixes = append(suffixes, suffix)
		}
	}

	sort.Strings(suffixes)
	for _, s := range suffixes {
		newLine = append(newLine, []rune(s))
	}

	return newLine, n
}

func (c *Completer) candidates() []string {
	if c.Words == nil {
		return c.Keywords
	}
	return append(append([]string(nil), c.Keywords...), c.Words()...)
}
