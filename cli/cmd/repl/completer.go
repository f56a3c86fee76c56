package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tagmacro/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "keys", "funcs", "data", "set", "edit", "clear", "quit"}

// completion identifies what the word at the cursor names.
type completion int

const (
	completeNone completion = iota
	completeKey             // data key after <#, <##, <[, or {{
	completeFunc            // function name after <{
)

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. This includes whitespace, the member-access dot, and the
// characters that make up tag delimiters. Hyphens are intentionally excluded
// because identifiers may contain them (e.g., first-name).
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'<', '>', '#', '~', '`',
		'{', '}', '[', ']', '(', ')',
		'*', '?', '+', ',', ':', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// chainStart returns the byte offset where the dotted member-access chain
// ending at wordStart begins. For "<#user.address.ci" with the word "ci",
// the chain starts at the "u" of "user".
func chainStart(input string, wordStart int) int {
	pos := wordStart

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return pos
}

// parentPath returns the dot-separated prefix path leading up to the current
// word. For input "<#server.http.ho" with the word "ho", the parent path is
// "server.http". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	start := chainStart(input, wordStart)

	return strings.Trim(input[start:wordStart], ".")
}

// tagContext reports what the dotted chain starting at start names, judged
// by the tag opener immediately before it.
func tagContext(input string, start int) completion {
	prefix := input[:start]

	switch {
	case strings.HasSuffix(prefix, "<{"):
		return completeFunc

	case strings.HasSuffix(prefix, "<#"),
		strings.HasSuffix(prefix, "<##"),
		strings.HasSuffix(prefix, "<["),
		strings.HasSuffix(strings.TrimRight(prefix, " \t"), "{{"):
		return completeKey
	}

	return completeNone
}

// childCandidates returns the keys that are valid completions for the given
// parent path: the top-level keys for an empty parent, or the keys of the
// nested mapping the parent resolves to.
func childCandidates(data *lang.Data, parent string) []string {
	if data == nil {
		return nil
	}

	if parent == "" {
		return data.Keys()
	}

	value, ok := lang.Resolve(data, strings.Split(parent, "."))
	if !ok {
		return nil
	}

	if nested, ok := value.(*lang.Data); ok {
		return nested.Keys()
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the byte range the chosen candidate replaces. When the current word is
// empty at the top level, it returns nil matches. When the word is empty
// after a dot (member access), it returns all children as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" || ws != 0 {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	start := chainStart(input, ws)

	switch tagContext(input, start) {
	case completeFunc:
		// Function names may contain dots, so the whole chain is the word.
		word = input[start:we]
		wordStart = start
		candidates = m.funcs

	case completeKey:
		parent := parentPath(input, ws)
		candidates = childCandidates(m.data, parent)

		// After a dot, show all children immediately so the user can browse
		// the available members.
		if word == "" && parent != "" {
			return allMatches(candidates), candidates, wordStart, wordEnd
		}

	default:
		return nil, nil, wordStart, wordEnd
	}

	if word == "" || len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// allMatches returns every candidate as an unfiltered match.
func allMatches(candidates []string) fuzzy.Matches {
	if len(candidates) == 0 {
		return nil
	}

	matches := make(fuzzy.Matches, len(candidates))
	for i, c := range candidates {
		matches[i] = fuzzy.Match{Str: c, Index: i}
	}

	return matches
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlightStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlightStyle = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
