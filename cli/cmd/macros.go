package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/cropenv/resolve"
)

// Macros lists the available macros with their invocation templates.
type Macros struct {
	Pattern string `arg:"" help:"Fuzzy filter applied to macro names and aliases." optional:""`
}

// macroMatch is a macro selected by a pattern. Match.Str is the name or
// alias that matched.
type macroMatch struct {
	Macro resolve.Macro
	Match fuzzy.Match
}

// Run executes the macros command.
func (c *Macros) Run(ctx context.Context) error {
	stdout, _ := writers(ctx)

	for _, m := range matchMacros(resolverFrom(ctx).Table(), c.Pattern) {
		writeMacro(stdout, m)
	}

	return nil
}

// matchMacros returns the macros of t, ordered by name when pattern is
// empty and best match first otherwise. A macro matching by several names
// appears once, with its best match.
func matchMacros(t *resolve.Table, pattern string) []macroMatch {
	if pattern == "" {
		macros := t.Macros()
		out := make([]macroMatch, len(macros))

		for i, m := range macros {
			out[i] = macroMatch{Macro: m, Match: fuzzy.Match{Str: m.Name}}
		}

		return out
	}

	var (
		out  []macroMatch
		seen = map[string]struct{}{}
	)

	for _, match := range fuzzy.Find(pattern, t.Names()) {
		m, ok := t.Lookup(match.Str)
		if !ok {
			continue
		}

		if _, dup := seen[m.Name]; dup {
			continue
		}

		seen[m.Name] = struct{}{}
		out = append(out, macroMatch{Macro: m, Match: match})
	}

	return out
}

func writeMacro(w io.Writer, m macroMatch) {
	name := highlight(m.Macro.Name, macroNameStyle, m.Match)

	if len(m.Macro.Aliases) > 0 {
		aliases := make([]string, len(m.Macro.Aliases))
		for i, a := range m.Macro.Aliases {
			aliases[i] = highlight(a, macroAliasStyle, m.Match)
		}

		name += " " + macroDocStyle.Render("aka") + " " + strings.Join(aliases, " ")
	}

	fmt.Fprintln(w, name)
	fmt.Fprintf(w, "    %s\n", m.Macro.Template())

	if m.Macro.Doc != "" {
		fmt.Fprintf(w, "    %s\n", macroDocStyle.Render(m.Macro.Doc))
	}
}

// highlight renders s in style, emphasizing the matched characters when s
// is the string the match was made against.
func highlight(s string, style lipgloss.Style, match fuzzy.Match) string {
	if match.Str != s || len(match.MatchedIndexes) == 0 {
		return style.Render(s)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range s {
		if matched[i] {
			b.WriteString(macroMatchStyle.Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}

	return b.String()
}
