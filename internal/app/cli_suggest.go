package app

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const cliName = "npm-scripts-runner"

func printUnknownCommand(got string, candidates []string) {
	got = strings.TrimSpace(got)
	if got == "" {
		fmt.Fprintf(os.Stderr, "%s: missing command\n", cliName)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: unknown command: %s\n", cliName, got)
	printSuggestion([]string{cliName}, got, candidates)
	printAvailable("commands", candidates)
}

func printUnknownSubcommand(parent, got string, candidates []string) {
	got = strings.TrimSpace(got)
	if got == "" {
		fmt.Fprintf(os.Stderr, "%s: missing %s subcommand\n", cliName, parent)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: unknown %s subcommand: %s\n", cliName, parent, got)
	printSuggestion([]string{cliName, parent}, got, candidates)
	printAvailable(parent+" subcommands", candidates)
}

func printSuggestion(prefix []string, got string, candidates []string) {
	s, ok := bestCommandMatch(got, candidates)
	if !ok {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: try: %s\n", cliName, strings.Join(append(prefix, s), " "))
}

func printAvailable(label string, candidates []string) {
	if len(candidates) == 0 {
		return
	}
	sorted := append([]string{}, candidates...)
	sort.Strings(sorted)
	fmt.Fprintf(os.Stderr, "%s: available %s: %s\n", cliName, label, strings.Join(sorted, ", "))
}

func bestCommandMatch(got string, candidates []string) (string, bool) {
	g := strings.ToLower(strings.TrimSpace(got))
	if g == "" {
		return "", false
	}

	best := ""
	bestScore := 0
	bestLen := 0

	for _, c := range candidates {
		cl := strings.ToLower(c)
		score := 0
		switch {
		case strings.HasPrefix(cl, g):
			score = 3
		case strings.HasPrefix(g, cl):
			score = 2
		case len(g) >= 3 && len(cl) >= 3 && oneEditApart(g, cl):
			score = 2
		}

		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && (best == "" || len(c) < bestLen)) {
			best = c
			bestScore = score
			bestLen = len(c)
		}
	}

	return best, bestScore > 0
}

// oneEditApart reports whether a and b differ by one replacement, insertion,
// deletion or adjacent transposition.
func oneEditApart(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len(a), len(b)
	switch {
	case la == lb:
		var diff []int
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				diff = append(diff, i)
				if len(diff) > 2 {
					return false
				}
			}
		}
		if len(diff) == 1 {
			return true
		}
		i, j := diff[0], diff[1]
		return j == i+1 && a[i] == b[j] && a[j] == b[i]
	case la+1 == lb:
		return oneInsertAway(a, b)
	case lb+1 == la:
		return oneInsertAway(b, a)
	}
	return false
}

func oneInsertAway(shorter, longer string) bool {
	i, j := 0, 0
	skipped := false
	for i < len(shorter) && j < len(longer) {
		if shorter[i] == longer[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		j++
	}
	return true
}
