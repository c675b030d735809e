// Package redact masks credentials in script commands before they are
// written to the launch log.
package redact

import (
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

const Mask = "<redacted>"

type rule struct {
	re   *regexp.Regexp
	repl string
}

type Redactor struct {
	secretLike []rule
	flagValue  map[string]bool
	envAssign  *regexp.Regexp
}

func Default() *Redactor {
	return &Redactor{
		secretLike: []rule{
			{regexp.MustCompile(`(?i)^\s*authorization:.*$`), Mask},
			{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{8,}`), "Bearer " + Mask},
			{regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/\s:@]+:[^/\s@]+@`), "${1}" + Mask + "@"},
			{regexp.MustCompile(`(?i)\bghp_[A-Za-z0-9]{20,}\b`), Mask},
			{regexp.MustCompile(`(?i)\bgithub_pat_[A-Za-z0-9_]{20,}\b`), Mask},
			{regexp.MustCompile(`\bnpm_[A-Za-z0-9]{36}\b`), Mask},
			{regexp.MustCompile(`(?i)\bAKIA[0-9A-Z]{16}\b`), Mask},
			{regexp.MustCompile(`(?i)\bxox[baprs]-[A-Za-z0-9-]{10,}\b`), Mask},
			{regexp.MustCompile(`(?i)\beyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`), Mask},
		},
		flagValue: map[string]bool{
			"--token": true, "--password": true, "--pass": true,
			"--apikey": true, "--api-key": true, "--otp": true, "--auth": true,
		},
		// NPM_TOKEN=... npm publish
		envAssign: regexp.MustCompile(`(?i)^[A-Z0-9_]*(TOKEN|SECRET|PASSWORD|PASSWD|API_?KEY)[A-Z0-9_]*=`),
	}
}

func (r *Redactor) RedactArgs(argv []string) []string {
	out := make([]string, 0, len(argv))
	skipNext := false
	for i, a := range argv {
		if skipNext {
			out = append(out, Mask)
			skipNext = false
			continue
		}
		if r.flagValue[a] && i+1 < len(argv) {
			out = append(out, a)
			skipNext = true
			continue
		}
		if k, _, ok := strings.Cut(a, "="); ok && r.flagValue[k] {
			out = append(out, k+"="+Mask)
			continue
		}
		if m := r.envAssign.FindString(a); m != "" && len(m) < len(a) {
			out = append(out, m+Mask)
			continue
		}
		out = append(out, r.RedactText(a))
	}
	return out
}

func (r *Redactor) RedactText(s string) string {
	out := s
	for _, rl := range r.secretLike {
		out = rl.re.ReplaceAllString(out, rl.repl)
	}
	return out
}

// Command redacts a shell command line. Each word is located in the raw
// line, unquoted with shell rules and checked like an argv element; only the
// words that change are rewritten, so operators and the quoting of the rest
// of the line are kept. A line that does not split is redacted as plain text.
func (r *Redactor) Command(cmd string) string {
	spans, ok := wordSpans(cmd)
	if !ok || len(spans) == 0 {
		return r.RedactText(cmd)
	}
	argv := make([]string, len(spans))
	for i, sp := range spans {
		w, err := shellquote.Split(cmd[sp[0]:sp[1]])
		if err != nil || len(w) != 1 {
			return r.RedactText(cmd)
		}
		argv[i] = w[0]
	}
	red := r.RedactArgs(argv)

	var b strings.Builder
	last := 0
	for i, sp := range spans {
		if red[i] == argv[i] {
			continue
		}
		b.WriteString(cmd[last:sp[0]])
		b.WriteString(requote(cmd[sp[0]:sp[1]], red[i]))
		last = sp[1]
	}
	b.WriteString(cmd[last:])
	return b.String()
}

// wordSpans returns the [start, end) byte offsets of the shell words in s.
// It reports false on an unterminated quote or a trailing backslash.
func wordSpans(s string) ([][2]int, bool) {
	var spans [][2]int
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n':
			i++
			continue
		case '\\':
			if i+1 < len(s) && s[i+1] == '\n' {
				i += 2
				continue
			}
		}
		start := i
	word:
		for i < len(s) {
			switch s[i] {
			case ' ', '\t', '\n':
				break word
			case '\\':
				i += 2
			case '\'':
				j := strings.IndexByte(s[i+1:], '\'')
				if j < 0 {
					return nil, false
				}
				i += j + 2
			case '"':
				i++
				for i < len(s) && s[i] != '"' {
					if s[i] == '\\' {
						i++
					}
					i++
				}
				if i >= len(s) {
					return nil, false
				}
				i++
			default:
				i++
			}
		}
		if i > len(s) {
			return nil, false
		}
		spans = append(spans, [2]int{start, i})
	}
	return spans, true
}

// requote keeps the quotes of a fully quoted word around its replacement.
func requote(raw, repl string) string {
	if n := len(raw); n >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[n-1] == raw[0] {
		return string(raw[0]) + repl + string(raw[0])
	}
	return repl
}
