// Package ruleparse scans the taxonomy rule file for the one gate shape this
// system understands: "output A-B" followed by an expression of the form
// "$A == <literal> and $B > 0", meaning field B is required when gate field A
// carries the literal. Everything else in the rule language is out of this
// grammar and is skipped with a diagnostic, never guessed at.
package ruleparse

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// reservedSuffix marks rule names that belong to the arithmetic sum-check
// family, which this parser deliberately does not interpret.
const reservedSuffix = "-sum"

// Rule is one extracted gate dependency.
type Rule struct {
	// Name is the raw rule name as written, e.g. "A1-B2".
	Name string
	// Controlled is the canonical id of the field the rule gates.
	Controlled string
	// Gate is the canonical id of the controlling field.
	Gate string
	// Literal is the raw rule-language literal the gate must equal.
	Literal string
	// Message is the rule's message text, when present.
	Message string
}

var (
	outputPattern  = regexp.MustCompile(`^output\s+(\S+)\s*$`)
	gatePattern    = regexp.MustCompile(`^\$(\w+)\s*==\s*(?:'([^']*)'|"([^"]*)"|(\S+))\s+and\s+\$(\w+)\s*>\s*0\s*$`)
	messagePattern = regexp.MustCompile(`^message\s+"((?:[^"\\]|\\.)*)"\s*$`)
)

// Parse scans one rule file. Unrecognized or reserved shapes are skipped and
// logged at debug/warn level; scanning itself only fails on read errors.
func Parse(r io.Reader, logger *slog.Logger) ([]Rule, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	lines := splitLines(string(data))
	var rules []Rule
	for i := 0; i < len(lines); i++ {
		m := outputPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		name := m[1]

		if strings.Count(name, "-") != 1 || strings.HasSuffix(name, reservedSuffix) {
			logger.Debug("skipping rule outside gate grammar", slog.String("rule", name))
			continue
		}

		rule, lastLine, ok := parseBody(name, lines, i+1)
		if !ok {
			logger.Warn("skipping unparseable output statement", slog.String("rule", name))
			continue
		}
		rules = append(rules, rule)
		i = lastLine
	}
	return rules, nil
}

// Gates returns the set of canonical gate field ids across the rules.
func Gates(rules []Rule) map[string]bool {
	gates := make(map[string]bool, len(rules))
	for _, r := range rules {
		gates[r.Gate] = true
	}
	return gates
}

// parseBody reads the expression line and optional message line following an
// output statement at line index start.
func parseBody(name string, lines []string, start int) (Rule, int, bool) {
	expr, exprLine := nextContentLine(lines, start)
	if exprLine < 0 {
		return Rule{}, 0, false
	}
	m := gatePattern.FindStringSubmatch(expr)
	if m == nil {
		return Rule{}, 0, false
	}
	gate := m[1]
	literal := firstNonEmpty(m[2], m[3], m[4])
	controlled := m[5]

	hyphen := strings.Index(name, "-")
	if !strings.EqualFold(controlled, name[hyphen+1:]) {
		return Rule{}, 0, false
	}

	rule := Rule{
		Name:       name,
		Controlled: strings.ToLower(controlled),
		Gate:       strings.ToLower(gate),
		Literal:    literal,
	}

	last := exprLine
	if msg, msgLine := nextContentLine(lines, exprLine+1); msgLine >= 0 {
		if mm := messagePattern.FindStringSubmatch(msg); mm != nil {
			rule.Message = mm[1]
			last = msgLine
		}
	}
	return rule, last, true
}

func nextContentLine(lines []string, start int) (string, int) {
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if outputPattern.MatchString(line) {
			return "", -1
		}
		return line, i
	}
	return "", -1
}

// splitLines tolerates LF, CRLF, and bare-CR line endings.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
