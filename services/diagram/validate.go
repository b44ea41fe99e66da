package diagram

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// Recognized diagram headers. Anything else is rejected before any network
// I/O happens.
var headerPattern = regexp.MustCompile(`^(graph\s+(TD|LR|BT|RL)|flowchart\s+(TD|LR|BT|RL)|sequenceDiagram|classDiagram|erDiagram|stateDiagram-v2|gantt|journey)\b`)

var nodePattern = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\s*[\[({]`)

const maxRecommendedNodes = 50

// Validate checks that source looks like renderable diagram code: a known
// header, no fenced-code markers and balanced bracket pairs. An excessive
// node count only logs a warning.
func Validate(source string) error {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return fmt.Errorf("diagram source is empty")
	}

	if strings.Contains(trimmed, "```") {
		return fmt.Errorf("diagram source contains fenced-code markers")
	}

	if !headerPattern.MatchString(trimmed) {
		firstLine := trimmed
		if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
			firstLine = firstLine[:idx]
		}
		return fmt.Errorf("diagram source does not start with a recognized dialect header: %q", firstLine)
	}

	if err := checkBalancedBrackets(trimmed); err != nil {
		return err
	}

	if n := countDistinctNodes(trimmed); n > maxRecommendedNodes {
		log.Printf("[WARN] Diagram has %d distinct nodes, above the recommended maximum of %d", n, maxRecommendedNodes)
	}

	return nil
}

func checkBalancedBrackets(source string) error {
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []rune
	for _, r := range source {
		switch r {
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Errorf("diagram source has unbalanced %q", string(r))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("diagram source has %d unclosed brackets", len(stack))
	}
	return nil
}

func countDistinctNodes(source string) int {
	seen := make(map[string]bool)
	for _, match := range nodePattern.FindAllString(source, -1) {
		name := strings.TrimRight(strings.TrimSpace(match), "[({ \t")
		if name != "" {
			seen[name] = true
		}
	}
	return len(seen)
}

// Sanitize strips backticks and %% comment lines before submission to the
// rendering service.
func Sanitize(source string) string {
	withoutBackticks := strings.ReplaceAll(source, "`", "")

	lines := strings.Split(withoutBackticks, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%%") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
