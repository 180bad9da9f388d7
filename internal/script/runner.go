package script

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Executor runs one command line.
type Executor interface {
	Execute(line string) error
}

// Run executes every non-empty line of r in order. Lines starting with "//"
// or "#" are comments. Execution stops at the first failing line.
func Run(r io.Reader, e Executor) (int, error) {
	sc := bufio.NewScanner(r)
	lineNo, executed := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if err := e.Execute(line); err != nil {
			return executed, fmt.Errorf("line %d: %w", lineNo, err)
		}
		executed++
	}
	if err := sc.Err(); err != nil {
		return executed, fmt.Errorf("reading script: %w", err)
	}
	return executed, nil
}
