package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A TraceReader replays accesses from a text trace. Each line of the trace
// holds an operation and a hexadecimal address, such as `R 0x1000`,
// `W 0x2008`, or `I 0x1`. The address of an I line is a virtual page
// number. Empty lines and lines starting with # are skipped.
type TraceReader struct {
	scanner *bufio.Scanner
	lineNum int
}

// NewTraceReader creates a TraceReader that reads from r.
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{
		scanner: bufio.NewScanner(r),
	}
}

// NextAccess returns the next access of the trace. It panics when the trace
// is malformed.
func (t *TraceReader) NextAccess() (Access, bool) {
	for t.scanner.Scan() {
		t.lineNum++

		line := strings.TrimSpace(t.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return t.parseLine(line), true
	}

	return Access{}, false
}

func (t *TraceReader) parseLine(line string) Access {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		panic(fmt.Errorf("trace line %d: expected `<op> <addr>`, got %q",
			t.lineNum, line))
	}

	var op Op
	switch fields[0] {
	case "R", "r":
		op = OpRead
	case "W", "w":
		op = OpWrite
	case "I", "i":
		op = OpInvalidate
	default:
		panic(fmt.Errorf("trace line %d: unknown operation %q",
			t.lineNum, fields[0]))
	}

	addr, err := strconv.ParseUint(
		strings.TrimPrefix(fields[1], "0x"), 16, 64)
	if err != nil {
		panic(fmt.Errorf("trace line %d: cannot parse address %q",
			t.lineNum, fields[1]))
	}

	return Access{Op: op, Addr: addr}
}
