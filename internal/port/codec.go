package port

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/firefly-engineering/sshproxy-ctl/internal/address"
)

// Decode reads table entries in file order. Lines without exactly two
// whitespace-separated fields, whose fields do not parse, or whose port is
// below min are skipped. Line length is unbounded.
func Decode(r io.Reader, min int) ([]Entry, error) {
	var entries []Entry

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if e, ok := parseLine(line, min); ok {
				entries = append(entries, e)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("error reading port table: %w", err)
		}
	}

	return entries, nil
}

func parseLine(line string, min int) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Entry{}, false
	}

	addr, err := address.Parse(fields[0])
	if err != nil {
		return Entry{}, false
	}

	p, err := strconv.Atoi(fields[1])
	if err != nil || p < min || p > 65535 {
		return Entry{}, false
	}

	return Entry{Address: addr, Port: p}, true
}

// Encode writes entries in the canonical "a.b.c.d\tport\n" form.
func Encode(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(FormatLine(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatLine renders a single entry including its trailing newline.
func FormatLine(e Entry) string {
	return e.Address.String() + "\t" + strconv.Itoa(e.Port) + "\n"
}
