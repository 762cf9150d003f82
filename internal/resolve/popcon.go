package resolve

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParsePopconScores reads a popularity-contest "by_inst" listing and
// returns package installation counts. Lines look like
//
//	12 libssl-dev 48321 20133 ...
//
// Comment lines and the trailing Total row are skipped. Malformed lines
// are ignored rather than failing the whole file; popularity data is
// advisory.
func ParsePopconScores(r io.Reader) (map[string]int, error) {
	scores := make(map[string]int)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := fields[1]
		if name == "Total" {
			continue
		}
		inst, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		scores[name] = inst
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
