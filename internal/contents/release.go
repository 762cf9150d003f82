package contents

import (
	"bufio"
	"io"
	"regexp"
)

// releaseFileLineRe matches one checksum entry in a Release or InRelease
// file: " <hash> <size> <relative path>". The hash itself is not
// verified here; the entries are only used to discover which index files
// actually exist for a distribution.
var releaseFileLineRe = regexp.MustCompile(`^ ([0-9a-fA-F]{32,}) +(\d+) +(\S+)$`)

// ParseReleaseFileList extracts the set of file paths listed in a
// Release/InRelease descriptor. PGP armor lines in InRelease files are
// simply ignored because they never match the entry shape.
func ParseReleaseFileList(r io.Reader) (map[string]bool, error) {
	files := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if m := releaseFileLineRe.FindStringSubmatch(scanner.Text()); m != nil {
			files[m[3]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
