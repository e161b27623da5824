package inputs

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// parseList reads a list of string entries. Accepted layouts are a JSON
// array, a YAML sequence, or one entry per line. In the line layout a #
// starts a comment that runs to the end of the line.
func parseList(data []byte) []string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var list []string
	if err := yaml.Unmarshal(trimmed, &list); err == nil && list != nil {
		return compact(list)
	}

	var out []string
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(stripComment(line))
		if len(line) == 0 {
			continue
		}
		out = append(out, string(line))
	}
	return out
}

func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		s = string(bytes.TrimSpace([]byte(s)))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
