package dispatch

import (
	"bytes"
	"errors"
	"strings"

	gojson "github.com/goccy/go-json"
)

var errNoReport = errors.New("no JSON object in output")

// varReport is the JSON document printed by the variable extractor.
type varReport struct {
	Variables  map[string]any `json:"variables"`
	PrintOrder []string       `json:"print_order"`
}

// extractReport finds the extractor's JSON object in stdout. The whole
// output is tried first, then each line, so diagnostic lines printed
// around the object are tolerated.
func extractReport(stdout string) (varReport, error) {
	var rep varReport
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return rep, errNoReport
	}
	if err := decodeObject(trimmed, &rep); err == nil {
		return rep, nil
	}

	var lastErr error = errNoReport
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := decodeObject(line, &rep); err != nil {
			lastErr = err
			continue
		}
		return rep, nil
	}
	return varReport{}, lastErr
}

func decodeObject(s string, v *varReport) error {
	if !strings.HasPrefix(s, "{") {
		return errNoReport
	}
	dec := gojson.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	*v = varReport{}
	return dec.Decode(v)
}
