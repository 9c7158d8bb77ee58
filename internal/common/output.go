package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteOutput marshals v as yaml (default) or json and writes it to w.
func WriteOutput(w io.Writer, format string, v any) error {
	var outputData []byte
	var err error
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		outputData, err = yaml.Marshal(v)
	case "json":
		outputData, err = json.MarshalIndent(v, "", "  ")
		outputData = append(outputData, '\n')
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(outputData)
	return err
}

// ExitCode maps a failure count to the process exit status: 0 when nothing
// failed, 2 when everything failed, 1 otherwise.
func ExitCode(failed, total int) int {
	switch {
	case failed == 0:
		return 0
	case failed >= total:
		return 2
	default:
		return 1
	}
}
