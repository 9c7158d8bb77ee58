package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOutput(t *testing.T) {
	out := BuildOutput([]string{"2", "1"}, map[string]string{
		"1": "PMC10",
		"2": "",
		"0": "PMC5",
	})

	assert.Equal(t, []Mapping{
		{PMID: "2", PMCID: ""},
		{PMID: "1", PMCID: "PMC10"},
		{PMID: "0", PMCID: "PMC5"},
	}, out.Mappings)
	assert.Equal(t, 2, out.Resolved)
	assert.Equal(t, 1, out.Missing)
}

func TestBuildOutputEmpty(t *testing.T) {
	out := BuildOutput(nil, nil)
	assert.Empty(t, out.Mappings)
	assert.Zero(t, out.Resolved)
}
