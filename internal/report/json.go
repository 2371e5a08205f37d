package report

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"divmap/internal/walkers"
)

type jsonSet struct {
	Platforms []string       `json:"platforms"`
	Lines     int            `json:"lines"`
	Files     map[string]int `json:"files,omitempty"`
}

type jsonReport struct {
	TotalLines int       `json:"total_lines"`
	Sets       []jsonSet `json:"sets"`
}

// JSON renders both maps as one machine-readable document, sets ordered
// as in the summary report.
func JSON(lineMap walkers.LineMap, fileMap walkers.FileMap) (string, error) {
	doc := jsonReport{TotalLines: TotalLines(lineMap)}
	for _, set := range sortedSets(lineMap) {
		doc.Sets = append(doc.Sets, jsonSet{
			Platforms: set.Names(),
			Lines:     lineMap[set],
			Files:     fileMap[set],
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshaling report")
	}
	return string(data), nil
}
