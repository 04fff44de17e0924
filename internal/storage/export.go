package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    *RunMetadata `json:"run"`
	Points int          `json:"points"`
	X      []int        `json:"x"`
	Y      []int        `json:"y"`
	Frame  []int        `json:"frame"`
}

// ExportJSON writes the run and its trace as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, trace []TracePoint) error {
	data := ExportData{
		Run:    meta,
		Points: len(trace),
		X:      make([]int, len(trace)),
		Y:      make([]int, len(trace)),
		Frame:  make([]int, len(trace)),
	}
	for i, p := range trace {
		data.X[i], data.Y[i], data.Frame[i] = p.X, p.Y, p.Frame
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
