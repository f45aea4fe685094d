package replay

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EventRow is one CSV row of an event export.
type EventRow struct {
	Stage string `csv:"stage"`
	Frame uint32 `csv:"frame"`
	Type  string `csv:"type"`
	Value uint16 `csv:"value"`
}

// StageRow is one CSV row of a summary export.
type StageRow struct {
	Stage       string  `csv:"stage"`
	Difficulty  string  `csv:"difficulty"`
	Seed        string  `csv:"seed"`
	Started     string  `csv:"started"`
	Events      int     `csv:"events"`
	Inputs      int     `csv:"inputs"`
	Frames      uint32  `csv:"frames"`
	FinalPoints uint64  `csv:"final_points"`
	Cleared     bool    `csv:"cleared"`
	FPSMean     float64 `csv:"fps_mean"`
	FPSStdDev   float64 `csv:"fps_stddev"`
}

// ExportEvents writes every event of r as CSV.
func ExportEvents(w io.Writer, r *Replay) error {
	var rows []EventRow
	for _, s := range r.Stages {
		for _, e := range s.Events {
			rows = append(rows, EventRow{Stage: s.StageID, Frame: e.Frame, Type: e.Type.String(), Value: e.Value})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("replay: cannot write events: %w", err)
	}
	return nil
}

// ExportSummary writes one CSV row per stage.
func ExportSummary(w io.Writer, r *Replay) error {
	rows := make([]StageRow, 0, len(r.Stages))
	for _, s := range r.Stages {
		rows = append(rows, Summarize(s))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("replay: cannot write summary: %w", err)
	}
	return nil
}

// Summarize builds the summary row of a stage.
func Summarize(s *Stage) StageRow {
	row := StageRow{
		Stage:       s.StageID,
		Difficulty:  s.Difficulty,
		Seed:        fmt.Sprintf("%#x", s.Seed),
		Started:     s.Started().UTC().Format("2006-01-02 15:04:05"),
		Events:      len(s.Events),
		FinalPoints: s.FinalPoints,
		Cleared:     s.Cleared(),
	}
	for _, e := range s.Events {
		if e.Type.IsInput() {
			row.Inputs++
		}
	}
	if last, ok := s.Last(); ok {
		row.Frames = last.Frame
	}
	st := s.FPSStats()
	row.FPSMean, row.FPSStdDev = st.Mean, st.StdDev
	return row
}

// FPSStats summarizes the FPS samples of a stage.
type FPSStats struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// FPSStats computes frame-weighted statistics of the recorded FPS samples.
// Each sample is weighted by the number of frames it stayed current.
func (s *Stage) FPSStats() FPSStats {
	var vals, weights []float64
	end := uint32(0)
	if last, ok := s.Last(); ok {
		end = last.Frame
	}
	for i, e := range s.Events {
		if e.Type != EvFPS {
			continue
		}
		next := end
		for _, n := range s.Events[i+1:] {
			if n.Type == EvFPS {
				next = n.Frame
				break
			}
		}
		w := float64(next) - float64(e.Frame)
		if w < 1 {
			w = 1
		}
		vals = append(vals, float64(e.Value))
		weights = append(weights, w)
	}
	if len(vals) == 0 {
		return FPSStats{}
	}

	out := FPSStats{Samples: len(vals), Min: floats.Min(vals), Max: floats.Max(vals)}
	if len(vals) == 1 {
		out.Mean = vals[0]
		return out
	}
	out.Mean, out.StdDev = stat.MeanStdDev(vals, weights)
	return out
}
