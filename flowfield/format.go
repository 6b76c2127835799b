package flowfield

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteIntegration writes one row per line with values separated by
// spaces. Unreached cells are written as "-".
func WriteIntegration(w io.Writer, f *IntegrationField) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if x > 0 {
				bw.WriteByte(' ')
			}
			v := f.Values[f.Index(Cell{X: x, Y: y})]
			if v == Unreached {
				bw.WriteByte('-')
				continue
			}
			bw.WriteString(strconv.FormatUint(uint64(v), 10))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flowfield: write integration: %w", err)
	}
	return nil
}

// WriteFlow writes one arrow per cell, one row per line. The goal is "G".
func WriteFlow(w io.Writer, f *FlowField, goal Cell) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := Cell{X: x, Y: y}
			if c == goal {
				bw.WriteByte('G')
				continue
			}
			bw.WriteRune(f.Directions[f.Index(c)].Arrow())
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flowfield: write flow: %w", err)
	}
	return nil
}
