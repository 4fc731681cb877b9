package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

const (
	SheetInput      = "Input"
	SheetNormalized = "Normalized"
	SheetSAW        = "SAW"
	SheetWP         = "WP"
	SheetComparison = "Comparison"
)

// BuildWorkbook lays a report out over one sheet per stage. The caller owns
// the returned file and must Close it.
func BuildWorkbook(rep *scoring.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetInput); err != nil {
		f.Close()
		return nil, err
	}
	for _, s := range []string{SheetNormalized, SheetSAW, SheetWP, SheetComparison} {
		if _, err := f.NewSheet(s); err != nil {
			f.Close()
			return nil, err
		}
	}

	steps := []func(*excelize.File, *scoring.Report) error{
		writeInput, writeNormalized, writeSAW, writeWP, writeComparison,
	}
	for _, step := range steps {
		if err := step(f, rep); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook streams the report as an .xlsx workbook.
func WriteWorkbook(w io.Writer, rep *scoring.Report) error {
	f, err := BuildWorkbook(rep)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	return f.Write(w)
}

// SaveWorkbook writes the report workbook to path.
func SaveWorkbook(path string, rep *scoring.Report) error {
	f, err := BuildWorkbook(rep)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func criterionHeader(rep *scoring.Report) []interface{} {
	header := []interface{}{"Alternative"}
	for _, cr := range rep.Criteria {
		header = append(header, fmt.Sprintf("%s %s (%s)", cr.ID, cr.Name, cr.Direction))
	}
	return header
}

func writeInput(f *excelize.File, rep *scoring.Report) error {
	if err := setRow(f, SheetInput, 1, criterionHeader(rep)); err != nil {
		return err
	}
	row := 2
	for _, alt := range rep.Input {
		values := []interface{}{alt.Name}
		for _, v := range alt.Values {
			values = append(values, v)
		}
		if err := setRow(f, SheetInput, row, values); err != nil {
			return err
		}
		row++
	}

	weights := []interface{}{"Weight"}
	for _, w := range rep.Weights {
		weights = append(weights, w)
	}
	row++
	if err := setRow(f, SheetInput, row, weights); err != nil {
		return err
	}

	if len(rep.Skipped) == 0 {
		return nil
	}
	row += 2
	if err := setRow(f, SheetInput, row, []interface{}{"Skipped", "Reason"}); err != nil {
		return err
	}
	for _, s := range rep.Skipped {
		row++
		if err := setRow(f, SheetInput, row, []interface{}{s.Name, s.Reason}); err != nil {
			return err
		}
	}
	return nil
}

func writeNormalized(f *excelize.File, rep *scoring.Report) error {
	if rep.SAW == nil || rep.SAW.Normalized == nil {
		return nil
	}
	n := rep.SAW.Normalized
	if err := setRow(f, SheetNormalized, 1, criterionHeader(rep)); err != nil {
		return err
	}
	for i, name := range n.Alternatives {
		values := []interface{}{name}
		for _, v := range n.Values[i] {
			values = append(values, v)
		}
		if err := setRow(f, SheetNormalized, i+2, values); err != nil {
			return err
		}
	}
	return setRow(f, SheetNormalized, len(n.Alternatives)+3, []interface{}{"Method", string(n.Method)})
}

func writeSAW(f *excelize.File, rep *scoring.Report) error {
	if rep.SAW == nil {
		return nil
	}
	fuzzy := rep.SAW.Variant == scoring.Fuzzy
	header := []interface{}{"Alternative"}
	for _, cr := range rep.Criteria {
		header = append(header, cr.ID+" share")
	}
	if fuzzy {
		header = append(header, "a", "m", "b")
	}
	header = append(header, "Score", "Rank")
	if err := setRow(f, SheetSAW, 1, header); err != nil {
		return err
	}

	for i, e := range rep.SAW.Entries {
		values := []interface{}{e.Alternative}
		for _, c := range e.Contributions {
			values = append(values, c.Share)
		}
		if fuzzy && e.TFN != nil {
			values = append(values, e.TFN.A, e.TFN.M, e.TFN.B)
		}
		values = append(values, e.Score, e.Rank)
		if err := setRow(f, SheetSAW, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeWP(f *excelize.File, rep *scoring.Report) error {
	if rep.WP == nil {
		return nil
	}
	if err := setRow(f, SheetWP, 1, []interface{}{"Alternative", "S", "V", "Rank"}); err != nil {
		return err
	}
	for i, e := range rep.WP.Entries {
		if err := setRow(f, SheetWP, i+2, []interface{}{e.Alternative, e.S, e.Score, e.Rank}); err != nil {
			return err
		}
	}
	exp := []interface{}{"Exponent"}
	for _, e := range rep.WP.Exponents {
		exp = append(exp, e)
	}
	return setRow(f, SheetWP, len(rep.WP.Entries)+3, exp)
}

var comparisonHeader = []string{"Alternative", "Score SAW", "Score WP", "Rank SAW", "Rank WP", "Difference"}

func writeComparison(f *excelize.File, rep *scoring.Report) error {
	c := rep.Comparison
	if c == nil {
		return nil
	}
	header := make([]interface{}, len(comparisonHeader))
	for i, h := range comparisonHeader {
		header[i] = h
	}
	if err := setRow(f, SheetComparison, 1, header); err != nil {
		return err
	}
	for i, r := range c.Rows {
		values := []interface{}{r.Alternative, r.ScoreSAW, r.ScoreWP, r.RankSAW, r.RankWP, r.Difference}
		if err := setRow(f, SheetComparison, i+2, values); err != nil {
			return err
		}
	}

	summary := [][]interface{}{
		{"Agreement", c.AgreementCount},
		{"Consistency", string(c.Consistency)},
		{"Rank correlation", c.RankCorrelation},
		{"Top SAW", c.TopSAW},
		{"Top WP", c.TopWP},
		{"Top choice agrees", c.TopChoiceAgree},
	}
	row := len(c.Rows) + 3
	for _, s := range summary {
		if err := setRow(f, SheetComparison, row, s); err != nil {
			return err
		}
		row++
	}
	return nil
}

// WriteComparisonCSV writes the SAW vs WP table as CSV.
func WriteComparisonCSV(w io.Writer, rep *scoring.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(comparisonHeader); err != nil {
		return err
	}
	if rep.Comparison != nil {
		for _, r := range rep.Comparison.Rows {
			rec := []string{
				r.Alternative,
				formatFloat(r.ScoreSAW),
				formatFloat(r.ScoreWP),
				strconv.Itoa(r.RankSAW),
				strconv.Itoa(r.RankWP),
				strconv.Itoa(r.Difference),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
