package worldcuphandlers

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"

	worldcupservice "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/application"
)

const (
	rankingsSheet = "Rankings"
	chartTopN     = 10
)

var rankingsHeader = []any{"Rank", "Name", "Name (EN)", "Brand", "Rating", "Matches", "Last Delta"}

// buildRankingsWorkbook writes entries to a single-sheet xlsx document.
func buildRankingsWorkbook(entries []worldcupservice.RankingEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(rankingsSheet, "A1", &rankingsHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Rank, e.Name, e.NameEn, e.Brand, e.Rating, e.MatchCount, e.LastDelta}
		if err := f.SetSheetRow(rankingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(rankingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// renderRankingsChart draws the top entries as a PNG bar chart.
func renderRankingsChart(entries []worldcupservice.RankingEntry) ([]byte, error) {
	if len(entries) == 0 {
		return renderNoDataPlaceholder()
	}
	if len(entries) > chartTopN {
		entries = entries[:chartTopN]
	}

	bars := make([]chart.Value, len(entries))
	low, high := entries[0].Rating, entries[0].Rating
	for i, e := range entries {
		bars[i] = chart.Value{
			Label: e.Name,
			Value: e.Rating,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("c8102e"),
				StrokeColor: drawing.ColorFromHex("8a0b20"),
				StrokeWidth: 1,
			},
		}
		low = min(low, e.Rating)
		high = max(high, e.Rating)
	}

	graph := chart.BarChart{
		Title:      "Worldcup Rankings",
		Width:      1024,
		Height:     512,
		BarWidth:   60,
		BarSpacing: 24,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: low - 50, Max: high + 50},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	const msg = "No ratings yet"

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	// Chart refuses to render without a visible series, so draw an invisible one.
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Font:   font,
		XAxis:  chart.XAxis{Style: chart.Hidden()},
		YAxis:  chart.YAxis{Style: chart.Hidden()},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeWidth: chart.Disabled},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFont(font)
				r.SetFontColor(drawing.ColorBlack)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
