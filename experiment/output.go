//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RenderBarChart draws the mean relative error of each query size of r, and
// its standard deviation next to it, as a bar chart saved to path. The image
// format follows the extension of path.
func RenderBarChart(r *Report, path string) error {
	if len(r.Sizes) == 0 {
		return fmt.Errorf("the report has no query sizes to plot")
	}
	means := make(plotter.Values, len(r.Sizes))
	stdDevs := make(plotter.Values, len(r.Sizes))
	names := make([]string, len(r.Sizes))
	for i, s := range r.Sizes {
		means[i] = s.MeanRelativeError
		stdDevs[i] = s.StdDevRelativeError
		names[i] = strconv.Itoa(s.Multiplier)
	}

	p := plot.New()
	p.Title.Text = "Relative Error Per Query Size"
	p.X.Label.Text = "Query size (cells)"
	p.Y.Label.Text = "Relative error"

	w := vg.Points(20)

	meanBars, err := plotter.NewBarChart(means, w)
	if err != nil {
		return fmt.Errorf("could not create bars from points %v: %v", means, err)
	}
	meanBars.LineStyle.Width = vg.Length(0)
	meanBars.Color = plotutil.Color(2)

	stdDevBars, err := plotter.NewBarChart(stdDevs, w)
	if err != nil {
		return fmt.Errorf("could not create bars from points %v: %v", stdDevs, err)
	}
	stdDevBars.LineStyle.Width = vg.Length(0)
	stdDevBars.Color = plotutil.Color(3)
	stdDevBars.Offset = w

	p.Add(meanBars, stdDevBars)
	p.Legend.Add("Mean", meanBars)
	p.Legend.Add("Standard deviation", stdDevBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("could not save plot to %q: %v", path, err)
	}
	return nil
}

// csvHeader names the columns written by WriteCSV.
var csvHeader = []string{"multiplier", "query_width", "query_height", "queries", "mean_relative_error", "stddev_relative_error"}

// WriteCSV writes one row per query size of r to the file at path, after a
// header row.
func WriteCSV(r *Report, path string) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't open the csv file = %q, err = %v", path, err)
	}

	writer := csv.NewWriter(csvFile)
	rows := [][]string{csvHeader}
	for _, s := range r.Sizes {
		rows = append(rows, []string{
			strconv.Itoa(s.Multiplier),
			formatFloat(s.Width),
			formatFloat(s.Height),
			strconv.Itoa(len(s.RelativeErrors)),
			formatFloat(s.MeanRelativeError),
			formatFloat(s.StdDevRelativeError),
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf(
			"couldn't write to the csv file = %q, err = %v",
			path, combineErrors(err, csvFile.Close()))
	}

	err = csvFile.Close()
	if err != nil {
		return fmt.Errorf("couldn't close the csv file = %q, err = %v", path, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func combineErrors(errors ...error) string {
	var nonNilErrors []error
	for _, err := range errors {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}
	return fmt.Sprintf("%+v", nonNilErrors)
}
