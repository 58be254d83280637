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

// This is a command line utility which builds a differentially private
// adaptive quadtree over a point dataset and measures the relative error of
// its noisy range counts for growing query sizes.
// Usage example:
// (From the repository root)
// go run ./experiment/main --input_file=data/points.txt --plot_file=errors.png --csv_file=errors.csv
// Parameters default to the reference experiment; override any of them with a
// JSON file passed as --config, for instance {"epsilon": 0.5, "tree_height": 4}.
package main

import (
	"flag"
	"time"

	"github.com/JJJJane/QTSC/config"
	"github.com/JJJJane/QTSC/dataset"
	"github.com/JJJJane/QTSC/experiment"
	log "github.com/golang/glog"
)

var (
	configFile = flag.String("config", "", "Optional JSON file with experiment parameters, decoded over the defaults.")
	inputFile  = flag.String("input_file", "", "Tab-delimited input file with the raw points.")
	plotFile   = flag.String("plot_file", "", "Output image file for the error bar chart (.png, .svg, .pdf, ...).")
	csvFile    = flag.String("csv_file", "", "Optional output csv file for the errors per query size.")
	seed       = flag.Int64("seed", 0, "Seed of the noise and the query workload. 0 picks one from the clock.")
)

func main() {
	flag.Parse()

	log.Infof("The experiment was run with arguments: config = %q,"+
		" inputFile = %q, plotFile = %q, csvFile = %q, seed = %d",
		*configFile,
		*inputFile,
		*plotFile,
		*csvFile,
		*seed,
	)

	if *inputFile == "" {
		log.Exit("No input file was chosen")
	}

	if *plotFile == "" {
		log.Exit("No output file for the bar chart was chosen")
	}

	params := config.Default()
	if *configFile != "" {
		var err error
		params, err = config.Load(*configFile)
		if err != nil {
			log.Exitf("Couldn't load the parameters, err = %v", err)
		}
	}
	if err := params.Validate(); err != nil {
		log.Exitf("Invalid parameters %v, err = %v", params, err)
	}

	data, err := dataset.Load(*inputFile)
	if err != nil {
		log.Exitf("Couldn't load the dataset, err = %v", err)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
		log.Infof("Using seed %d", s)
	}
	report, err := experiment.Run(params, data, s)
	if err != nil {
		log.Exitf("Couldn't run the experiment, err = %v", err)
	}
	log.Infof("Tree: %d nodes, %d terminal, depth %d", report.Tree.Nodes, report.Tree.Terminals, report.Tree.Depth)

	if err := experiment.RenderBarChart(report, *plotFile); err != nil {
		log.Exitf("Couldn't draw the bar chart, err = %v", err)
	}

	if *csvFile != "" {
		if err := experiment.WriteCSV(report, *csvFile); err != nil {
			log.Exitf("Couldn't write the errors, err = %v", err)
		}
	}

	log.Infof("Successfully finished the experiment: mean relative errors %v", report.MeanErrors())
}
