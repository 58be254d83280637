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

// Package dataset reads the point datasets an adaptive quadtree is built over.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/JJJJane/QTSC/quadtree"
	log "github.com/golang/glog"
)

// Load reads the dataset stored in the file at path. See Parse for the format.
func Load(path string) ([]quadtree.Coord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the dataset file = %q, err = %v", path, err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the dataset file = %q, err = %w", path, err)
	}
	log.Infof("Loaded %d coordinates from %q", len(data), path)
	return data, nil
}

// Parse reads tab-delimited records from r. The first token of each record is
// an identifier and is skipped; the remaining tokens are read as consecutive
// x, y pairs. Empty lines are ignored.
func Parse(r io.Reader) ([]quadtree.Coord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var data []quadtree.Coord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		tokens := record[1:]
		// A trailing delimiter leaves an empty last field.
		if k := len(tokens); k > 0 && tokens[k-1] == "" {
			tokens = tokens[:k-1]
		}
		if len(tokens)%2 != 0 {
			return nil, fmt.Errorf("line %d has %d coordinate tokens, want x, y pairs", line, len(tokens))
		}
		for i := 0; i < len(tokens); i += 2 {
			x, err := toFloat64(tokens[i])
			if err != nil {
				return nil, fmt.Errorf("couldn't read x = %q on line %d, err = %v", tokens[i], line, err)
			}
			y, err := toFloat64(tokens[i+1])
			if err != nil {
				return nil, fmt.Errorf("couldn't read y = %q on line %d, err = %v", tokens[i+1], line, err)
			}
			data = append(data, quadtree.Coord{X: x, Y: y})
		}
	}
	return data, nil
}

func toFloat64(str string) (float64, error) {
	return strconv.ParseFloat(str, 64)
}
