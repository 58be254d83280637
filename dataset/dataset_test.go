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

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JJJJane/QTSC/quadtree"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		input string
		want  []quadtree.Coord
	}{
		{
			desc:  "single line",
			input: "id\t520001\t170002\t520300\t171000",
			want:  []quadtree.Coord{{X: 520001, Y: 170002}, {X: 520300, Y: 171000}},
		},
		{
			desc:  "several lines",
			input: "a\t1\t2\nb\t3.5\t4\t5\t6\n",
			want:  []quadtree.Coord{{X: 1, Y: 2}, {X: 3.5, Y: 4}, {X: 5, Y: 6}},
		},
		{
			desc:  "trailing delimiter",
			input: "a\t1\t2\t\n",
			want:  []quadtree.Coord{{X: 1, Y: 2}},
		},
		{
			desc:  "empty lines and identifier-only records",
			input: "\na\t1\t2\n\nb\n",
			want:  []quadtree.Coord{{X: 1, Y: 2}},
		},
		{
			desc:  "empty input",
			input: "",
			want:  nil,
		},
	} {
		got, err := Parse(strings.NewReader(tc.input))
		if err != nil {
			t.Errorf("Parse %s: got err %v", tc.desc, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Parse %s (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		input string
	}{
		{"odd token count", "a\t1\t2\t3"},
		{"bad x", "a\tone\t2"},
		{"bad y", "a\t1\ttwo"},
		{"bad token on a later line", "a\t1\t2\nb\t3\t4x"},
	} {
		if _, err := Parse(strings.NewReader(tc.input)); err == nil {
			t.Errorf("Parse %s: got nil error, want error", tc.desc)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	if err := os.WriteFile(path, []byte("0\t10\t20\t30\t40\n"), 0o644); err != nil {
		t.Fatalf("couldn't write %q: %v", path, err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q): got err %v", path, err)
	}
	want := []quadtree.Coord{{X: 10, Y: 20}, {X: 30, Y: 40}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Load of a missing file: got nil error, want error")
	}
}
