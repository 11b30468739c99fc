// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output handles files containing one label per line -
// both the predictions we write and the ground truth we read.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrInvalidLabel = errors.New("invalid label")

// header names recognized on the first line of a ground truth file
var headers = map[string]bool{
	"label":  true,
	"y":      true,
	"target": true,
	"attack": true,
}

// WriteLabels writes one label per line (no header, no trailer).
// The labels are written to a temporary file first which then replaces
// the target so a failed write never leaves a partial file at path.
func WriteLabels(path string, labels []int) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	tmpPath := file.Name()
	if err := writeAndClose(file, labels); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write predictions to %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write predictions to %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("numLabels", len(labels)).Msg("written predictions")
	return nil
}

func writeAndClose(file *os.File, labels []int) error {
	if err := Write(file, labels); err != nil {
		file.Close()
		return err
	}
	if err := file.Chmod(0644); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write writes labels to a writer, one per line
func Write(w io.Writer, labels []int) error {
	bw := bufio.NewWriter(w)
	for _, v := range labels {
		if _, err := bw.WriteString(strconv.Itoa(v)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseLabel converts a ground truth value to 0/1. Besides the numeric
// form, KDD attack names are accepted ("normal" = 0, other = 1).
func ParseLabel(v string) (int, error) {
	v = strings.TrimSpace(v)
	switch v {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	case "":
		return 0, fmt.Errorf("%w: empty value", ErrInvalidLabel)
	}
	if fv, err := strconv.ParseFloat(v, 64); err == nil {
		if fv == 0 || fv == 1 {
			return int(fv), nil
		}
		return 0, fmt.Errorf("%w: %s", ErrInvalidLabel, v)
	}
	if strings.EqualFold(v, "normal") {
		return 0, nil
	}
	return 1, nil
}

// ReadLabels reads a ground truth file. Blank lines are skipped,
// an optional header on the first line is ignored.
func ReadLabels(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	defer file.Close()
	ans, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels from %s: %w", path, err)
	}
	return ans, nil
}

func Read(r io.Reader) ([]int, error) {
	ans := make([]int, 0, 1000)
	scanner := bufio.NewScanner(r)
	var lineNum int
	var nonEmpty int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		nonEmpty++
		if nonEmpty == 1 && headers[strings.ToLower(line)] {
			continue
		}
		v, err := ParseLabel(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		ans = append(ans, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ans, nil
}
