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

package records

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadFile reads a headerless comma separated file with connection
// records. Files with the .gz suffix are decompressed on the fly.
// In case the file does not exist, ErrInputNotFound is returned.
func LoadFile(filePath string) (*Table, error) {
	file, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, filePath)

	} else if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(filePath, ".gz") || strings.HasSuffix(filePath, ".gzip") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}
	tab, err := Read(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	log.Debug().
		Str("path", filePath).
		Int("numRows", tab.NumRows()).
		Msg("loaded connection records")
	return tab, nil
}

// Read parses connection records from r. Any record with a wrong number
// of fields or with a non-numeric value in a numeric column makes
// the whole read fail - there are no partial results.
func Read(r io.Reader) (*Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	csvReader.ReuseRecord = true

	var nums [NumColumns][]float64
	var strs [NumColumns][]string
	line := 0
	for {
		rec, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSchema, line, err)
		}
		if len(rec) != NumColumns {
			return nil, fmt.Errorf(
				"%w: line %d: expected %d columns, found %d", ErrSchema, line, NumColumns, len(rec))
		}
		for i, v := range rec {
			v = strings.TrimSpace(v)
			if IsTextColumn(Schema[i]) {
				strs[i] = append(strs[i], v)
				continue
			}
			fv, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"%w: line %d: column %s: invalid number '%s'", ErrSchema, line, Schema[i], v)
			}
			nums[i] = append(nums[i], fv)
		}
	}
	cols := make([]*Column, NumColumns)
	for i, name := range Schema {
		if IsTextColumn(name) {
			if strs[i] == nil {
				strs[i] = []string{}
			}
			cols[i] = NewTextColumn(name, strs[i])

		} else {
			if nums[i] == nil {
				nums[i] = []float64{}
			}
			cols[i] = NewNumericColumn(name, nums[i])
		}
	}
	return NewTable(cols...)
}
