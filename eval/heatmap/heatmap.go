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

package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"slices"
)

// Matrix represents a 2D slice of float64 values
type Matrix [][]float64

// GenerateHeatmap creates a heatmap image from a matrix with customizable
// cell size. Colors are scaled linearly between the matrix minimum (blue)
// and maximum (red).
func GenerateHeatmap(matrix Matrix, filename string, cellSize int) error {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return fmt.Errorf("failed to generate heatmap: empty matrix")
	}
	if cellSize <= 0 {
		return fmt.Errorf("failed to generate heatmap: invalid cell size %d", cellSize)
	}
	height := len(matrix)
	width := len(matrix[0])
	img := image.NewRGBA(image.Rect(0, 0, width*cellSize, height*cellSize))

	minVal, maxVal := matrixRange(matrix)
	for y, row := range matrix {
		for x, val := range row {
			scaledVal := scaleValue(val, minVal, maxVal)
			r := uint8(scaledVal * 255)
			b := uint8((1 - scaledVal) * 255)
			cellColor := color.RGBA{r, 0, b, 255}
			for dy := 0; dy < cellSize; dy++ {
				for dx := 0; dx < cellSize; dx++ {
					img.Set(x*cellSize+dx, y*cellSize+dy, cellColor)
				}
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to generate heatmap: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to generate heatmap: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to generate heatmap: %w", err)
	}
	return nil
}

// RenderConfusionMatrix draws a 2x2 matrix (actual classes in rows,
// predicted in columns). Each row is normalized so classes of different
// sizes are comparable.
func RenderConfusionMatrix(counts [][]float64, filename string, cellSize int) error {
	normalized := make(Matrix, len(counts))
	for i, row := range counts {
		var sum float64
		for _, v := range row {
			sum += v
		}
		normalized[i] = make([]float64, len(row))
		for j, v := range row {
			if sum > 0 {
				normalized[i][j] = v / sum
			}
		}
	}
	return GenerateHeatmap(normalized, filename, cellSize)
}

func matrixRange(matrix Matrix) (float64, float64) {
	minVal, maxVal := matrix[0][0], matrix[0][0]
	for _, row := range matrix {
		if len(row) == 0 {
			continue
		}
		minVal = min(minVal, slices.Min(row))
		maxVal = max(maxVal, slices.Max(row))
	}
	return minVal, maxVal
}

// scaleValue maps val to [0, 1]; a constant matrix maps to 0
func scaleValue(val, minVal, maxVal float64) float64 {
	if maxVal == minVal {
		return 0
	}
	return (val - minVal) / (maxVal - minVal)
}
