// Package ascii reads ESRI ASCII grid rasters and serves rectangular
// windows of them as value or weight rasters.
package ascii

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gruppe-adler/zonal-utils/internal/grid"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
)

// Dataset is an ESRI ASCII grid held in memory
type Dataset struct {
	grid      grid.Grid
	nodata    float64
	hasNodata bool
	data      []float64
}

// Grid returns the grid the dataset lives on
func (d *Dataset) Grid() grid.Grid { return d.grid }

// Nodata returns the nodata sentinel, if the dataset declares one
func (d *Dataset) Nodata() (float64, bool) { return d.nodata, d.hasNodata }

// ReadBox returns a raster covering at least the given box, aligned on
// the dataset's grid. Cells outside the dataset hold the nodata
// sentinel (NaN if the dataset declares none).
func (d *Dataset) ReadBox(b grid.Box) (*raster.Raster[float64], error) {
	dx := d.grid.DX()
	dy := d.grid.DY()

	xmin := d.grid.XMin() + math.Floor((b.XMin-d.grid.XMin())/dx)*dx
	ymax := d.grid.YMax() - math.Floor((d.grid.YMax()-b.YMax)/dy)*dy

	cols := int(math.Ceil((b.XMax - xmin) / dx))
	rows := int(math.Ceil((ymax - b.YMin) / dy))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	window := grid.New(grid.Box{
		XMin: xmin,
		YMin: ymax - float64(rows)*dy,
		XMax: xmin + float64(cols)*dx,
		YMax: ymax,
	}, dx, dy)

	// index of the window's top left cell within the dataset; negative
	// when the window starts outside
	srcRow := int(math.Round((d.grid.YMax() - ymax) / dy))
	srcCol := int(math.Round((xmin - d.grid.XMin()) / dx))

	nodata := d.nodata
	if !d.hasNodata {
		nodata = math.NaN()
	}

	out := raster.New[float64](window)
	out.SetNodata(nodata)

	srcRows := d.grid.Rows()
	srcCols := d.grid.Cols()

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sr := r + srcRow
			sc := c + srcCol

			if sr < 0 || sr >= srcRows || sc < 0 || sc >= srcCols {
				out.Set(r, c, nodata)
				continue
			}

			out.Set(r, c, d.data[sr*srcCols+sc])
		}
	}

	return out, nil
}

type header struct {
	ncols, nrows     int
	xcorner, ycorner *float64
	xcenter, ycenter *float64
	cellSize         float64
	nodata           float64
	hasNodata        bool
}

// Parse reads an ESRI ASCII grid. Mandatory headers are NCOLS, NROWS,
// CELLSIZE and one of XLLCORNER/XLLCENTER plus YLLCORNER/YLLCENTER;
// NODATA_VALUE is optional.
func Parse(reader io.Reader) (*Dataset, error) {
	var h header

	remainingHeaders := []string{"NCOLS", "NROWS", "XLLCENTER", "XLLCORNER", "YLLCENTER", "YLLCORNER", "CELLSIZE"}
	stillIsHeader := true
	rowIndex := 0
	var data []float64

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		keyword := strings.ToUpper(fields[0])

		if stillIsHeader && (contains(remainingHeaders, keyword) || keyword == "NODATA_VALUE") {
			remainingHeaders = remove(remainingHeaders, keyword)

			// there can either be corner or center, not both
			if keyword == "XLLCENTER" || keyword == "YLLCENTER" {
				remainingHeaders = remove(remainingHeaders, "XLLCORNER")
				remainingHeaders = remove(remainingHeaders, "YLLCORNER")
			}
			if keyword == "XLLCORNER" || keyword == "YLLCORNER" {
				remainingHeaders = remove(remainingHeaders, "XLLCENTER")
				remainingHeaders = remove(remainingHeaders, "YLLCENTER")
			}

			if err := parseHeaderLine(fields, &h); err != nil {
				return nil, err
			}
		} else {
			if stillIsHeader {
				if len(remainingHeaders) > 0 {
					return nil, fmt.Errorf("grid is missing mandatory headers: %s", strings.Join(remainingHeaders, ", "))
				}

				stillIsHeader = false
				data = make([]float64, h.nrows*h.ncols)
			}

			if rowIndex >= h.nrows {
				break
			}

			if err := parseDataLine(fields, data[rowIndex*h.ncols:(rowIndex+1)*h.ncols]); err != nil {
				return nil, err
			}
			rowIndex++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if stillIsHeader || rowIndex < h.nrows {
		return nil, fmt.Errorf("grid data ends after %d of %d rows", rowIndex, h.nrows)
	}

	return &Dataset{
		grid:      h.toGrid(),
		nodata:    h.nodata,
		hasNodata: h.hasNodata,
		data:      data,
	}, nil
}

func (h header) toGrid() grid.Grid {
	xmin := 0.0
	switch {
	case h.xcorner != nil:
		xmin = *h.xcorner
	case h.xcenter != nil:
		xmin = *h.xcenter - h.cellSize/2
	}

	ymin := 0.0
	switch {
	case h.ycorner != nil:
		ymin = *h.ycorner
	case h.ycenter != nil:
		ymin = *h.ycenter - h.cellSize/2
	}

	extent := grid.Box{
		XMin: xmin,
		YMin: ymin,
		XMax: xmin + float64(h.ncols)*h.cellSize,
		YMax: ymin + float64(h.nrows)*h.cellSize,
	}

	return grid.New(extent, h.cellSize, h.cellSize)
}

func parseHeaderLine(fields []string, h *header) error {
	if len(fields) != 2 {
		return fmt.Errorf("header line must have exactly two fields")
	}

	switch strings.ToUpper(fields[0]) {
	case "NCOLS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		h.ncols = int(i)
	case "NROWS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		h.nrows = int(i)
	case "XLLCENTER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.xcenter = &f
	case "XLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.xcorner = &f
	case "YLLCENTER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.ycenter = &f
	case "YLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.ycorner = &f
	case "CELLSIZE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		if f <= 0.0 {
			return fmt.Errorf("CELLSIZE must be greater than 0")
		}
		h.cellSize = f
	case "NODATA_VALUE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.nodata = f
		h.hasNodata = true
	default:
		return fmt.Errorf("unknown header keyword: %s", fields[0])
	}

	return nil
}

func parseDataLine(fields []string, row []float64) error {
	if len(fields) < len(row) {
		return fmt.Errorf("grid data row is too short: %d of %d values", len(fields), len(row))
	}

	for i := range row {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return err
		}
		row[i] = f
	}

	return nil
}

// contains checks whether an array contains a string
func contains(array []string, element string) bool {
	for _, cur := range array {
		if cur == element {
			return true
		}
	}
	return false
}

// remove removes a string from an array
func remove(arr []string, element string) []string {
	var remaining []string

	for i := 0; i < len(arr); i++ {
		if element != arr[i] {
			remaining = append(remaining, arr[i])
		}
	}

	return remaining
}
