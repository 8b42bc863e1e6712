// Package preview implements the preview subcommand: it renders the
// coverage raster of a single zone as a grayscale PNG, plus a pyramid
// of downscaled copies for quick inspection.
package preview

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path"
	"time"

	"github.com/nfnt/resize"

	"github.com/gruppe-adler/zonal-utils/internal/ascii"
	"github.com/gruppe-adler/zonal-utils/internal/intersect"
	"github.com/gruppe-adler/zonal-utils/internal/raster"
	"github.com/gruppe-adler/zonal-utils/internal/zones"
)

var sizes = []uint{128, 256, 512, 1024}

// Run is the preview subcommand's entrypoint
func Run(flagSet *flag.FlagSet) {

	var timer time.Time
	start := time.Now()

	zonesPtr := flagSet.String("in", "", "Path to polygon dataset (.geojson or .shp)")
	rasterPtr := flagSet.String("raster", "", "Path to raster defining the grid (.asc or .asc.gz)")
	filterPtr := flagSet.String("filter", "", "Id of the zone to render (defaults to the first zone)")
	fieldPtr := flagSet.String("field", "id", "Attribute of the polygon dataset holding the zone id")
	outputPtr := flagSet.String("out", "", "Path to output directory")

	flagSet.Parse(os.Args[2:])

	// make sure the mandatory flags are present
	if *zonesPtr == "" || *rasterPtr == "" || *outputPtr == "" {
		flagSet.PrintDefaults()
		os.Exit(1)
	}

	// make sure given output directory is a valid directory
	if !isDirectory(*outputPtr) {
		log.Fatal(errors.New("Output directory doesn't exist"))
	}

	timer = time.Now()
	fmt.Println("▶️  Loading raster grid")
	dataset, err := ascii.Open(*rasterPtr)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("✔️  Loaded raster grid in", time.Since(timer).String())

	src, err := zones.Open(*zonesPtr, *fieldPtr)
	if err != nil {
		log.Fatal(err)
	}

	timer = time.Now()
	fmt.Println("▶️  Computing coverage")
	coverage, id, err := zoneCoverage(src, dataset, *filterPtr)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("✔️  Computed coverage for zone %s in %s\n", id, time.Since(timer).String())

	img := renderCoverage(coverage)

	timer = time.Now()
	fmt.Println("▶️  Writing coverage image")
	saveImage(path.Join(*outputPtr, "coverage.png"), img)
	fmt.Println("✔️  Wrote coverage image in", time.Since(timer).String())

	height := img.Bounds().Dy()
	width := img.Bounds().Dx()

	for _, size := range sizes {
		if int(size) >= height {
			continue
		}

		timer = time.Now()
		fmt.Printf("▶️  Building x%d image\n", size)

		factor := float64(size) / float64(height)
		w := uint(float64(width) * factor)

		scaled := resize.Resize(w, size, img, resize.MitchellNetravali)
		saveImage(path.Join(*outputPtr, fmt.Sprintf("coverage_%d.png", size)), scaled)

		fmt.Printf("✔️  Built x%d in %s\n", size, time.Since(timer).String())
	}

	fmt.Printf("\n    🎉  Finished in %s\n", time.Since(start).String())
}

// zoneCoverage finds the requested zone and computes its coverage
// raster on the dataset grid shrunk to the zone's bounding box
func zoneCoverage(src zones.Source, dataset *ascii.Dataset, filter string) (*raster.Raster[float32], string, error) {
	for src.Next() {
		if filter != "" && src.ID() != filter {
			continue
		}

		bbox := src.BBox()
		extent := dataset.Grid().Extent()
		if !bbox.Intersects(extent) {
			return nil, "", fmt.Errorf("zone %s does not intersect the raster", src.ID())
		}

		shrunk, err := dataset.Grid().ShrinkToFit(bbox.Intersection(extent))
		if err != nil {
			return nil, "", err
		}

		coverage, err := intersect.Coverage(src.Geometry(), shrunk.Infinite())
		if err != nil {
			return nil, "", err
		}

		return coverage, src.ID(), nil
	}

	if err := src.Err(); err != nil {
		return nil, "", err
	}

	return nil, "", fmt.Errorf("no matching zone found")
}

// renderCoverage maps coverage fractions to gray values
func renderCoverage(coverage *raster.Raster[float32]) image.Image {
	img := image.NewGray(image.Rect(0, 0, coverage.Cols(), coverage.Rows()))

	for r := 0; r < coverage.Rows(); r++ {
		for c := 0; c < coverage.Cols(); c++ {
			img.SetGray(c, r, color.Gray{Y: uint8(coverage.At(r, c) * 255)})
		}
	}

	return img
}

func saveImage(path string, img image.Image) {
	out, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}

	if err := png.Encode(out, img); err != nil {
		log.Fatal(err)
	}

	err = out.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// isDirectory tests whether given path exists and is a directory
func isDirectory(dirPath string) bool {
	dir, err := os.Stat(dirPath)

	if err != nil {
		return false
	}

	return dir.IsDir()
}
