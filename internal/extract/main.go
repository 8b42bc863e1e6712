package extract

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gruppe-adler/zonal-utils/internal/ascii"
	"github.com/gruppe-adler/zonal-utils/internal/zones"
)

// Run is the extract subcommand's entrypoint
func Run(flagSet *flag.FlagSet) {

	var timer time.Time
	start := time.Now()

	zonesPtr := flagSet.String("in", "", "Path to polygon dataset (.geojson or .shp)")
	rasterPtr := flagSet.String("raster", "", "Path to value raster (.asc or .asc.gz)")
	weightsPtr := flagSet.String("weights", "", "Path to optional weighting raster (.asc or .asc.gz)")
	fieldPtr := flagSet.String("field", "id", "Attribute of the polygon dataset to retain in the output")
	outputPtr := flagSet.String("out", "", "Path to output CSV file")
	statsPtr := flagSet.String("stats", "count,mean", "Comma-separated statistics to compute")
	filterPtr := flagSet.String("filter", "", "Only process the zone with this id")
	maxCellsPtr := flagSet.Int("max-cells", 30, "Maximum number of raster cells held in memory at once, in millions")
	workersPtr := flagSet.Int("workers", runtime.NumCPU(), "Number of zones processed in parallel")

	flagSet.Parse(os.Args[2:])

	// make sure the mandatory flags are present
	if *zonesPtr == "" || *rasterPtr == "" || *outputPtr == "" {
		flagSet.PrintDefaults()
		os.Exit(1)
	}

	if !isFile(*zonesPtr) {
		log.Fatal(errors.New("Polygon dataset is not a valid file"))
	}
	if !isFile(*rasterPtr) {
		log.Fatal(errors.New("Value raster is not a valid file"))
	}
	if *weightsPtr != "" && !isFile(*weightsPtr) {
		log.Fatal(errors.New("Weighting raster is not a valid file"))
	}

	// load value raster
	timer = time.Now()
	fmt.Println("▶️  Loading value raster")
	values, err := ascii.Open(*rasterPtr)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("✔️  Loaded value raster in", time.Since(timer).String())

	// load weighting raster
	var weights RasterSource
	if *weightsPtr != "" {
		timer = time.Now()
		fmt.Println("▶️  Loading weighting raster")
		weightsData, err := ascii.Open(*weightsPtr)
		if err != nil {
			log.Fatal(err)
		}
		weights = weightsData
		fmt.Println("✔️  Loaded weighting raster in", time.Since(timer).String())
	}

	// open polygon dataset
	src, err := zones.Open(*zonesPtr, *fieldPtr)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config{
		fieldName: *fieldPtr,
		outPath:   *outputPtr,
		statNames: splitStats(*statsPtr),
		filter:    *filterPtr,
		maxCells:  *maxCellsPtr * 1000000,
		workers:   *workersPtr,
	}

	timer = time.Now()
	fmt.Println("▶️  Computing zonal statistics")
	failures, err := run(cfg, values, weights, src)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("✔️  Computed zonal statistics in", time.Since(timer).String())

	fmt.Printf("\n    🎉  Finished in %s\n", time.Since(start).String())

	if len(failures) > 0 {
		fmt.Printf("\nERROR: %d zone(s) failed: %s\n", len(failures), strings.Join(failures, ", "))
		os.Exit(1)
	}
}

func splitStats(list string) []string {
	var names []string

	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// isFile tests whether given path exists and is a file
func isFile(filePath string) bool {
	file, err := os.Stat(filePath)

	if err != nil {
		return false
	}

	return !file.IsDir()
}
