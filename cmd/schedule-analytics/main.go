package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
	"github.com/theoremus-urban-solutions/schedule-analytics/config"
	"github.com/theoremus-urban-solutions/schedule-analytics/export"
	"github.com/theoremus-urban-solutions/schedule-analytics/gtfs"
	"github.com/theoremus-urban-solutions/schedule-analytics/internal"
	"github.com/theoremus-urban-solutions/schedule-analytics/regions"
	"github.com/theoremus-urban-solutions/schedule-analytics/server"
)

func main() {
	mode := flag.String("mode", "serve", "serve|order|expresslocal|windows|matrix|headways|skipstop")
	route := flag.String("route", "", "route_id")
	routes := flag.String("routes", "", "comma-separated route_ids (combined headways)")
	direction := flag.String("direction", "", "direction_id (0|1)")
	service := flag.String("service", "", "service_id")
	stop := flag.String("stop", "", "stop_id for headway measurement (default: each trip's first stop)")
	branch := flag.String("branch", "", "branch terminal name substring")
	hourFrom := flag.Int("hourFrom", -1, "start of inclusive hour range")
	hourTo := flag.Int("hourTo", -1, "end of inclusive hour range")
	combined := flag.Bool("combined", false, "combine both directions (matrix mode)")
	out := flag.String("out", "", "output file (default: stdout / configured path)")
	flag.Parse()

	_ = godotenv.Load()
	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	ix, err := loadSchedule(config.Config.GTFS)
	if err != nil {
		log.Fatalf("load schedule: %v", err)
	}
	cls, err := loadClassifier(config.Config.Analysis)
	if err != nil {
		log.Fatalf("load regions: %v", err)
	}
	labels, err := loadLabels(config.Config.Analysis)
	if err != nil {
		log.Fatalf("load direction labels: %v", err)
	}

	var hourRange *[2]int
	if *hourFrom >= 0 && *hourTo >= 0 {
		hourRange = &[2]int{*hourFrom, *hourTo}
	}

	switch *mode {
	case "serve":
		srv := server.New(ix, cls, labels, config.Config)
		srv.Start()
		srv.HandleGracefulShutdown()

	case "order":
		requireFlags(map[string]string{"route": *route, "direction": *direction, "service": *service})
		for i, s := range analysis.StationOrder(ix, *route, *direction, *service) {
			fmt.Printf("%3d  %-8s %s\n", i+1, s.ID, s.Name)
		}

	case "expresslocal":
		requireFlags(map[string]string{"route": *route, "direction": *direction, "service": *service})
		c := analysis.Classify(ix, cls, *route, *direction, *service)
		for _, tc := range c.Trips {
			fmt.Printf("%-30s %-20s", tc.TripID, tc.BranchTerminal)
			for _, region := range c.Regions {
				if p, ok := tc.Patterns[region]; ok {
					fmt.Printf(" %s=%s", region, p)
				}
			}
			fmt.Println()
		}

	case "windows":
		cache := export.BuildWindowCache(ix, cls, labels)
		path := *out
		if path == "" {
			path = config.Config.Export.WindowCachePath
		}
		if path == "" {
			log.Fatal("windows mode needs -out or export.windowCachePath")
		}
		if err := export.WriteWindowCache(path, cache); err != nil {
			log.Fatalf("write window cache: %v", err)
		}
		log.Printf("wrote express windows for %d service patterns to %s", len(cache), path)

	case "matrix":
		requireFlags(map[string]string{"route": *route, "service": *service})
		opts := analysis.MatrixOptions{HourRange: hourRange}
		var m analysis.Matrix
		if *combined {
			m0 := analysis.TravelTimeMatrix(ix, *route, "0", *service, analysis.StationOrder(ix, *route, "0", *service), opts)
			m1 := analysis.TravelTimeMatrix(ix, *route, "1", *service, analysis.StationOrder(ix, *route, "1", *service), opts)
			m = analysis.CombineBidirectional(m0, m1)
		} else {
			requireFlags(map[string]string{"direction": *direction})
			m = analysis.TravelTimeMatrix(ix, *route, *direction, *service, analysis.StationOrder(ix, *route, *direction, *service), opts)
		}
		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				log.Fatalf("create %s: %v", *out, err)
			}
			defer f.Close()
			w = f
		}
		if err := export.WriteMatrixCSV(w, m); err != nil {
			log.Fatalf("write matrix: %v", err)
		}

	case "headways":
		opts := analysis.HeadwayOptions{
			DirectionID: *direction,
			ServiceID:   *service,
			StopID:      *stop,
			HourRange:   hourRange,
		}
		var table analysis.HeadwayTable
		var err error
		switch {
		case *routes != "":
			var elems []analysis.CorridorElement
			for _, r := range splitCSV(*routes) {
				elems = append(elems, analysis.CorridorElement{RouteID: r, BranchTerminal: *branch})
			}
			var errs []error
			table, errs = analysis.CombinedHeadways(ix, elems, opts)
			for _, e := range errs {
				log.Printf("skipped: %v", e)
			}
		case *branch != "":
			requireFlags(map[string]string{"route": *route})
			table, err = analysis.BranchHeadways(ix, *route, *branch, opts)
		default:
			requireFlags(map[string]string{"route": *route})
			table, err = analysis.Headways(ix, *route, opts)
		}
		if err != nil {
			log.Fatal(err)
		}
		for _, row := range table.Rows {
			fmt.Printf("%02d:00  trains=%-3d avg headway=%.1f min (%d gaps)\n",
				row.Hour, row.Trains, row.Average(), len(row.Gaps))
		}

	case "skipstop":
		requireFlags(map[string]string{"direction": *direction, "service": *service})
		pair := skipStopPair(config.Config.Analysis.SkipStop)
		a := analysis.AnalyzeSkipStop(ix, pair, *direction, *service)
		fmt.Printf("%s operating hours: %v\n", pair.PartTimeRoute, a.OperatingHours)
		fmt.Printf("shared stations: %d, %s-only: %d, %s-only: %d\n",
			len(a.Shared), pair.FullTimeRoute, len(a.FullTimeOnly), pair.PartTimeRoute, len(a.PartTimeOnly))
		fmt.Printf("%s skip-stop trips: %d\n", pair.FullTimeRoute, len(a.ExpressTripIDs))

	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func loadSchedule(cfg config.GTFSConfig) (*gtfs.Index, error) {
	if cfg.SnapshotDB != "" {
		if _, err := os.Stat(cfg.SnapshotDB); err == nil {
			db, err := gtfs.OpenDB(cfg.SnapshotDB)
			if err != nil {
				return nil, err
			}
			defer db.Close()
			ix, err := gtfs.LoadFrom(db)
			if err == nil && ix.TripCount() > 0 {
				log.Printf("loaded schedule snapshot from %s", cfg.SnapshotDB)
				return ix, nil
			}
		}
	}
	ix, err := gtfs.Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.SnapshotDB != "" {
		db, err := gtfs.OpenDB(cfg.SnapshotDB)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := ix.SaveTo(db); err != nil {
			return nil, err
		}
		log.Printf("saved schedule snapshot to %s", cfg.SnapshotDB)
	}
	return ix, nil
}

func loadClassifier(cfg config.AnalysisConfig) (*regions.Classifier, error) {
	if cfg.RegionsFile != "" {
		return regions.NewClassifierFromFile(cfg.RegionsFile)
	}
	return regions.NewClassifier(), nil
}

func loadLabels(cfg config.AnalysisConfig) (*analysis.DirectionLabels, error) {
	if cfg.DirectionLabelsFile != "" {
		return analysis.LoadDirectionLabels(cfg.DirectionLabelsFile)
	}
	return analysis.NewDirectionLabels(), nil
}

func skipStopPair(cfg config.SkipStopConfig) analysis.SkipStopPair {
	if cfg.FullTimeRoute == "" || cfg.PartTimeRoute == "" {
		return analysis.DefaultSkipStopPair()
	}
	return analysis.SkipStopPair{
		FullTimeRoute:  cfg.FullTimeRoute,
		PartTimeRoute:  cfg.PartTimeRoute,
		ExceptionStops: cfg.ExceptionStops,
	}
}

func requireFlags(vals map[string]string) {
	for name, v := range vals {
		if v == "" {
			log.Fatalf("-%s is required for this mode", name)
		}
	}
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
