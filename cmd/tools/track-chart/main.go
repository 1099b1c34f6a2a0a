// Command track-chart reads a binary replay log and renders a static HTML
// page with one x/y scatter series per track (its position trail), for
// offline review without a live display client.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

func main() {
	var logPath string
	var outPath string
	flag.StringVar(&logPath, "log", "", "path to a binary replay log produced by the tracker")
	flag.StringVar(&outPath, "out", "tracks.html", "path to write the rendered HTML page")
	flag.Parse()

	if logPath == "" {
		log.Fatal("track-chart: -log is required")
	}

	f, err := os.Open(logPath)
	if err != nil {
		log.Fatalf("track-chart: failed to open %s: %v", logPath, err)
	}
	defer f.Close()

	trails, err := collectTrails(f)
	if err != nil {
		log.Fatalf("track-chart: %v", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("track-chart: failed to create %s: %v", outPath, err)
	}
	defer out.Close()

	if err := render(trails, out); err != nil {
		log.Fatalf("track-chart: failed to render chart: %v", err)
	}
	log.Printf("track-chart: rendered %d track trajectories to %s", len(trails), outPath)
}

// trailPoint is one track's position at one instant.
type trailPoint struct {
	X, Y float64
}

// collectTrails streams every RecordSent track table in r and accumulates
// each track's x/y trajectory in timestamp order.
func collectTrails(r io.Reader) (map[uint32][]trailPoint, error) {
	reader := binlog.NewReader(r)
	trails := make(map[uint32][]trailPoint)

	for {
		h, err := reader.ReadHeader()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		payload, err := reader.ReadPayload(h)
		if err != nil {
			return nil, err
		}
		if binlog.RecordType(h.RecordType) != binlog.RecordSent {
			continue
		}

		_, updates, err := wire.DecodeTrackTable(payload)
		if err != nil {
			continue
		}
		for _, u := range updates {
			trails[u.TrackID] = append(trails[u.TrackID], trailPoint{X: u.X, Y: u.Y})
		}
	}
	return trails, nil
}

// render writes an HTML page with one scatter series per track's x/y
// trail. The points are plotted unconnected (the same XY-geometry idiom
// used for the cluster/track debug plots this is grounded on, which plot
// position pairs rather than a category axis).
func render(trails map[uint32][]trailPoint, w io.Writer) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Trajectories", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track Trajectories", Subtitle: "x/y position per track"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	ids := make([]uint32, 0, len(trails))
	for id := range trails {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) == 0 {
		scatter.AddSeries("no tracks", []opts.ScatterData{})
		return scatter.Render(w)
	}

	for _, id := range ids {
		data := make([]opts.ScatterData, len(trails[id]))
		for i, p := range trails[id] {
			data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
		}
		scatter.AddSeries(seriesName(id), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	return scatter.Render(w)
}

func seriesName(id uint32) string {
	return "track " + strconv.Itoa(int(id))
}
