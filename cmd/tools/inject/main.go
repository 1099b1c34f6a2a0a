// Command inject streams one of the deterministic synthetic scenarios over
// UDP to a running tracker process, for manual soak testing without a live
// radar feed.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/inject"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

func main() {
	var addr string
	var scenario string
	var cycleMs int
	flag.StringVar(&addr, "addr", "127.0.0.1:50000", "tracker's detection receiver address")
	flag.StringVar(&scenario, "scenario", "straight-line", "straight-line | disappearing | crossing | clutter-only | jpda-ambiguous | turning")
	flag.IntVar(&cycleMs, "cycle-ms", 100, "delay between dwells in milliseconds")
	flag.Parse()

	dwells, err := buildScenario(scenario)
	if err != nil {
		fmt.Fprintln(os.Stderr, "inject:", err)
		os.Exit(1)
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		log.Fatalf("inject: failed to dial %s: %v", addr, err)
	}
	defer conn.Close()

	for i, d := range dwells {
		if _, err := conn.Write(wire.EncodeDwell(d)); err != nil {
			log.Fatalf("inject: failed to send dwell %d: %v", i, err)
		}
		time.Sleep(time.Duration(cycleMs) * time.Millisecond)
	}
	log.Printf("inject: sent %d dwells for scenario %q to %s", len(dwells), scenario, addr)
}

func buildScenario(name string) ([]detection.Dwell, error) {
	switch name {
	case "straight-line":
		return inject.StraightLine(6), nil
	case "disappearing":
		return inject.Disappearing(12), nil
	case "crossing":
		return inject.Crossing(201), nil
	case "clutter-only":
		return []detection.Dwell{inject.ClutterOnly(1000, 0, 100)}, nil
	case "jpda-ambiguous":
		return []detection.Dwell{inject.JPDAAmbiguous(1000, 0, 100, 30)}, nil
	case "turning":
		return inject.Turning(20, 1000, 0.2, 500), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}
