// Command pcap-replay feeds a previously captured .pcap of inbound detection
// UDP packets through the same decode path the live receiver uses, for
// deterministic regression replay of a captured session. Requires a build
// tagged with "pcap" (cgo + libpcap); without the tag, replayPCAP reports
// that support is disabled.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

func main() {
	var pcapFile string
	var udpPort int
	var logPath string
	flag.StringVar(&pcapFile, "pcap", "", "path to a .pcap capture of inbound detection packets")
	flag.IntVar(&udpPort, "port", 50000, "UDP destination port the capture's detection packets were sent to")
	flag.StringVar(&logPath, "log", "", "optional binary log path to record replayed dwells to")
	flag.Parse()

	if pcapFile == "" {
		log.Fatal("pcap-replay: -pcap is required")
	}

	var writer *binlog.Writer
	if logPath != "" {
		w, err := binlog.Open(logPath)
		if err != nil {
			log.Fatalf("pcap-replay: failed to open log: %v", err)
		}
		defer w.Close()
		writer = w
	}

	count := 0
	onDwell := func(d detection.Dwell) {
		count++
		if writer != nil {
			writer.WriteRecord(binlog.RecordRaw, d.TimestampUs, wire.EncodeDwell(d))
		}
	}

	if err := replayPCAP(context.Background(), pcapFile, udpPort, onDwell); err != nil {
		log.Fatalf("pcap-replay: %v", err)
	}
	log.Printf("pcap-replay: replayed %d dwells from %s", count, pcapFile)
}

// decodeAndDispatch decodes one inbound detection payload and dispatches it.
// Shared by both the pcap-tagged and stub replayPCAP implementations.
func decodeAndDispatch(payload []byte, onDwell func(detection.Dwell)) {
	d, err := wire.DecodeDwell(payload)
	if err != nil {
		log.Printf("pcap-replay: dropping malformed packet: %v", err)
		return
	}
	onDwell(d)
}
