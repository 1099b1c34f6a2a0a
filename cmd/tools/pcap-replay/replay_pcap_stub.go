//go:build !pcap
// +build !pcap

package main

import (
	"context"
	"fmt"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

// replayPCAP is a stub used when PCAP support is disabled.
// Rebuild with -tags=pcap to enable pcap file replay.
func replayPCAP(ctx context.Context, pcapFile string, udpPort int, onDwell func(detection.Dwell)) error {
	return fmt.Errorf("pcap support not enabled: rebuild with -tags=pcap to enable pcap file replay")
}
