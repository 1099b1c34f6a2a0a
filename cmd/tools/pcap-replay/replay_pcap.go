//go:build pcap
// +build pcap

package main

import (
	"context"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

// replayPCAP opens pcapFile and feeds the UDP payload of every packet
// addressed to udpPort through onDwell, in capture order.
func replayPCAP(ctx context.Context, pcapFile string, udpPort int, onDwell func(detection.Dwell)) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open pcap file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("failed to set BPF filter %q: %w", filter, err)
	}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				return nil
			}
			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}
			decodeAndDispatch(udp.Payload, onDwell)
		}
	}
}
