// Package grpcapi streams live track tables to external dashboards and
// tooling over gRPC, independent of the UDP track-table wire feed consumed
// by downstream radar systems. It fans each processing cycle's output out to
// every connected client, the same broadcast shape used elsewhere in this
// codebase's streaming services.
package grpcapi

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/cuas-radar/tracker/internal/tracker/logging"
	"github.com/cuas-radar/tracker/internal/tracker/track"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

const logModule = "grpcapi"

// trackClient is one connected StreamTracks call.
type trackClient struct {
	id     string
	ch     chan TrackTableMessage
	filter map[uint32]bool
}

// Server implements the track streaming service and fans out each cycle's
// live track table to every subscriber.
type Server struct {
	clientsMu   sync.RWMutex
	clients     map[string]*trackClient
	clientCount atomic.Int32
}

// NewServer constructs a Server with no subscribers.
func NewServer() *Server {
	return &Server{clients: make(map[string]*trackClient)}
}

// Publish fans out one cycle's live tracks to every connected client,
// applying each client's status filter if set. Never blocks: a client whose
// buffer is full simply misses this cycle, since staying current matters
// more than replaying history over this side channel.
func (s *Server) Publish(tracks []*track.Track, timestampUs uint64) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if len(s.clients) == 0 {
		return
	}

	all := make([]TrackMessage, len(tracks))
	for i, t := range tracks {
		all[i] = toMessage(wire.FromTrack(t, timestampUs))
	}

	for _, c := range s.clients {
		msg := TrackTableMessage{TimestampUs: timestampUs, Tracks: filterTracks(all, c.filter)}
		select {
		case c.ch <- msg:
		default:
			logging.Warn(logModule, "client %s is slow, dropping cycle", c.id)
		}
	}
}

func filterTracks(all []TrackMessage, filter map[uint32]bool) []TrackMessage {
	if len(filter) == 0 {
		return all
	}
	out := make([]TrackMessage, 0, len(all))
	for _, t := range all {
		if filter[t.Status] {
			out = append(out, t)
		}
	}
	return out
}

func toMessage(u wire.TrackUpdate) TrackMessage {
	return TrackMessage{
		TrackID: u.TrackID, TimestampUs: u.TimestampUs,
		Status: u.Status, Classification: u.Classification,
		Range: u.Range, Azimuth: u.Azimuth, Elevation: u.Elevation, RangeRate: u.RangeRate,
		X: u.X, Y: u.Y, Z: u.Z, Vx: u.Vx, Vy: u.Vy, Vz: u.Vz,
		Quality: u.TrackQuality, HitCount: u.HitCount, MissCount: u.MissCount, Age: u.Age,
	}
}

// StreamTracks serves one client's subscription until its context is
// canceled. It implements the handler invoked by the hand-registered
// service descriptor below.
func (s *Server) StreamTracks(ctx context.Context, req *StreamTracksRequest, send func(TrackTableMessage) error) error {
	id := uuid.NewString()
	filter := make(map[uint32]bool, len(req.StatusFilter))
	for _, st := range req.StatusFilter {
		filter[st] = true
	}

	client := &trackClient{id: id, ch: make(chan TrackTableMessage, 8), filter: filter}
	s.clientsMu.Lock()
	s.clients[id] = client
	s.clientsMu.Unlock()
	s.clientCount.Add(1)
	logging.Info(logModule, "client %s connected (total=%d)", id, s.clientCount.Load())

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, id)
		s.clientsMu.Unlock()
		s.clientCount.Add(-1)
		logging.Info(logModule, "client %s disconnected (remaining=%d)", id, s.clientCount.Load())
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-client.ch:
			if err := send(msg); err != nil {
				return err
			}
		}
	}
}

// ClientCount reports the number of currently connected streaming clients.
func (s *Server) ClientCount() int32 {
	return s.clientCount.Load()
}

// streamTracksHandler adapts grpc.StreamServer to Server.StreamTracks using
// the JSON codec this package registers in its init function.
func streamTracksHandler(srv interface{}, stream grpc.ServerStream) error {
	s := srv.(*Server)

	var req StreamTracksRequest
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}

	return s.StreamTracks(stream.Context(), &req, func(msg TrackTableMessage) error {
		return stream.SendMsg(&msg)
	})
}

// serviceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit for a service exposing one server-streaming RPC.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "tracker.TrackStreamService",
	HandlerType: (*Server)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamTracks",
			Handler:       streamTracksHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tracker/grpcapi/track_stream.proto",
}

// Register registers the track streaming service with grpcServer. The JSON
// codec the service depends on is registered by this package's init.
func Register(grpcServer *grpc.Server, server *Server) {
	grpcServer.RegisterService(&serviceDesc, server)
}
