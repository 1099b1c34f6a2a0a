package pipeline

import (
	"sync"
	"time"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/config"
	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/manager"
	"github.com/cuas-radar/tracker/internal/tracker/track"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

// TrackTableSink receives the encoded track table produced at the end of
// every processing cycle, ready to hand to a transport sender.
type TrackTableSink func(buf []byte)

// TrackTablePublisher receives every track the manager returned for a
// processed dwell, in native form, for collaborators that want structured
// access rather than the encoded wire bytes (e.g. a gRPC fan-out service).
// Tracks marked Deleted during that dwell are included; the
// sendDeletedTracks filter applies only to the encoded table.
type TrackTablePublisher func(tracks []*track.Track, timestampUs uint64)

// Engine owns the dwell queue and the processing-thread loop that drains it
// once per cycle, driving the track manager and emitting a track table.
type Engine struct {
	queue             *DwellQueue
	mgr               *manager.Manager
	cyclePeriod       time.Duration
	sink              TrackTableSink
	publish           TrackTablePublisher
	log               *binlog.Writer
	sendDeletedTracks bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New constructs an engine around a fresh track manager built from cfg.
func New(cfg *config.TrackerConfig, queueCapacity int, sink TrackTableSink, log *binlog.Writer) *Engine {
	return &Engine{
		queue:             NewDwellQueue(queueCapacity),
		mgr:               manager.New(cfg),
		cyclePeriod:       time.Duration(cfg.System.GetCyclePeriodMs()) * time.Millisecond,
		sink:              sink,
		log:               log,
		sendDeletedTracks: cfg.Display.GetSendDeletedTracks(),
		stopCh:            make(chan struct{}),
	}
}

// SetPublisher registers an additional collaborator that receives every
// processed dwell's tracks in native form. Must be called before Start.
func (e *Engine) SetPublisher(p TrackTablePublisher) {
	e.publish = p
}

// Enqueue is the ingress thread's entry point: hand a freshly decoded dwell
// to the processing thread without blocking.
func (e *Engine) Enqueue(d detection.Dwell) {
	if e.log != nil && e.log.IsOpen() {
		e.log.WriteRecord(binlog.RecordRaw, d.TimestampUs, wire.EncodeDwell(d))
	}
	e.queue.Push(d)
}

// Start launches the processing thread. Calls after the first have no
// effect.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run()
}

// Stop signals the processing thread to exit and waits for it to finish.
// Calling it again is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	select {
	case <-e.stopCh:
		e.mu.Unlock()
		return
	default:
		close(e.stopCh)
	}
	e.mu.Unlock()
	e.queue.Close()
	e.wg.Wait()
}

func (e *Engine) run() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cyclePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			// Process every queued dwell, oldest first.
			for {
				d, ok := e.tryPop()
				if !ok {
					break
				}
				e.processOne(d)
			}
		}
	}
}

func (e *Engine) tryPop() (detection.Dwell, bool) {
	if e.queue.Len() == 0 {
		return detection.Dwell{}, false
	}
	return e.queue.Pop()
}

func (e *Engine) processOne(d detection.Dwell) {
	tracks := e.mgr.ProcessDwell(d)

	updates := make([]wire.TrackUpdate, 0, len(tracks))
	for _, t := range tracks {
		if t.Status == track.StatusDeleted && !e.sendDeletedTracks {
			continue
		}
		updates = append(updates, wire.FromTrack(t, d.TimestampUs))
	}

	buf := wire.EncodeTrackTable(d.TimestampUs, updates)
	if e.log != nil && e.log.IsOpen() {
		e.log.WriteRecord(binlog.RecordSent, d.TimestampUs, buf)
	}
	if e.sink != nil {
		e.sink(buf)
	}
	if e.publish != nil {
		e.publish(tracks, d.TimestampUs)
	}
}

// Stats exposes the underlying manager's observability summary.
func (e *Engine) Stats() string {
	return e.mgr.Stats()
}
