package track

import (
	"math"

	"github.com/cuas-radar/tracker/internal/tracker/cluster"
	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/imm"
	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
	"github.com/cuas-radar/tracker/internal/tracker/motion"
)

// candidateHit is one detection in a candidate's history.
type candidateHit struct {
	centroid detection.Cartesian
	spher    detection.Spherical
	dwell    uint64
	tsUs     uint64
}

// Candidate tracks a run of unmatched clusters that may grow into a track.
type Candidate struct {
	history   []candidateHit
	hits      int
	total     int
	promoted  bool
}

// InitiatorConfig parameterizes the M-of-N initiator.
type InitiatorConfig struct {
	M                  int
	N                  int
	MaxInitiationRange float64
	VelocityGate       float64

	// Model bank and transition matrix used to seed every promoted track's
	// IMM filter.
	Models     [imm.NumModels]motion.Model
	Transition [imm.NumModels][imm.NumModels]float64
	InitialModeProbabilities [imm.NumModels]float64

	PositionStd     float64
	VelocityStd     float64
	AccelerationStd float64
}

// Initiator owns initiation candidates and promotes them into new tracks.
type Initiator struct {
	cfg        InitiatorConfig
	candidates []*Candidate
	nextTrackID uint32
}

// NewInitiator constructs an initiator. nextTrackID is the first ID handed
// out to a newly promoted track.
func NewInitiator(cfg InitiatorConfig, nextTrackID uint32) *Initiator {
	return &Initiator{cfg: cfg, nextTrackID: nextTrackID}
}

const angleGate = 0.1 // radians, fixed per the M-of-N matching rule

// ProcessUnmatched feeds this dwell's unmatched clusters into the candidate
// pool, returning any tracks promoted as a result.
func (in *Initiator) ProcessUnmatched(clusters []cluster.Cluster, dwellIndex uint64, nowUs uint64) []*Track {
	var promoted []*Track

	for _, c := range clusters {
		if c.Spherical.Range > in.cfg.MaxInitiationRange {
			continue
		}

		hit := candidateHit{centroid: c.Centroid, spher: c.Spherical, dwell: dwellIndex, tsUs: nowUs}

		matchedCand := in.findMatch(hit)
		if matchedCand == nil {
			in.candidates = append(in.candidates, &Candidate{
				history: []candidateHit{hit},
				hits:    1,
				total:   1,
			})
			continue
		}

		matchedCand.history = append(matchedCand.history, hit)
		matchedCand.hits++
		matchedCand.total++

		if matchedCand.hits >= in.cfg.M && matchedCand.total <= in.cfg.N {
			t := in.promote(matchedCand, nowUs)
			matchedCand.promoted = true
			promoted = append(promoted, t)
		}
	}

	return promoted
}

func (in *Initiator) findMatch(hit candidateHit) *Candidate {
	for _, cand := range in.candidates {
		if cand.promoted || len(cand.history) == 0 {
			continue
		}
		last := cand.history[len(cand.history)-1]
		dt := secondsBetween(last.tsUs, hit.tsUs)
		velocityTolerance := in.cfg.VelocityGate*dt + 100.0

		dRange := math.Abs(hit.spher.Range - last.spher.Range)
		dAz := angularDiff(hit.spher.Azimuth, last.spher.Azimuth)
		dEl := math.Abs(hit.spher.Elevation - last.spher.Elevation)

		if dRange < velocityTolerance && dAz < angleGate && dEl < angleGate {
			return cand
		}
	}
	return nil
}

func angularDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func secondsBetween(fromUs, toUs uint64) float64 {
	if toUs < fromUs {
		return 0
	}
	return float64(toUs-fromUs) / 1e6
}

func (in *Initiator) promote(cand *Candidate, nowUs uint64) *Track {
	latest := cand.history[len(cand.history)-1]

	var vx, vy, vz float64
	if len(cand.history) >= 2 {
		prior := cand.history[len(cand.history)-2]
		dt := secondsBetween(prior.tsUs, latest.tsUs)
		if dt > 1e-6 {
			vx = (latest.centroid.X - prior.centroid.X) / dt
			vy = (latest.centroid.Y - prior.centroid.Y) / dt
			vz = (latest.centroid.Z - prior.centroid.Z) / dt
		}
	}

	var x0 matkernel.State
	x0[0], x0[1] = latest.centroid.X, vx
	x0[3], x0[4] = latest.centroid.Y, vy
	x0[6], x0[7] = latest.centroid.Z, vz

	p0 := initialCovariance(in.cfg.PositionStd, in.cfg.VelocityStd, in.cfg.AccelerationStd)

	filter := imm.NewFilter(in.cfg.Models, in.cfg.Transition, in.cfg.InitialModeProbabilities, x0, p0)

	id := in.nextTrackID
	in.nextTrackID++

	return New(id, filter, nowUs)
}

func initialCovariance(posStd, velStd, accStd float64) matkernel.StateMatrix {
	var p matkernel.StateMatrix
	for _, base := range []int{0, 3, 6} {
		p[base][base] = posStd * posStd
		p[base+1][base+1] = velStd * velStd
		p[base+2][base+2] = accStd * accStd
	}
	return p
}

// Purge removes candidates that have been promoted, have gone empty, have
// exceeded total >= N without reaching M hits, or have gone stale (more
// than N+5 dwells since their first detection).
func (in *Initiator) Purge(currentDwell uint64) {
	kept := in.candidates[:0]
	for _, cand := range in.candidates {
		if cand.promoted {
			continue
		}
		if len(cand.history) == 0 {
			continue
		}
		if cand.total >= in.cfg.N && cand.hits < in.cfg.M {
			continue
		}
		first := cand.history[0]
		if currentDwell > first.dwell && currentDwell-first.dwell > uint64(in.cfg.N+5) {
			continue
		}
		kept = append(kept, cand)
	}
	in.candidates = kept
}

// CandidateCount reports the number of live (non-promoted) candidates, used
// for observability and tests.
func (in *Initiator) CandidateCount() int {
	return len(in.candidates)
}
