// Package manager implements the track manager: the orchestrator that
// drives preprocessing, clustering, IMM prediction, association, track
// lifecycle maintenance, deletion, and classification for one dwell at a
// time.
package manager

import (
	"fmt"
	"sort"

	"github.com/cuas-radar/tracker/internal/tracker/assoc"
	"github.com/cuas-radar/tracker/internal/tracker/cluster"
	"github.com/cuas-radar/tracker/internal/tracker/config"
	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/imm"
	"github.com/cuas-radar/tracker/internal/tracker/logging"
	"github.com/cuas-radar/tracker/internal/tracker/matkernel"
	"github.com/cuas-radar/tracker/internal/tracker/motion"
	"github.com/cuas-radar/tracker/internal/tracker/preprocess"
	"github.com/cuas-radar/tracker/internal/tracker/track"
)

const logModule = "manager"

// Manager owns every live track and the initiator that feeds it.
type Manager struct {
	cfg *config.TrackerConfig

	preprocessor *preprocess.Preprocessor
	clusterer    cluster.Clusterer
	initiator    *track.Initiator

	models     [imm.NumModels]motion.Model
	transition [imm.NumModels][imm.NumModels]float64
	modeProbs0 [imm.NumModels]float64
	measNoise  matkernel.MeasMatrix

	tracks map[uint32]*track.Track

	lastTimestampUs uint64
	dwellIndex      uint64
	haveLastTs      bool
}

// New constructs a manager from a fully resolved configuration.
func New(cfg *config.TrackerConfig) *Manager {
	models := buildModels(cfg.Prediction)
	transition := cfg.Prediction.GetIMM().GetTransitionMatrix()
	modeProbs0 := cfg.Prediction.GetIMM().GetInitialModeProbabilities()

	std := cfg.Association.GetMeasurementNoiseStd()
	var r matkernel.MeasMatrix
	r[0][0], r[1][1], r[2][2] = std*std, std*std, std*std

	initCfg := track.InitiatorConfig{
		M:                        cfg.TrackManagement.GetInitiation().GetM(),
		N:                        cfg.TrackManagement.GetInitiation().GetN(),
		MaxInitiationRange:       cfg.TrackManagement.GetInitiation().GetMaxInitiationRange(),
		VelocityGate:             cfg.TrackManagement.GetInitiation().GetVelocityGate(),
		Models:                   models,
		Transition:               transition,
		InitialModeProbabilities: modeProbs0,
		PositionStd:              cfg.TrackManagement.GetInitialCovariance().GetPositionStd(),
		VelocityStd:              cfg.TrackManagement.GetInitialCovariance().GetVelocityStd(),
		AccelerationStd:          cfg.TrackManagement.GetInitialCovariance().GetAccelerationStd(),
	}

	return &Manager{
		cfg:          cfg,
		preprocessor: &preprocess.Preprocessor{Bounds: buildBounds(cfg.Preprocessing)},
		clusterer:    buildClusterer(cfg.Clustering),
		initiator:    track.NewInitiator(initCfg, 1),
		models:       models,
		transition:   transition,
		modeProbs0:   modeProbs0,
		measNoise:    r,
		tracks:       make(map[uint32]*track.Track),
	}
}

func buildBounds(c *config.PreprocessConfig) preprocess.Bounds {
	return preprocess.Bounds{
		MinRange: c.GetMinRange(), MaxRange: c.GetMaxRange(),
		MinAzimuth: c.GetMinAzimuth(), MaxAzimuth: c.GetMaxAzimuth(),
		MinElevation: c.GetMinElevation(), MaxElevation: c.GetMaxElevation(),
		MinSNR: c.GetMinSNR(), MaxSNR: c.GetMaxSNR(),
		MinRCS: c.GetMinRCS(), MaxRCS: c.GetMaxRCS(),
		MinStrength: c.GetMinStrength(), MaxStrength: c.GetMaxStrength(),
	}
}

func buildClusterer(c *config.ClusterConfig) cluster.Clusterer {
	switch c.GetMethod() {
	case config.ClusterRangeBased:
		rb := c.GetRangeBased()
		return cluster.RangeClusterer{Config: cluster.RangeGateConfig{
			RangeGateSize: rb.GetRangeGateSize(), AzimuthGateSize: rb.GetAzimuthGateSize(), ElevationGateSize: rb.GetElevationGateSize(),
		}}
	case config.ClusterRangeStrength:
		rs := c.GetRangeStrength()
		return cluster.RangeStrengthClusterer{Config: cluster.RangeStrengthConfig{
			RangeGateSize: rs.GetRangeGateSize(), AzimuthGateSize: rs.GetAzimuthGateSize(),
			ElevationGateSize: rs.GetElevationGateSize(), StrengthGateSize: rs.GetStrengthGateSize(),
		}}
	default:
		db := c.GetDBScan()
		return cluster.DensityClusterer{Config: cluster.DensityConfig{
			EpsilonRange: db.GetEpsilonRange(), EpsilonAzimuth: db.GetEpsilonAzimuth(),
			EpsilonElevation: db.GetEpsilonElevation(), MinPoints: db.GetMinPoints(),
		}}
	}
}

func buildModels(c *config.PredictionConfig) [imm.NumModels]motion.Model {
	return [imm.NumModels]motion.Model{
		motion.CV{ProcessNoiseStd: c.GetCV().GetProcessNoiseStd()},
		motion.CA{ProcessNoiseStd: c.GetCA1().GetProcessNoiseStd(), AccelDecayRate: c.GetCA1().GetAccelDecayRate()},
		motion.CA{ProcessNoiseStd: c.GetCA2().GetProcessNoiseStd(), AccelDecayRate: c.GetCA2().GetAccelDecayRate()},
		motion.CTR{ProcessNoiseStd: c.GetCTR1().GetProcessNoiseStd(), TurnRateNoiseStd: c.GetCTR1().GetTurnRateNoiseStd()},
		motion.CTR{ProcessNoiseStd: c.GetCTR2().GetProcessNoiseStd(), TurnRateNoiseStd: c.GetCTR2().GetTurnRateNoiseStd()},
	}
}

// ProcessDwell runs the full per-dwell pipeline and returns every track still
// held afterward, including tracks marked Deleted during this dwell (they
// are pruned at the start of the next call).
func (m *Manager) ProcessDwell(dwell detection.Dwell) []*track.Track {
	m.dwellIndex++

	// Prune tracks marked Deleted last dwell now, after their one cycle of
	// visibility in the returned track set (and whatever it was sent to)
	// has already happened.
	m.pruneDeleted()

	dt := m.computeDt(dwell.TimestampUs)

	filtered := m.preprocessor.Process(dwell.Detections)
	clusters := m.clusterer.Cluster(filtered)

	for _, t := range m.tracks {
		if t.Status == track.StatusDeleted {
			continue
		}
		t.Filter.Predict(dt)
		t.Age++
	}

	result := m.associate(clusters)

	measCartesians := make([]matkernel.Meas, len(clusters))
	for i, c := range clusters {
		measCartesians[i] = matkernel.Meas{c.Centroid.X, c.Centroid.Y, c.Centroid.Z}
	}

	for trackID, clusterIdx := range result.MatchedTrackToCluster {
		t, ok := m.tracks[trackID]
		if !ok {
			continue
		}
		z := measCartesians[clusterIdx]
		if soft, ok := result.SoftWeights[trackID]; ok {
			z = soft
		}
		t.Filter.Update(z, m.measNoise)
		t.RecordHit(dwell.TimestampUs, m.cfg.TrackManagement.GetMaintenance().GetQualityBoost())
	}

	for _, trackID := range result.UnmatchedTracks {
		t, ok := m.tracks[trackID]
		if !ok {
			continue
		}
		t.RecordMiss(m.cfg.TrackManagement.GetMaintenance().GetQualityDecayRate())
	}

	var unmatchedClusters []cluster.Cluster
	for _, ci := range result.UnmatchedClusters {
		unmatchedClusters = append(unmatchedClusters, clusters[ci])
	}
	promoted := m.initiator.ProcessUnmatched(unmatchedClusters, m.dwellIndex, dwell.TimestampUs)
	for _, t := range promoted {
		m.tracks[t.ID] = t
	}
	m.initiator.Purge(m.dwellIndex)

	m.maintainAndDelete()
	m.classify()

	return m.liveTracks()
}

func (m *Manager) computeDt(timestampUs uint64) float64 {
	cyclePeriodSec := float64(m.cfg.System.GetCyclePeriodMs()) / 1000.0
	if !m.haveLastTs {
		m.haveLastTs = true
		m.lastTimestampUs = timestampUs
		return cyclePeriodSec
	}
	dtUs := int64(timestampUs) - int64(m.lastTimestampUs)
	m.lastTimestampUs = timestampUs
	dt := float64(dtUs) / 1e6
	if dt <= 0 || dt > 10 {
		logging.Warn(logModule, "implausible dt %.6fs, clamping to cycle period", dt)
		return cyclePeriodSec
	}
	return dt
}

func (m *Manager) associate(clusters []cluster.Cluster) assoc.Result {
	measCartesians := make([]matkernel.Meas, len(clusters))
	for i, c := range clusters {
		measCartesians[i] = matkernel.Meas{c.Centroid.X, c.Centroid.Y, c.Centroid.Z}
	}

	var gates []assoc.TrackGate
	for id, t := range m.tracks {
		if t.Status == track.StatusDeleted {
			continue
		}
		predicted, s := t.Gate(m.measNoise)
		gates = append(gates, assoc.TrackGate{TrackID: id, PredictedMeas: predicted, InnovCov: s})
	}

	switch m.cfg.Association.GetMethod() {
	case config.AssocJPDA:
		jc := m.cfg.Association.GetJPDA()
		return assoc.JPDAAssociate(measCartesians, gates, assoc.JPDAConfig{
			GateSize: jc.GetGateSize(), ClutterDensity: jc.GetClutterDensity(), DetectionProbability: jc.GetDetectionProbability(),
		})
	case config.AssocMahalanobis:
		// A pair must pass the gate and the nearest-neighbor distance threshold.
		threshold := m.cfg.Association.GetGatingThreshold()
		if d := m.cfg.Association.GetMahalanobis().GetDistanceThreshold(); d < threshold {
			threshold = d
		}
		return assoc.NearestNeighborAssociate(measCartesians, gates, threshold)
	default:
		gnn := m.cfg.Association.GetGNN()
		return assoc.GlobalNearestNeighborAssociate(measCartesians, gates, gnn.GetCostThreshold())
	}
}

func (m *Manager) maintainAndDelete() {
	maint := m.cfg.TrackManagement.GetMaintenance()
	del := m.cfg.TrackManagement.GetDeletion()

	for id, t := range m.tracks {
		if t.Status == track.StatusDeleted {
			continue
		}

		switch t.Status {
		case track.StatusTentative:
			if int(t.HitCount) >= maint.GetConfirmHits() {
				t.Status = track.StatusConfirmed
			}
		case track.StatusConfirmed:
			if t.ConsecutiveMisses > 0 {
				t.Status = track.StatusCoasting
			}
		case track.StatusCoasting:
			if t.ConsecutiveMisses == 0 {
				t.Status = track.StatusConfirmed
			}
		}

		if int(t.ConsecutiveMisses) >= del.GetMaxCoastingDwells() || t.Quality < del.GetMinQuality() || t.Range() > del.GetMaxRange() {
			t.Status = track.StatusDeleted
		}

		m.tracks[id] = t
	}
}

// pruneDeleted removes tracks marked Deleted in a prior dwell from the live
// set. Deletion happens one dwell after the status transition so the dwell
// in which a track is marked Deleted can still report it in ProcessDwell's
// returned track set.
func (m *Manager) pruneDeleted() {
	for id, t := range m.tracks {
		if t.Status == track.StatusDeleted {
			delete(m.tracks, id)
		}
	}
}

func (m *Manager) classify() {
	for _, t := range m.tracks {
		t.Classify()
	}
}

func (m *Manager) liveTracks() []*track.Track {
	out := make([]*track.Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats reports simple counters useful for periodic logging.
func (m *Manager) Stats() string {
	return fmt.Sprintf("dwell=%d tracks=%d candidates=%d", m.dwellIndex, len(m.tracks), m.initiator.CandidateCount())
}
