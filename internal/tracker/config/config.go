// Package config loads and validates the tracker's configuration surface.
// It follows the same pointer-optional, Get*-accessor pattern used
// elsewhere in this codebase: every leaf is a pointer so a partial JSON
// document only overrides what it sets, and every leaf has a documented
// hardcoded default reachable even from a nil pointer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrS(v string) *string   { return &v }
func ptrB(v bool) *bool       { return &v }

// SystemConfig governs process-wide behavior.
type SystemConfig struct {
	CyclePeriodMs         *int    `json:"cyclePeriodMs,omitempty"`
	MaxDetectionsPerDwell *int    `json:"maxDetectionsPerDwell,omitempty"`
	MaxTracks             *int    `json:"maxTracks,omitempty"`
	LogDirectory          *string `json:"logDirectory,omitempty"`
	LogEnabled            *bool   `json:"logEnabled,omitempty"`
	LogLevel              *int    `json:"logLevel,omitempty"`
}

func (c *SystemConfig) GetCyclePeriodMs() int {
	if c == nil || c.CyclePeriodMs == nil {
		return 100
	}
	return *c.CyclePeriodMs
}
func (c *SystemConfig) GetMaxDetectionsPerDwell() int {
	if c == nil || c.MaxDetectionsPerDwell == nil {
		return 256
	}
	return *c.MaxDetectionsPerDwell
}
func (c *SystemConfig) GetMaxTracks() int {
	if c == nil || c.MaxTracks == nil {
		return 200
	}
	return *c.MaxTracks
}
func (c *SystemConfig) GetLogDirectory() string {
	if c == nil || c.LogDirectory == nil {
		return "./logs"
	}
	return *c.LogDirectory
}
func (c *SystemConfig) GetLogEnabled() bool {
	if c == nil || c.LogEnabled == nil {
		return true
	}
	return *c.LogEnabled
}
func (c *SystemConfig) GetLogLevel() int {
	if c == nil || c.LogLevel == nil {
		return 3
	}
	return *c.LogLevel
}

// NetworkConfig governs the ambient UDP transport (outside the core).
type NetworkConfig struct {
	ReceiverIP       *string `json:"receiverIp,omitempty"`
	ReceiverPort     *int    `json:"receiverPort,omitempty"`
	SenderIP         *string `json:"senderIp,omitempty"`
	SenderPort       *int    `json:"senderPort,omitempty"`
	ReceiveBufferSize *int   `json:"receiveBufferSize,omitempty"`
	SendBufferSize    *int   `json:"sendBufferSize,omitempty"`
}

func (c *NetworkConfig) GetReceiverIP() string {
	if c == nil || c.ReceiverIP == nil {
		return "0.0.0.0"
	}
	return *c.ReceiverIP
}
func (c *NetworkConfig) GetReceiverPort() int {
	if c == nil || c.ReceiverPort == nil {
		return 50000
	}
	return *c.ReceiverPort
}
func (c *NetworkConfig) GetSenderIP() string {
	if c == nil || c.SenderIP == nil {
		return "127.0.0.1"
	}
	return *c.SenderIP
}
func (c *NetworkConfig) GetSenderPort() int {
	if c == nil || c.SenderPort == nil {
		return 50001
	}
	return *c.SenderPort
}
func (c *NetworkConfig) GetReceiveBufferSize() int {
	if c == nil || c.ReceiveBufferSize == nil {
		return 65536
	}
	return *c.ReceiveBufferSize
}
func (c *NetworkConfig) GetSendBufferSize() int {
	if c == nil || c.SendBufferSize == nil {
		return 65536
	}
	return *c.SendBufferSize
}

// PreprocessConfig bounds every detection field the preprocessor gates on.
type PreprocessConfig struct {
	MinRange     *float64 `json:"minRange,omitempty"`
	MaxRange     *float64 `json:"maxRange,omitempty"`
	MinAzimuth   *float64 `json:"minAzimuth,omitempty"`
	MaxAzimuth   *float64 `json:"maxAzimuth,omitempty"`
	MinElevation *float64 `json:"minElevation,omitempty"`
	MaxElevation *float64 `json:"maxElevation,omitempty"`
	MinSNR       *float64 `json:"minSNR,omitempty"`
	MaxSNR       *float64 `json:"maxSNR,omitempty"`
	MinRCS       *float64 `json:"minRCS,omitempty"`
	MaxRCS       *float64 `json:"maxRCS,omitempty"`
	MinStrength  *float64 `json:"minStrength,omitempty"`
	MaxStrength  *float64 `json:"maxStrength,omitempty"`
}

const piApprox = 3.14159265358979323846

func (c *PreprocessConfig) GetMinRange() float64 {
	if c == nil || c.MinRange == nil {
		return 50.0
	}
	return *c.MinRange
}
func (c *PreprocessConfig) GetMaxRange() float64 {
	if c == nil || c.MaxRange == nil {
		return 20000.0
	}
	return *c.MaxRange
}
func (c *PreprocessConfig) GetMinAzimuth() float64 {
	if c == nil || c.MinAzimuth == nil {
		return -piApprox
	}
	return *c.MinAzimuth
}
func (c *PreprocessConfig) GetMaxAzimuth() float64 {
	if c == nil || c.MaxAzimuth == nil {
		return piApprox
	}
	return *c.MaxAzimuth
}
func (c *PreprocessConfig) GetMinElevation() float64 {
	if c == nil || c.MinElevation == nil {
		return -0.1745
	}
	return *c.MinElevation
}
func (c *PreprocessConfig) GetMaxElevation() float64 {
	if c == nil || c.MaxElevation == nil {
		return 1.5708
	}
	return *c.MaxElevation
}
func (c *PreprocessConfig) GetMinSNR() float64 {
	if c == nil || c.MinSNR == nil {
		return 8.0
	}
	return *c.MinSNR
}
func (c *PreprocessConfig) GetMaxSNR() float64 {
	if c == nil || c.MaxSNR == nil {
		return 60.0
	}
	return *c.MaxSNR
}
func (c *PreprocessConfig) GetMinRCS() float64 {
	if c == nil || c.MinRCS == nil {
		return -30.0
	}
	return *c.MinRCS
}
func (c *PreprocessConfig) GetMaxRCS() float64 {
	if c == nil || c.MaxRCS == nil {
		return 20.0
	}
	return *c.MaxRCS
}
func (c *PreprocessConfig) GetMinStrength() float64 {
	if c == nil || c.MinStrength == nil {
		return -100.0
	}
	return *c.MinStrength
}
func (c *PreprocessConfig) GetMaxStrength() float64 {
	if c == nil || c.MaxStrength == nil {
		return 0.0
	}
	return *c.MaxStrength
}

// DBScanConfig parameterizes density clustering.
type DBScanConfig struct {
	EpsilonRange     *float64 `json:"epsilonRange,omitempty"`
	EpsilonAzimuth   *float64 `json:"epsilonAzimuth,omitempty"`
	EpsilonElevation *float64 `json:"epsilonElevation,omitempty"`
	MinPoints        *int     `json:"minPoints,omitempty"`
}

func (c *DBScanConfig) GetEpsilonRange() float64 {
	if c == nil || c.EpsilonRange == nil {
		return 50.0
	}
	return *c.EpsilonRange
}
func (c *DBScanConfig) GetEpsilonAzimuth() float64 {
	if c == nil || c.EpsilonAzimuth == nil {
		return 0.02
	}
	return *c.EpsilonAzimuth
}
func (c *DBScanConfig) GetEpsilonElevation() float64 {
	if c == nil || c.EpsilonElevation == nil {
		return 0.02
	}
	return *c.EpsilonElevation
}
func (c *DBScanConfig) GetMinPoints() int {
	if c == nil || c.MinPoints == nil {
		return 2
	}
	return *c.MinPoints
}

// RangeBasedConfig parameterizes range-gate clustering.
type RangeBasedConfig struct {
	RangeGateSize     *float64 `json:"rangeGateSize,omitempty"`
	AzimuthGateSize   *float64 `json:"azimuthGateSize,omitempty"`
	ElevationGateSize *float64 `json:"elevationGateSize,omitempty"`
}

func (c *RangeBasedConfig) GetRangeGateSize() float64 {
	if c == nil || c.RangeGateSize == nil {
		return 75.0
	}
	return *c.RangeGateSize
}
func (c *RangeBasedConfig) GetAzimuthGateSize() float64 {
	if c == nil || c.AzimuthGateSize == nil {
		return 0.03
	}
	return *c.AzimuthGateSize
}
func (c *RangeBasedConfig) GetElevationGateSize() float64 {
	if c == nil || c.ElevationGateSize == nil {
		return 0.03
	}
	return *c.ElevationGateSize
}

// RangeStrengthConfig extends RangeBasedConfig with a strength gate.
type RangeStrengthConfig struct {
	RangeGateSize     *float64 `json:"rangeGateSize,omitempty"`
	AzimuthGateSize   *float64 `json:"azimuthGateSize,omitempty"`
	ElevationGateSize *float64 `json:"elevationGateSize,omitempty"`
	StrengthGateSize  *float64 `json:"strengthGateSize,omitempty"`
}

func (c *RangeStrengthConfig) GetRangeGateSize() float64 {
	if c == nil || c.RangeGateSize == nil {
		return 75.0
	}
	return *c.RangeGateSize
}
func (c *RangeStrengthConfig) GetAzimuthGateSize() float64 {
	if c == nil || c.AzimuthGateSize == nil {
		return 0.03
	}
	return *c.AzimuthGateSize
}
func (c *RangeStrengthConfig) GetElevationGateSize() float64 {
	if c == nil || c.ElevationGateSize == nil {
		return 0.03
	}
	return *c.ElevationGateSize
}
func (c *RangeStrengthConfig) GetStrengthGateSize() float64 {
	if c == nil || c.StrengthGateSize == nil {
		return 6.0
	}
	return *c.StrengthGateSize
}

// ClusterMethod selects which clustering strategy the engine constructs.
type ClusterMethod string

const (
	ClusterDBSCAN         ClusterMethod = "dbscan"
	ClusterRangeBased     ClusterMethod = "range_based"
	ClusterRangeStrength  ClusterMethod = "range_strength"
)

type ClusterConfig struct {
	Method        *string               `json:"method,omitempty"`
	DBScan        *DBScanConfig         `json:"dbscan,omitempty"`
	RangeBased    *RangeBasedConfig     `json:"rangeBased,omitempty"`
	RangeStrength *RangeStrengthConfig  `json:"rangeStrength,omitempty"`
}

func (c *ClusterConfig) GetMethod() ClusterMethod {
	if c == nil || c.Method == nil || *c.Method == "" {
		return ClusterDBSCAN
	}
	return ClusterMethod(*c.Method)
}
func (c *ClusterConfig) GetDBScan() *DBScanConfig {
	if c == nil {
		return nil
	}
	return c.DBScan
}
func (c *ClusterConfig) GetRangeBased() *RangeBasedConfig {
	if c == nil {
		return nil
	}
	return c.RangeBased
}
func (c *ClusterConfig) GetRangeStrength() *RangeStrengthConfig {
	if c == nil {
		return nil
	}
	return c.RangeStrength
}

// IMMConfig configures the five-model filter bank.
type IMMConfig struct {
	InitialModeProbabilities []float64   `json:"initialModeProbabilities,omitempty"`
	TransitionMatrix         [][]float64 `json:"transitionMatrix,omitempty"`
}

const numModels = 5

func (c *IMMConfig) GetInitialModeProbabilities() [numModels]float64 {
	def := [numModels]float64{0.4, 0.15, 0.15, 0.15, 0.15}
	if c == nil || len(c.InitialModeProbabilities) != numModels {
		return def
	}
	var out [numModels]float64
	copy(out[:], c.InitialModeProbabilities)
	return out
}

func (c *IMMConfig) GetTransitionMatrix() [numModels][numModels]float64 {
	if c != nil && len(c.TransitionMatrix) == numModels {
		var out [numModels][numModels]float64
		ok := true
		for i := 0; i < numModels; i++ {
			if len(c.TransitionMatrix[i]) != numModels {
				ok = false
				break
			}
			copy(out[i][:], c.TransitionMatrix[i])
		}
		if ok {
			return out
		}
	}
	// Default: strong self-transition, small leakage to neighbours.
	var out [numModels][numModels]float64
	const stay = 0.90
	leak := (1.0 - stay) / (numModels - 1)
	for i := 0; i < numModels; i++ {
		for j := 0; j < numModels; j++ {
			if i == j {
				out[i][j] = stay
			} else {
				out[i][j] = leak
			}
		}
	}
	return out
}

type CVConfig struct {
	ProcessNoiseStd *float64 `json:"processNoiseStd,omitempty"`
}

func (c *CVConfig) GetProcessNoiseStd() float64 {
	if c == nil || c.ProcessNoiseStd == nil {
		return 1.0
	}
	return *c.ProcessNoiseStd
}

type CAConfig struct {
	ProcessNoiseStd *float64 `json:"processNoiseStd,omitempty"`
	AccelDecayRate  *float64 `json:"accelDecayRate,omitempty"`
}

func (c *CAConfig) GetProcessNoiseStd() float64 {
	if c == nil || c.ProcessNoiseStd == nil {
		return 2.0
	}
	return *c.ProcessNoiseStd
}
func (c *CAConfig) GetAccelDecayRate() float64 {
	if c == nil || c.AccelDecayRate == nil {
		return 0.95
	}
	return *c.AccelDecayRate
}

type CTRConfig struct {
	ProcessNoiseStd  *float64 `json:"processNoiseStd,omitempty"`
	TurnRateNoiseStd *float64 `json:"turnRateNoiseStd,omitempty"`
}

func (c *CTRConfig) GetProcessNoiseStd() float64 {
	if c == nil || c.ProcessNoiseStd == nil {
		return 1.5
	}
	return *c.ProcessNoiseStd
}
func (c *CTRConfig) GetTurnRateNoiseStd() float64 {
	if c == nil || c.TurnRateNoiseStd == nil {
		return 0.05
	}
	return *c.TurnRateNoiseStd
}

type PredictionConfig struct {
	IMM  *IMMConfig `json:"imm,omitempty"`
	CV   *CVConfig  `json:"cv,omitempty"`
	CA1  *CAConfig  `json:"ca1,omitempty"`
	CA2  *CAConfig  `json:"ca2,omitempty"`
	CTR1 *CTRConfig `json:"ctr1,omitempty"`
	CTR2 *CTRConfig `json:"ctr2,omitempty"`
}

func (c *PredictionConfig) GetIMM() *IMMConfig {
	if c == nil {
		return nil
	}
	return c.IMM
}
func (c *PredictionConfig) GetCV() *CVConfig {
	if c == nil {
		return nil
	}
	return c.CV
}
func (c *PredictionConfig) GetCA1() *CAConfig {
	if c == nil {
		return nil
	}
	return c.CA1
}
func (c *PredictionConfig) GetCA2() *CAConfig {
	if c == nil {
		return nil
	}
	return c.CA2
}
func (c *PredictionConfig) GetCTR1() *CTRConfig {
	if c == nil {
		return nil
	}
	return c.CTR1
}
func (c *PredictionConfig) GetCTR2() *CTRConfig {
	if c == nil {
		return nil
	}
	return c.CTR2
}

type MahalanobisConfig struct {
	DistanceThreshold *float64 `json:"distanceThreshold,omitempty"`
}

func (c *MahalanobisConfig) GetDistanceThreshold() float64 {
	if c == nil || c.DistanceThreshold == nil {
		return 9.21
	}
	return *c.DistanceThreshold
}

type GNNConfig struct {
	CostThreshold *float64 `json:"costThreshold,omitempty"`
}

func (c *GNNConfig) GetCostThreshold() float64 {
	if c == nil || c.CostThreshold == nil {
		return 16.0
	}
	return *c.CostThreshold
}

type JPDAConfig struct {
	GateSize             *float64 `json:"gateSize,omitempty"`
	ClutterDensity       *float64 `json:"clutterDensity,omitempty"`
	DetectionProbability *float64 `json:"detectionProbability,omitempty"`
}

func (c *JPDAConfig) GetGateSize() float64 {
	if c == nil || c.GateSize == nil {
		return 16.0
	}
	return *c.GateSize
}
func (c *JPDAConfig) GetClutterDensity() float64 {
	if c == nil || c.ClutterDensity == nil {
		return 1e-6
	}
	return *c.ClutterDensity
}
func (c *JPDAConfig) GetDetectionProbability() float64 {
	if c == nil || c.DetectionProbability == nil {
		return 0.9
	}
	return *c.DetectionProbability
}

type AssociationMethod string

const (
	AssocMahalanobis AssociationMethod = "mahalanobis"
	AssocGNN         AssociationMethod = "gnn"
	AssocJPDA        AssociationMethod = "jpda"
)

type AssociationConfig struct {
	Method               *string            `json:"method,omitempty"`
	GatingThreshold      *float64           `json:"gatingThreshold,omitempty"`
	MeasurementNoiseStd  *float64           `json:"measurementNoiseStd,omitempty"`
	Mahalanobis          *MahalanobisConfig `json:"mahalanobis,omitempty"`
	GNN                  *GNNConfig         `json:"gnn,omitempty"`
	JPDA                 *JPDAConfig        `json:"jpda,omitempty"`
}

func (c *AssociationConfig) GetMethod() AssociationMethod {
	if c == nil || c.Method == nil || *c.Method == "" {
		return AssocGNN
	}
	return AssociationMethod(*c.Method)
}
func (c *AssociationConfig) GetGatingThreshold() float64 {
	if c == nil || c.GatingThreshold == nil {
		return 16.0
	}
	return *c.GatingThreshold
}

// GetMeasurementNoiseStd resolves Open Question (2): the reference
// hard-codes sigma_R=25; this implementation exposes it here.
func (c *AssociationConfig) GetMeasurementNoiseStd() float64 {
	if c == nil || c.MeasurementNoiseStd == nil {
		return 25.0
	}
	return *c.MeasurementNoiseStd
}
func (c *AssociationConfig) GetMahalanobis() *MahalanobisConfig {
	if c == nil {
		return nil
	}
	return c.Mahalanobis
}
func (c *AssociationConfig) GetGNN() *GNNConfig {
	if c == nil {
		return nil
	}
	return c.GNN
}
func (c *AssociationConfig) GetJPDA() *JPDAConfig {
	if c == nil {
		return nil
	}
	return c.JPDA
}

type InitiationConfig struct {
	M                  *int     `json:"m,omitempty"`
	N                  *int     `json:"n,omitempty"`
	MaxInitiationRange *float64 `json:"maxInitiationRange,omitempty"`
	VelocityGate       *float64 `json:"velocityGate,omitempty"`
}

func (c *InitiationConfig) GetM() int {
	if c == nil || c.M == nil {
		return 3
	}
	return *c.M
}
func (c *InitiationConfig) GetN() int {
	if c == nil || c.N == nil {
		return 5
	}
	return *c.N
}
func (c *InitiationConfig) GetMaxInitiationRange() float64 {
	if c == nil || c.MaxInitiationRange == nil {
		return 15000.0
	}
	return *c.MaxInitiationRange
}
func (c *InitiationConfig) GetVelocityGate() float64 {
	if c == nil || c.VelocityGate == nil {
		return 100.0
	}
	return *c.VelocityGate
}

type MaintenanceConfig struct {
	ConfirmHits        *int     `json:"confirmHits,omitempty"`
	CoastingLimit      *int     `json:"coastingLimit,omitempty"`
	DeleteAfterMisses  *int     `json:"deleteAfterMisses,omitempty"`
	QualityDecayRate   *float64 `json:"qualityDecayRate,omitempty"`
	QualityBoost       *float64 `json:"qualityBoost,omitempty"`
	MinQualityThreshold *float64 `json:"minQualityThreshold,omitempty"`
}

func (c *MaintenanceConfig) GetConfirmHits() int {
	if c == nil || c.ConfirmHits == nil {
		return 5
	}
	return *c.ConfirmHits
}
func (c *MaintenanceConfig) GetCoastingLimit() int {
	if c == nil || c.CoastingLimit == nil {
		return 10
	}
	return *c.CoastingLimit
}
func (c *MaintenanceConfig) GetDeleteAfterMisses() int {
	if c == nil || c.DeleteAfterMisses == nil {
		return 15
	}
	return *c.DeleteAfterMisses
}
func (c *MaintenanceConfig) GetQualityDecayRate() float64 {
	if c == nil || c.QualityDecayRate == nil {
		return 0.95
	}
	return *c.QualityDecayRate
}
func (c *MaintenanceConfig) GetQualityBoost() float64 {
	if c == nil || c.QualityBoost == nil {
		return 0.1
	}
	return *c.QualityBoost
}
func (c *MaintenanceConfig) GetMinQualityThreshold() float64 {
	if c == nil || c.MinQualityThreshold == nil {
		return 0.1
	}
	return *c.MinQualityThreshold
}

type DeletionConfig struct {
	MaxCoastingDwells *int     `json:"maxCoastingDwells,omitempty"`
	MinQuality        *float64 `json:"minQuality,omitempty"`
	MaxRange          *float64 `json:"maxRange,omitempty"`
}

func (c *DeletionConfig) GetMaxCoastingDwells() int {
	if c == nil || c.MaxCoastingDwells == nil {
		return 15
	}
	return *c.MaxCoastingDwells
}
func (c *DeletionConfig) GetMinQuality() float64 {
	if c == nil || c.MinQuality == nil {
		return 0.05
	}
	return *c.MinQuality
}
func (c *DeletionConfig) GetMaxRange() float64 {
	if c == nil || c.MaxRange == nil {
		return 25000.0
	}
	return *c.MaxRange
}

type InitialCovarianceConfig struct {
	PositionStd     *float64 `json:"positionStd,omitempty"`
	VelocityStd     *float64 `json:"velocityStd,omitempty"`
	AccelerationStd *float64 `json:"accelerationStd,omitempty"`
}

func (c *InitialCovarianceConfig) GetPositionStd() float64 {
	if c == nil || c.PositionStd == nil {
		return 50.0
	}
	return *c.PositionStd
}
func (c *InitialCovarianceConfig) GetVelocityStd() float64 {
	if c == nil || c.VelocityStd == nil {
		return 20.0
	}
	return *c.VelocityStd
}
func (c *InitialCovarianceConfig) GetAccelerationStd() float64 {
	if c == nil || c.AccelerationStd == nil {
		return 5.0
	}
	return *c.AccelerationStd
}

type TrackManagementConfig struct {
	Initiation        *InitiationConfig        `json:"initiation,omitempty"`
	Maintenance       *MaintenanceConfig       `json:"maintenance,omitempty"`
	Deletion          *DeletionConfig          `json:"deletion,omitempty"`
	InitialCovariance *InitialCovarianceConfig `json:"initialCovariance,omitempty"`
}

func (c *TrackManagementConfig) GetInitiation() *InitiationConfig {
	if c == nil {
		return nil
	}
	return c.Initiation
}
func (c *TrackManagementConfig) GetMaintenance() *MaintenanceConfig {
	if c == nil {
		return nil
	}
	return c.Maintenance
}
func (c *TrackManagementConfig) GetDeletion() *DeletionConfig {
	if c == nil {
		return nil
	}
	return c.Deletion
}
func (c *TrackManagementConfig) GetInitialCovariance() *InitialCovarianceConfig {
	if c == nil {
		return nil
	}
	return c.InitialCovariance
}

type DisplayConfig struct {
	UpdateRateMs      *int  `json:"updateRateMs,omitempty"`
	SendDeletedTracks *bool `json:"sendDeletedTracks,omitempty"`
}

func (c *DisplayConfig) GetUpdateRateMs() int {
	if c == nil || c.UpdateRateMs == nil {
		return 200
	}
	return *c.UpdateRateMs
}
func (c *DisplayConfig) GetSendDeletedTracks() bool {
	if c == nil || c.SendDeletedTracks == nil {
		return true
	}
	return *c.SendDeletedTracks
}

// TrackerConfig is the root configuration tree for the tracker process.
type TrackerConfig struct {
	System          *SystemConfig          `json:"system,omitempty"`
	Network         *NetworkConfig         `json:"network,omitempty"`
	Preprocessing   *PreprocessConfig      `json:"preprocessing,omitempty"`
	Clustering      *ClusterConfig         `json:"clustering,omitempty"`
	Prediction      *PredictionConfig      `json:"prediction,omitempty"`
	Association     *AssociationConfig     `json:"association,omitempty"`
	TrackManagement *TrackManagementConfig `json:"trackManagement,omitempty"`
	Display         *DisplayConfig         `json:"display,omitempty"`
}

// EmptyConfig returns a config tree with every pointer nil; every Get*
// accessor still returns its documented default.
func EmptyConfig() *TrackerConfig {
	return &TrackerConfig{}
}

// LoadConfig reads, parses, applies environment overrides, and validates a
// tracker configuration file.
func LoadConfig(path string) (*TrackerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets a small set of container-deployment knobs be set
// without editing the JSON file on disk.
func applyEnvOverrides(cfg *TrackerConfig) {
	if v, ok := os.LookupEnv("TRACKER_CYCLE_PERIOD_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if cfg.System == nil {
				cfg.System = &SystemConfig{}
			}
			cfg.System.CyclePeriodMs = ptrI(n)
		}
	}
	if v, ok := os.LookupEnv("TRACKER_LOG_DIRECTORY"); ok && v != "" {
		if cfg.System == nil {
			cfg.System = &SystemConfig{}
		}
		cfg.System.LogDirectory = ptrS(v)
	}
	if v, ok := os.LookupEnv("TRACKER_RECEIVER_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if cfg.Network == nil {
				cfg.Network = &NetworkConfig{}
			}
			cfg.Network.ReceiverPort = ptrI(n)
		}
	}
}

// Validate checks these explicitly set leaves: cyclePeriodMs > 0, the
// initial mode-probability vector (length 5, non-negative entries, sum 1),
// jpda.detectionProbability in [0,1], gatingThreshold > 0, and initiation
// m <= n. No other leaf is range-checked.
func (c *TrackerConfig) Validate() error {
	if c.System != nil && c.System.CyclePeriodMs != nil && *c.System.CyclePeriodMs <= 0 {
		return fmt.Errorf("system.cyclePeriodMs must be positive, got %d", *c.System.CyclePeriodMs)
	}
	if c.Prediction != nil && c.Prediction.IMM != nil && len(c.Prediction.IMM.InitialModeProbabilities) != 0 {
		if len(c.Prediction.IMM.InitialModeProbabilities) != numModels {
			return fmt.Errorf("prediction.imm.initialModeProbabilities must have length %d, got %d",
				numModels, len(c.Prediction.IMM.InitialModeProbabilities))
		}
		sum := 0.0
		for _, p := range c.Prediction.IMM.InitialModeProbabilities {
			if p < 0 {
				return fmt.Errorf("prediction.imm.initialModeProbabilities entries must be non-negative")
			}
			sum += p
		}
		if sum < 1-1e-6 || sum > 1+1e-6 {
			return fmt.Errorf("prediction.imm.initialModeProbabilities must sum to 1, got %f", sum)
		}
	}
	if c.Association != nil {
		if c.Association.JPDA != nil && c.Association.JPDA.DetectionProbability != nil {
			p := *c.Association.JPDA.DetectionProbability
			if p < 0 || p > 1 {
				return fmt.Errorf("association.jpda.detectionProbability must be in [0,1], got %f", p)
			}
		}
		if c.Association.GatingThreshold != nil && *c.Association.GatingThreshold <= 0 {
			return fmt.Errorf("association.gatingThreshold must be positive")
		}
	}
	if c.TrackManagement != nil && c.TrackManagement.Initiation != nil {
		init := c.TrackManagement.Initiation
		if init.M != nil && init.N != nil && *init.M > *init.N {
			return fmt.Errorf("trackManagement.initiation.m must be <= n")
		}
	}
	return nil
}
