package grpcapi

// StreamTracksRequest configures a StreamTracks call. An empty StatusFilter
// streams every status; otherwise only tracks whose Status is in the set are
// sent.
type StreamTracksRequest struct {
	StatusFilter []uint32 `json:"status_filter,omitempty"`
}

// TrackMessage is the wire shape of one track sent to a streaming client,
// mirroring wire.TrackUpdate's fields.
type TrackMessage struct {
	TrackID        uint32  `json:"track_id"`
	TimestampUs    uint64  `json:"timestamp_us"`
	Status         uint32  `json:"status"`
	Classification uint32  `json:"classification"`
	Range          float64 `json:"range_m"`
	Azimuth        float64 `json:"azimuth_rad"`
	Elevation      float64 `json:"elevation_rad"`
	RangeRate      float64 `json:"range_rate_mps"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Z              float64 `json:"z"`
	Vx             float64 `json:"vx"`
	Vy             float64 `json:"vy"`
	Vz             float64 `json:"vz"`
	Quality        float64 `json:"quality"`
	HitCount       uint32  `json:"hit_count"`
	MissCount      uint32  `json:"miss_count"`
	Age            uint32  `json:"age"`
}

// TrackTableMessage is one dwell cycle's worth of live tracks.
type TrackTableMessage struct {
	TimestampUs uint64         `json:"timestamp_us"`
	Tracks      []TrackMessage `json:"tracks"`
}
