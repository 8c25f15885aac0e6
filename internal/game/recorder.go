package game

// Round is one completed guess, persisted for later review.
type Round struct {
	SessionID string
	Round     int
	Industry  string
	Guess     Coordinates
	Actual    Coordinates
	Distance  float64
}

// Recorder persists completed rounds. The server records after every
// scored guess; recording failures are logged, never surfaced to the
// player.
type Recorder interface {
	RecordRound(round *Round) error
	Close() error
}

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRound(_ *Round) error { return nil }
func (n *NoopRecorder) Close() error               { return nil }
