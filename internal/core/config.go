package core

// RuntimeConfig contains configuration passed to a play session at initialization.
type RuntimeConfig struct {
	ScreenW int // Screen width in characters
	ScreenH int // Screen height in characters
	RoomW   int // Room width in tiles, excluding the shared border
	RoomH   int // Room height in tiles, excluding the shared border
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		RoomW:   10,
		RoomH:   10,
	}
}

// RoomSize returns the configured room size as a Point.
func (c RuntimeConfig) RoomSize() Point {
	return Pt(c.RoomW, c.RoomH)
}
