package generation

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxSourceRunes caps how much source material is sent to the model.
	MaxSourceRunes int
}

// DefaultConfig returns sensible defaults for generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      8192,
		Temperature:    0.4,
		MaxSourceRunes: 20000,
	}
}
