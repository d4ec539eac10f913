package quizgen

// Config controls the behavior of the Service.
type Config struct {
	// Validators run in order after a successful parse when Strict is set;
	// the first violation rejects the set.
	Validators []Validator

	// Strict enables the JSON Schema check and the validator chain. When
	// false any parseable object is passed through.
	Strict bool

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&CountValidator{},
			&ShapeValidator{},
			&DistinctOptionsValidator{},
		},
		Strict:      true,
		MaxTokens:   8000,
		Temperature: 0.5,
	}
}
