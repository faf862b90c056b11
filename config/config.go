package config

import (
	"fmt"
)

const (
	MinParties   = 2
	MaxParties   = 256
	MinShareBits = 1
	MaxShareBits = 64

	DefaultDimension = 128
	DefaultParties   = 4
	DefaultPrepared  = 100
	// With 4 parties, 64 executed repetitions target a cheating
	// probability of about (1/4)^64 = 2^-128.
	DefaultExecuted  = 64
	DefaultShareBits = 64
)

// Config holds the protocol parameter set. It is immutable once a
// prover or verifier has been constructed from it.
type Config struct {
	// Dimension is the subset-sum dimension: the number of weights in
	// an instance and of selection bits in a witness.
	Dimension uint `mapstructure:"ssith-dimension"`

	// Parties is the number of virtual parties emulated per repetition.
	Parties uint `mapstructure:"ssith-parties"`

	// Prepared is the number of repetitions prepared during the commit
	// phase. The verifier audits the unexecuted ones in full.
	Prepared uint `mapstructure:"ssith-prepared"`

	// Executed is the number of prepared repetitions selected by the
	// first challenge for execution.
	Executed uint `mapstructure:"ssith-executed"`

	// ShareBits is the bit width of the additive mask shares. The
	// default of 64 uses full-width shares, which keeps the opened
	// broadcast values statistically independent of the witness.
	ShareBits uint `mapstructure:"ssith-sharebits"`
}

func DefaultConfig() Config {
	return Config{
		Dimension: DefaultDimension,
		Parties:   DefaultParties,
		Prepared:  DefaultPrepared,
		Executed:  DefaultExecuted,
		ShareBits: DefaultShareBits,
	}
}

func (cfg *Config) Validate() error {
	if cfg.Dimension < 1 {
		return fmt.Errorf("invalid `Dimension`; expected: >= 1, given: %d", cfg.Dimension)
	}

	if cfg.Parties < MinParties {
		return fmt.Errorf("invalid `Parties`; expected: >= %d, given: %d", MinParties, cfg.Parties)
	}

	if cfg.Parties > MaxParties {
		return fmt.Errorf("invalid `Parties`; expected: <= %d, given: %d", MaxParties, cfg.Parties)
	}

	if cfg.Executed < 1 {
		return fmt.Errorf("invalid `Executed`; expected: >= 1, given: %d", cfg.Executed)
	}

	if cfg.Executed > cfg.Prepared {
		return fmt.Errorf("invalid `Executed`; expected: <= `Prepared` (%d), given: %d", cfg.Prepared, cfg.Executed)
	}

	if cfg.ShareBits < MinShareBits || cfg.ShareBits > MaxShareBits {
		return fmt.Errorf("invalid `ShareBits`; expected: %d-%d, given: %d", MinShareBits, MaxShareBits, cfg.ShareBits)
	}

	return nil
}

// ShareMask returns the bit mask applied to raw PRG words when
// deriving mask shares.
func (cfg *Config) ShareMask() uint64 {
	if cfg.ShareBits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << cfg.ShareBits) - 1
}
