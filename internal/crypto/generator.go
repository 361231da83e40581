package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
)

const (
	letterChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars = "0123456789"
	symbolChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	MinLength     = 1
	MaxLength     = 1024
	DefaultLength = 16
)

var (
	ErrLengthTooShort = errors.New("password length must be at least 1")
	ErrLengthTooLong  = errors.New("password length must be at most 1024")
)

// GeneratorOptions configures the password generator.
// Letters are always part of the pool.
type GeneratorOptions struct {
	Length  int
	Numbers bool
	Symbols bool
}

// DefaultOptions returns 16 characters drawn from letters, digits and symbols.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		Length:  DefaultLength,
		Numbers: true,
		Symbols: true,
	}
}

// Pool returns the character pool selected by opts.
func Pool(opts GeneratorOptions) string {
	var sb strings.Builder
	sb.WriteString(letterChars)
	if opts.Numbers {
		sb.WriteString(numberChars)
	}
	if opts.Symbols {
		sb.WriteString(symbolChars)
	}
	return sb.String()
}

// Generate creates a random password using crypto/rand.
func Generate(opts GeneratorOptions) (string, error) {
	return GenerateFrom(rand.Reader, opts)
}

// GenerateFrom creates a password whose characters are drawn independently and
// uniformly from the pool, reading randomness from r. Repeats are allowed and no
// character class is guaranteed to appear.
func GenerateFrom(r io.Reader, opts GeneratorOptions) (string, error) {
	if opts.Length < MinLength {
		return "", ErrLengthTooShort
	}
	if opts.Length > MaxLength {
		return "", ErrLengthTooLong
	}

	pool := Pool(opts)
	size := big.NewInt(int64(len(pool)))

	result := make([]byte, opts.Length)
	for i := range result {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", err
		}
		result[i] = pool[n.Int64()]
	}

	return string(result), nil
}
