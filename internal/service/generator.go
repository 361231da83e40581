package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/passforge/passforge-go/internal/crypto"
	"github.com/passforge/passforge-go/internal/model"
)

var ErrLengthNotNumeric = errors.New("password length must be a whole number")

// GeneratorService handles password generation business logic.
type GeneratorService struct{}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService() *GeneratorService {
	return &GeneratorService{}
}

// Generate produces a password based on the given API request.
func (s *GeneratorService) Generate(req model.GenerateRequest) (model.GenerateResponse, error) {
	opts := crypto.GeneratorOptions{
		Length:  crypto.DefaultLength,
		Numbers: boolOrDefault(req.Numbers, true),
		Symbols: boolOrDefault(req.Symbols, true),
	}

	// Only a missing length falls back to the default; an explicit 0 is rejected.
	if req.Length != nil {
		opts.Length = *req.Length
	}

	return s.generate(opts)
}

// GenerateForm produces a password from raw HTML form input. Unchecked
// checkboxes are absent from the form, so numbers and symbols are plain bools.
func (s *GeneratorService) GenerateForm(lengthField string, numbers, symbols bool) (model.GenerateResponse, error) {
	lengthField = strings.TrimSpace(lengthField)
	length, err := strconv.Atoi(lengthField)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(lengthField, "-") {
				return model.GenerateResponse{}, crypto.ErrLengthTooShort
			}
			return model.GenerateResponse{}, crypto.ErrLengthTooLong
		}
		return model.GenerateResponse{}, ErrLengthNotNumeric
	}

	return s.generate(crypto.GeneratorOptions{
		Length:  length,
		Numbers: numbers,
		Symbols: symbols,
	})
}

func (s *GeneratorService) generate(opts crypto.GeneratorOptions) (model.GenerateResponse, error) {
	password, err := crypto.Generate(opts)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password: password,
		Length:   len(password),
	}, nil
}

// IsValidationError reports whether err was caused by bad generator input.
func IsValidationError(err error) bool {
	return errors.Is(err, crypto.ErrLengthTooShort) ||
		errors.Is(err, crypto.ErrLengthTooLong) ||
		errors.Is(err, ErrLengthNotNumeric)
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
