package shortener

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"hashurl/internal/domain"
)

// CodeLength is the fixed length of every generated code.
// 8 URL-safe base64 characters carry 48 bits of the digest.
const CodeLength = 8

// saltMarker is appended to the input once per resolver step.
const saltMarker = "#"

// ErrMissingConflictingCode is returned when collision resolution is
// requested without the code that collided.
var ErrMissingConflictingCode = fmt.Errorf("%w: collision resolution requires a conflicting code", domain.ErrInvalidInput)

// Generate derives the code for a URL: SHA-256 of its UTF-8 bytes,
// URL-safe base64 encoded, truncated to CodeLength characters.
func Generate(url string) string {
	sum := sha256.Sum256([]byte(url))
	return base64.URLEncoding.EncodeToString(sum[:])[:CodeLength]
}

// ResolveCollision derives the next candidate code for url after
// conflictingCode was rejected by the store.
func ResolveCollision(url, conflictingCode string) (string, error) {
	next, err := defaultGenerator.Next(Candidate{Input: url, Code: conflictingCode})
	if err != nil {
		return "", err
	}
	return next.Code, nil
}

// IsValid reports whether code has the shape Generate produces.
func IsValid(code string) bool {
	if len(code) != CodeLength {
		return false
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}

	return true
}

// Candidate is a code proposed for insertion together with the (possibly
// perturbed) input it was derived from.
type Candidate struct {
	Input string
	Code  string
}

// CodeGenerator produces candidates deterministically. The zero value is not
// usable; construct it with NewCodeGenerator.
type CodeGenerator struct {
	hash func(string) string
}

var defaultGenerator = NewCodeGenerator(Generate)

// NewCodeGenerator returns a generator using hash to map inputs to codes.
// Passing nil selects Generate.
func NewCodeGenerator(hash func(string) string) *CodeGenerator {
	if hash == nil {
		hash = Generate
	}
	return &CodeGenerator{hash: hash}
}

// Candidate returns the first candidate for url.
func (g *CodeGenerator) Candidate(url string) Candidate {
	return Candidate{Input: url, Code: g.hash(url)}
}

// Next perturbs prev.Input with the salt marker until the hash differs from
// prev.Code. The returned candidate carries the perturbed input, so chaining
// Next across repeated conflicts keeps growing it.
//
// Only the immediately preceding code is avoided; a hash that cycles back
// to it forever never terminates.
func (g *CodeGenerator) Next(prev Candidate) (Candidate, error) {
	if prev.Code == "" {
		return Candidate{}, ErrMissingConflictingCode
	}

	input := prev.Input
	for {
		input += saltMarker
		code := g.hash(input)
		if code != prev.Code {
			return Candidate{Input: input, Code: code}, nil
		}
	}
}
