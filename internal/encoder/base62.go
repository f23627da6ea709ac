// Package encoder convertit les identifiants numériques en codes courts base62
// et génère des codes aléatoires sur le même alphabet.
package encoder

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/jxskiss/base62"
)

// Alphabet est l'alphabet base62 : chiffres, puis majuscules, puis minuscules.
// L'ordre détermine la chaîne produite pour un entier donné.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidEncoding est retournée par Decode quand la chaîne contient un
// caractère hors de l'alphabet (ou est vide).
var ErrInvalidEncoding = errors.New("encodage base62 invalide")

var (
	encoding    = base62.NewEncoding(Alphabet)
	alphabetLen = big.NewInt(int64(len(Alphabet)))
	// maxEncoded est l'encodage de math.MaxUint64. L'alphabet suit l'ordre ASCII,
	// donc une comparaison de chaînes de même longueur suffit à détecter un dépassement.
	maxEncoded = Encode(math.MaxUint64)
)

// Encode convertit n en base62. Encode(0) == "0".
func Encode(n uint64) string {
	return string(encoding.FormatUint(n))
}

// Decode est l'inverse de Encode.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: chaîne vide", ErrInvalidEncoding)
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return 0, fmt.Errorf("%w: caractère %q", ErrInvalidEncoding, r)
		}
	}
	trimmed := strings.TrimLeft(s, Alphabet[:1])
	if len(trimmed) > len(maxEncoded) || (len(trimmed) == len(maxEncoded) && trimmed > maxEncoded) {
		return 0, fmt.Errorf("%w: %q dépasse la capacité d'un uint64", ErrInvalidEncoding, s)
	}
	n, err := encoding.ParseUint([]byte(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return n, nil
}

// RandomCode génère un code de length symboles tirés uniformément dans l'alphabet.
// Il utilise le package 'crypto/rand' pour éviter la prévisibilité.
func RandomCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("longueur de code invalide: %d", length)
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("error generating random number: %w", err)
		}
		sb.WriteByte(Alphabet[randomIndex.Int64()])
	}
	return sb.String(), nil
}
