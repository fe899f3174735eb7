package rgpu

import (
	"os"

	"golang.org/x/exp/constraints"
)

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MaxOf returns the larger of a and b. Grounded on the generic numeric
// helpers engine/math/utils.go builds over golang.org/x/exp/constraints;
// exported so backend packages share it instead of re-deriving their own.
func MaxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
