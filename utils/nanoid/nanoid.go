package nanoid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	defaultSize = 16

	lowercase  = "abcdefghijklmnopqrstuvwxyz"
	uppercase  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	number     = "0123456789"
	lowerUpper = lowercase + uppercase
	alphanum   = lowercase + uppercase + number
)

// getSize returns the provided size or the default size if not provided
func getSize(l ...int) int {
	if len(l) > 0 {
		return l[0]
	}
	return defaultSize
}

// Must generates a NanoID with optional length using default alphabet
func Must(l ...int) string {
	return gonanoid.Must(getSize(l...))
}

// String generates a NanoID using only letters with optional length
func String(l ...int) string {
	return gonanoid.MustGenerate(lowerUpper, getSize(l...))
}

// Lower generates a NanoID using only lowercase letters with optional length
func Lower(l ...int) string {
	return gonanoid.MustGenerate(lowercase, getSize(l...))
}

// Upper generates a NanoID using only uppercase letters with optional length
func Upper(l ...int) string {
	return gonanoid.MustGenerate(uppercase, getSize(l...))
}

// Number generates a NanoID using only numbers with optional length
func Number(l ...int) string {
	return gonanoid.MustGenerate(number, getSize(l...))
}

// Alphanum generates a NanoID using letters and numbers with optional length
func Alphanum(l ...int) string {
	return gonanoid.MustGenerate(alphanum, getSize(l...))
}
