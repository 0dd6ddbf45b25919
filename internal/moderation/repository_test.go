package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"":               "%%",
		" Brahmanbaria ": "%Brahmanbaria%",
		"50%_off":        `%50\%\_off%`,
		`a\b`:            `%a\\b%`,
		"বাঞ্ছারামপুর":   "%বাঞ্ছারামপুর%",
	}
	for in, want := range cases {
		assert.Equal(t, want, containsPattern(in), in)
	}
}
