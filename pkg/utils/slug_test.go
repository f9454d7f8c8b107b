package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Loja da Conceição!", "loja-da-conceicao"},
		{"  Promoções  de   Verão 2026 ", "promocoes-de-verao-2026"},
		{"Café & Pão", "cafe-pao"},
		{"---", ""},
		{"ÀÉÎÕÜ", "aeiou"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 60))
	assert.LessOrEqual(t, len(got), maxSlugLen)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"loja": true, "loja-2": true}

	got, err := UniqueSlug("loja", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "loja-3", got)

	got, err = UniqueSlug("", func(s string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "pagina", got)

	_, err = UniqueSlug("x", func(string) (bool, error) { return false, errors.New("db down") })
	assert.Error(t, err)
}
