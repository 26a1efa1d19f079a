package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quemtemboca/marketplace-api/internal/handler"
)

func TestAdminInput(t *testing.T) {
	in, err := adminInput("root@x.com", "root", "Secret123!")
	require.NoError(t, err)
	assert.True(t, in.IsAdmin)
	assert.Equal(t, "root@x.com", in.Email)
	assert.Equal(t, "root", in.Username)
}

func TestAdminInput_Rejects(t *testing.T) {
	cases := map[string][3]string{
		"weak password":  {"root@x.com", "root", "a"},
		"bad email":      {"root", "root", "Secret123!"},
		"short username": {"root@x.com", "r", "Secret123!"},
		"too long":       {"root@x.com", "root", "Aa1!" + strings.Repeat("x", 76)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := adminInput(c[0], c[1], c[2])
			var ve *handler.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Len(t, ve.Messages, 1)
		})
	}
}
