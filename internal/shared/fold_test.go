package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crítica", "critica"},
		{"  SEPTIEMBRE ", "septiembre"},
		{"Año", "ano"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("creada", "Creada"))
	assert.True(t, EqualFold("Actualizada", "ACTUALIZADA"))
	assert.False(t, EqualFold("Creada", "Actualizada"))
}
