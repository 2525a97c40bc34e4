package notification

import (
	"testing"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "local format", input: "09171234567", want: "639171234567"},
		{name: "international with plus", input: "+639171234567", want: "639171234567"},
		{name: "international without plus", input: "639171234567", want: "639171234567"},
		{name: "bare subscriber number", input: "9171234567", want: "639171234567"},
		{name: "spaces and dashes", input: "0917-123 4567", want: "639171234567"},
		{name: "brackets", input: "(0917) 123-4567", want: "639171234567"},
		{name: "too short", input: "0917123", wantErr: true},
		{name: "landline", input: "0281234567", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "foreign country code", input: "+14155552671", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
