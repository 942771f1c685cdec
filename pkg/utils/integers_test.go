package utils

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonNegativeInteger(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{`12`, "12", nil},
		{`"12"`, "12", nil},
		{`0`, "0", nil},
		{`1.2e1`, "12", nil},
		{`"123456789012345678901234567890"`, "123456789012345678901234567890", nil},
		{`12.5`, "", ErrNotInteger},
		{`-1`, "", ErrNegative},
		{`1e64`, "1" + strings.Repeat("0", 64), nil},
		{`"12.000"`, "12", nil},
		{`"1e30000000"`, "", ErrOutOfRange},
		{`1e65`, "", ErrOutOfRange},
		{`"0e-2000000000"`, "", ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var d decimal.Decimal
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))

			got, err := NonNegativeInteger(d)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
