package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveChapterRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin int
		wantMax *int
		wantOK  bool
	}{
		{"exact count", "57", 57, intPtrOrNil(0, false), true},
		{"less than bucket", "Less than 100", 0, intPtrOrNil(100, true), true},
		{"more than bucket", "More than 100", 100, nil, true},
		{"zero", "0", 0, nil, true},
		{"garbage", "Ongoing-ish", 0, nil, false},
		{"empty", "", 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, ok := deriveChapterRange(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantMin, min)
			if tt.wantMax == nil {
				assert.Nil(t, max)
			} else {
				assert.NotNil(t, max)
				assert.Equal(t, *tt.wantMax, *max)
			}
		})
	}
}

func intPtrOrNil(v int, set bool) *int {
	if !set {
		return nil
	}
	return &v
}
