package finder

import (
	"testing"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordPtr(lat, lon float64) *geo.Coordinate {
	c := geo.NewCoordinate(lat, lon)
	return &c
}

func TestInterpolate(t *testing.T) {
	testCases := []struct {
		name             string
		in               []*geo.Coordinate
		want             []*geo.Coordinate
		wantInterpolated []bool
	}{
		{
			name:             "one missing",
			in:               []*geo.Coordinate{coordPtr(0, 0), nil, coordPtr(10, 0)},
			want:             []*geo.Coordinate{coordPtr(0, 0), coordPtr(5, 0), coordPtr(10, 0)},
			wantInterpolated: []bool{false, true, false},
		},
		{
			name:             "two missing",
			in:               []*geo.Coordinate{coordPtr(0, 0), nil, nil, coordPtr(10, 0)},
			want:             []*geo.Coordinate{coordPtr(0, 0), coordPtr(3.33333, 0), coordPtr(6.66667, 0), coordPtr(10, 0)},
			wantInterpolated: []bool{false, true, true, false},
		},
		{
			name:             "leading and trailing runs stay unresolved",
			in:               []*geo.Coordinate{nil, coordPtr(48, 11), nil, coordPtr(48.002, 11.002), nil},
			want:             []*geo.Coordinate{nil, coordPtr(48, 11), coordPtr(48.001, 11.001), coordPtr(48.002, 11.002), nil},
			wantInterpolated: []bool{false, false, true, false, false},
		},
		{
			name:             "nothing resolved",
			in:               []*geo.Coordinate{nil, nil},
			want:             []*geo.Coordinate{nil, nil},
			wantInterpolated: []bool{false, false},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, interpolated := Interpolate(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				if tt.want[i] == nil {
					assert.Nil(t, got[i], "index %d", i)
					continue
				}
				require.NotNil(t, got[i], "index %d", i)
				assert.InDelta(t, tt.want[i].Lat, got[i].Lat, 1e-5)
				assert.InDelta(t, tt.want[i].Lon, got[i].Lon, 1e-5)
			}
			assert.Equal(t, tt.wantInterpolated, interpolated)
		})
	}
}

func TestInterpolateDoesNotModifyInput(t *testing.T) {
	in := []*geo.Coordinate{coordPtr(0, 0), nil, coordPtr(10, 0)}
	Interpolate(in)
	assert.Nil(t, in[1])
}
