package main

import (
	"net/url"
	"testing"

	"github.com/perfsight/frametrace/internal/importer"
	"github.com/perfsight/frametrace/internal/testutil"
)

func TestQueryFilterFromRequest(t *testing.T) {
	frameNumber := uint32(7)

	tests := []struct {
		name    string
		params  url.Values
		want    importer.QueryFilter
		wantErr bool
	}{
		{
			name:   "empty",
			params: url.Values{},
			want:   importer.QueryFilter{},
		},
		{
			name: "track and layer",
			params: url.Values{
				"track":      []string{"APP_1"},
				"layer_name": []string{"SurfaceView"},
			},
			want: importer.QueryFilter{Track: "APP_1", LayerName: "SurfaceView"},
		},
		{
			name:   "frame number",
			params: url.Values{"frame_number": []string{"7"}},
			want:   importer.QueryFilter{FrameNumber: &frameNumber},
		},
		{
			name:   "buffer id shorthand",
			params: url.Values{"buffer_id": []string{"007"}},
			want:   importer.QueryFilter{Track: "Buffer: 7"},
		},
		{
			name: "explicit track wins over buffer id",
			params: url.Values{
				"track":     []string{"GPU_2"},
				"buffer_id": []string{"2"},
			},
			want: importer.QueryFilter{Track: "GPU_2"},
		},
		{
			name:    "bad frame number",
			params:  url.Values{"frame_number": []string{"many"}},
			wantErr: true,
		},
		{
			name:    "bad buffer id",
			params:  url.Values{"buffer_id": []string{"-1"}},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := queryFilterFromRequest(test.params)
			if test.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := testutil.Diff(got, test.want); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}
