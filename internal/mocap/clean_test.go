package mocap

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanCapture_SelectsNumericColumnsAndMapsInvalids(t *testing.T) {
	// Two metadata columns, then a text column (dropped), then six
	// coordinate columns. The second row is ragged and the invalid magic
	// value must map to the 0 sentinel.
	raw := strings.Join([]string{
		"ts,tool,status,x,y,z,x,y,z",
		"0.0,A,ok,1.5,2.5,3.5,4.5,5.5,6.5",
		"0.1,A,ok,1.6,2.6,3.6,-3.697314E28,-3.697314E28,-3.697314E28",
		"0.2,A,ok,1.7,2.7,3.7",
	}, "\n")

	frames, err := CleanCapture(strings.NewReader(raw), CleanConfig{MetadataColumns: 3})
	if err != nil {
		t.Fatalf("CleanCapture: %v", err)
	}

	want := []RawFrame{
		{{X: 1.5, Y: 2.5, Z: 3.5}, {X: 4.5, Y: 5.5, Z: 6.5}},
		{{X: 1.6, Y: 2.6, Z: 3.6}, {}},
		{{X: 1.7, Y: 2.7, Z: 3.7}, {}},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanCapture_DropsNonNumericColumns(t *testing.T) {
	raw := strings.Join([]string{
		"a,b,x,y,z,flag",
		"0,0,1,2,3,bad",
		"0,0,4,5,6,bad",
	}, "\n")

	frames, err := CleanCapture(strings.NewReader(raw), CleanConfig{MetadataColumns: 2})
	if err != nil {
		t.Fatalf("CleanCapture: %v", err)
	}

	// The trailing text column is rejected, leaving one complete triple.
	want := []RawFrame{
		{{X: 1, Y: 2, Z: 3}},
		{{X: 4, Y: 5, Z: 6}},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanCapture_DiscardsPartialTrailingTriple(t *testing.T) {
	raw := strings.Join([]string{
		"x,y,z,x,y",
		"1,2,3,4,5",
		"6,7,8,9,10",
	}, "\n")

	frames, err := CleanCapture(strings.NewReader(raw), CleanConfig{MetadataColumns: 0})
	if err != nil {
		t.Fatalf("CleanCapture: %v", err)
	}
	for i, frame := range frames {
		if len(frame) != 1 {
			t.Errorf("frame %d has %d points, want 1 (partial triple discarded)", i, len(frame))
		}
	}
}

func TestCleanCapture_Errors(t *testing.T) {
	if _, err := CleanCapture(strings.NewReader("only,one,row"), DefaultCleanConfig()); err == nil {
		t.Error("expected error for missing data rows")
	}

	narrow := "a,b\n1,2\n"
	if _, err := CleanCapture(strings.NewReader(narrow), DefaultCleanConfig()); err == nil {
		t.Error("expected error when metadata columns consume the capture")
	}

	textOnly := "x,y,z\nfoo,bar,baz\n"
	if _, err := CleanCapture(strings.NewReader(textOnly), CleanConfig{MetadataColumns: 0}); err == nil {
		t.Error("expected error when no numeric columns remain")
	}
}
