package shapeview

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/image/math/f64"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want f64.Mat4) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
			return
		}
	}
}

// --- Ortho ---

func TestOrthoMapsCornersToClipSpace(t *testing.T) {
	m := Ortho(0, 800, 600, 0, cameraNear, cameraFar)

	c := transformVec4(m, f64.Vec4{0, 0, 0, 1})
	assertNear(t, "top-left x", c[0], -1)
	assertNear(t, "top-left y", c[1], 1)

	c = transformVec4(m, f64.Vec4{800, 600, 0, 1})
	assertNear(t, "bottom-right x", c[0], 1)
	assertNear(t, "bottom-right y", c[1], -1)

	c = transformVec4(m, f64.Vec4{400, 300, 0, 1})
	assertNear(t, "center x", c[0], 0)
	assertNear(t, "center y", c[1], 0)
}

func TestOrthoDepth(t *testing.T) {
	m := Ortho(0, 1, 1, 0, cameraNear, cameraFar)
	for _, z := range []float64{-1, 0, 0.5} {
		c := transformVec4(m, f64.Vec4{0, 0, z, 1})
		assertNear(t, "z'", c[2], z+1)
	}
}

func TestOrthoDegenerateIsIdentity(t *testing.T) {
	assertMatrix(t, "zero width", Ortho(5, 5, 0, 10, 2, 0), identityMat4)
	assertMatrix(t, "zero height", Ortho(0, 10, 3, 3, 2, 0), identityMat4)
	assertMatrix(t, "zero depth", Ortho(0, 10, 0, 10, 1, 1), identityMat4)
}

func TestOrthoCheckedRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		edges [6]float64
	}{
		{"zero width", [6]float64{5, 5, 0, 10, 2, 0}},
		{"zero height", [6]float64{0, 10, 3, 3, 2, 0}},
		{"zero depth", [6]float64{0, 10, 0, 10, 1, 1}},
		{"NaN edge", [6]float64{math.NaN(), 10, 0, 10, 2, 0}},
		{"infinite edge", [6]float64{0, math.Inf(1), 0, 10, 2, 0}},
	}
	for _, tt := range tests {
		e := tt.edges
		if _, ok := orthoChecked(e[0], e[1], e[2], e[3], e[4], e[5]); ok {
			t.Errorf("%s: orthoChecked reported ok", tt.name)
		}
	}
	m, ok := orthoChecked(0, 800, 600, 0, cameraNear, cameraFar)
	if !ok {
		t.Fatal("orthoChecked rejected a valid box")
	}
	assertMatrix(t, "valid box", m, Ortho(0, 800, 600, 0, cameraNear, cameraFar))
}

// --- Invert ---

func TestInvertIdentity(t *testing.T) {
	inv, ok := Invert(identityMat4)
	if !ok {
		t.Fatal("identity reported singular")
	}
	assertMatrix(t, "inverse", inv, identityMat4)
}

func TestInvertGeneral(t *testing.T) {
	m := f64.Mat4{
		2, 0, 1, 3,
		1, 3, 0, -2,
		0, 1, 4, 1,
		1, 0, 0, 2,
	}
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("matrix reported singular")
	}
	assertMatrix(t, "m * inv", multiplyMat4(m, inv), identityMat4)
	assertMatrix(t, "inv * m", multiplyMat4(inv, m), identityMat4)
}

func TestInvertOrtho(t *testing.T) {
	m := Ortho(-120, 340, 75, -20, cameraNear, cameraFar)
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("ortho reported singular")
	}
	assertMatrix(t, "m * inv", multiplyMat4(m, inv), identityMat4)
}

func TestInvertSingular(t *testing.T) {
	m := f64.Mat4{
		1, 2, 3, 4,
		2, 4, 6, 8,
		0, 1, 0, 1,
		1, 0, 1, 0,
	}
	inv, ok := Invert(m)
	if ok {
		t.Fatal("singular matrix reported invertible")
	}
	assertMatrix(t, "fallback", inv, identityMat4)
}

// --- Unproject / Project ---

func TestUnprojectViewportCenter(t *testing.T) {
	proj := Ortho(0, 800, 600, 0, cameraNear, cameraFar)
	wx, wy, err := Unproject(400, 300, proj, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "wx", wx, 400)
	assertNear(t, "wy", wy, 300)
}

func TestUnprojectCorners(t *testing.T) {
	proj := Ortho(-50, 150, 80, -20, cameraNear, cameraFar)
	wx, wy, _ := Unproject(0, 0, proj, 400, 200)
	assertNear(t, "top-left x", wx, -50)
	assertNear(t, "top-left y", wy, -20)

	wx, wy, _ = Unproject(400, 200, proj, 400, 200)
	assertNear(t, "bottom-right x", wx, 150)
	assertNear(t, "bottom-right y", wy, 80)
}

func TestUnprojectErrors(t *testing.T) {
	proj := Ortho(0, 800, 600, 0, cameraNear, cameraFar)
	if _, _, err := Unproject(1, 1, proj, 0, 600); !errors.Is(err, ErrDegenerateViewport) {
		t.Errorf("zero width: err = %v, want ErrDegenerateViewport", err)
	}
	if _, _, err := Unproject(1, 1, proj, 800, -1); !errors.Is(err, ErrDegenerateViewport) {
		t.Errorf("negative height: err = %v, want ErrDegenerateViewport", err)
	}
	if _, _, err := Unproject(1, 1, f64.Mat4{}, 800, 600); !errors.Is(err, ErrSingularProjection) {
		t.Errorf("zero matrix: err = %v, want ErrSingularProjection", err)
	}
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	proj := Ortho(-300, 900, 450, -150, cameraNear, cameraFar)
	points := [][2]float64{{0, 0}, {-300, -150}, {123.5, 77.25}, {899, 449}}
	for _, p := range points {
		sx, sy := Project(p[0], p[1], proj, 1024, 768)
		wx, wy, err := Unproject(sx, sy, proj, 1024, 768)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(wx-p[0]) > 1e-6 || math.Abs(wy-p[1]) > 1e-6 {
			t.Errorf("round trip %v = (%v, %v)", p, wx, wy)
		}
	}
}

// --- columnMajor32 ---

func TestColumnMajor32(t *testing.T) {
	m := Ortho(0, 800, 600, 0, cameraNear, cameraFar)
	cm := columnMajor32(m)
	// Translation sits in the last column, which is the last four floats.
	if cm[12] != float32(m[3]) || cm[13] != float32(m[7]) || cm[14] != float32(m[11]) || cm[15] != 1 {
		t.Errorf("translation column = %v", cm[12:])
	}
	if cm[0] != float32(m[0]) || cm[5] != float32(m[5]) {
		t.Errorf("diagonal = %v, %v", cm[0], cm[5])
	}
	if cm[3] != 0 || cm[7] != 0 {
		t.Errorf("bottom row leaked into columns: %v", cm)
	}
}
