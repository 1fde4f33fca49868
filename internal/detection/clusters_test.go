package detection

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// fillRect sets every mask pixel in [x1,x2]x[y1,y2] (inclusive).
func fillRect(m *imaging.Mask, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			m.Pix[y*m.Width+x] = true
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExtractClusters_EmptyMask(t *testing.T) {
	holes := ExtractClusters(imaging.NewMask(50, 50), 15, 5000)
	if holes == nil {
		t.Fatal("ExtractClusters should return a non-nil slice")
	}
	if len(holes) != 0 {
		t.Errorf("expected no clusters, got %d", len(holes))
	}
}

func TestExtractClusters_AreaAndCentroid(t *testing.T) {
	m := imaging.NewMask(100, 100)
	fillRect(m, 10, 10, 14, 14) // 25 px, centre (12,12)
	fillRect(m, 50, 60, 59, 63) // 40 px, centre (54.5,61.5)

	holes := ExtractClusters(m, 15, 5000)
	if len(holes) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(holes))
	}

	// largest first
	if holes[0].PixelCount != 40 || holes[1].PixelCount != 25 {
		t.Errorf("pixel counts: got %d,%d, want 40,25", holes[0].PixelCount, holes[1].PixelCount)
	}
	if !almostEqual(holes[0].Center.X, 54.5) || !almostEqual(holes[0].Center.Y, 61.5) {
		t.Errorf("centre of large cluster: got %+v, want (54.5,61.5)", holes[0].Center)
	}
	if !almostEqual(holes[1].Center.X, 12) || !almostEqual(holes[1].Center.Y, 12) {
		t.Errorf("centre of small cluster: got %+v, want (12,12)", holes[1].Center)
	}
}

func TestExtractClusters_AreaFilter(t *testing.T) {
	m := imaging.NewMask(200, 200)
	fillRect(m, 0, 0, 2, 3)     // 12 px: too small
	fillRect(m, 20, 20, 22, 24) // 15 px: exactly min
	fillRect(m, 40, 40, 139, 139)
	// 100x100 = 10000 px: too large

	holes := ExtractClusters(m, 15, 5000)
	if len(holes) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(holes))
	}
	if holes[0].PixelCount != 15 {
		t.Errorf("PixelCount: got %d, want 15", holes[0].PixelCount)
	}

	holes = ExtractClusters(m, 15, 10000)
	if len(holes) != 2 {
		t.Errorf("max area should be inclusive, got %d clusters", len(holes))
	}
}

func TestExtractClusters_DiagonalConnectivity(t *testing.T) {
	m := imaging.NewMask(20, 20)
	for i := 0; i < 16; i++ {
		m.Pix[(2+i)*m.Width+2+i] = true
	}

	holes := ExtractClusters(m, 15, 5000)
	if len(holes) != 1 {
		t.Fatalf("diagonal line should be one 8-connected cluster, got %d", len(holes))
	}
	if holes[0].PixelCount != 16 {
		t.Errorf("PixelCount: got %d, want 16", holes[0].PixelCount)
	}
}

func TestExtractClusters_StableTies(t *testing.T) {
	m := imaging.NewMask(100, 100)
	fillRect(m, 70, 10, 73, 13) // first in raster order
	fillRect(m, 10, 50, 13, 53)
	fillRect(m, 40, 80, 43, 83)

	holes := ExtractClusters(m, 15, 5000)
	if len(holes) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(holes))
	}
	wantY := []float64{11.5, 51.5, 81.5}
	for i, h := range holes {
		if !almostEqual(h.Center.Y, wantY[i]) {
			t.Errorf("hole %d: got Y=%v, want %v (label order)", i, h.Center.Y, wantY[i])
		}
	}
}

func TestExtractClusters_Origin(t *testing.T) {
	m := imaging.NewMask(30, 30)
	m.Origin = image.Point{X: 100, Y: 200}
	fillRect(m, 0, 0, 4, 4)

	holes := ExtractClusters(m, 15, 5000)
	if len(holes) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(holes))
	}
	if !almostEqual(holes[0].Center.X, 102) || !almostEqual(holes[0].Center.Y, 202) {
		t.Errorf("centre should include origin, got %+v", holes[0].Center)
	}
}

func TestExtractClusters_LargeRegion(t *testing.T) {
	m := imaging.NewMask(400, 400)
	fillRect(m, 0, 0, 399, 399)

	// Should not overflow the stack
	holes := ExtractClusters(m, 1, 400*400)
	if len(holes) != 1 || holes[0].PixelCount != 160000 {
		t.Fatalf("expected one 160000 px cluster, got %+v", holes)
	}
}
