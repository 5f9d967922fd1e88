package palm

// numAnchors is the total SSD anchor count for the 192x192 palm model:
// a 24x24 grid with 2 anchors per cell (stride 8) plus a 12x12 grid with
// 6 anchors per cell (three stride-16 layers of 2 each).
const numAnchors = 24*24*2 + 12*12*6

// anchorPoint is an anchor center normalized to [0, 1].
type anchorPoint struct {
	X float32
	Y float32
}

// generateAnchors builds the anchor center grid the palm model's regressors
// are relative to. The model uses fixed-size anchors, so only the centers
// matter; they are scaled to the network input at decode time. Centers sit
// at cell midpoints (offset 0.5), row-major, with the per-cell anchors
// emitted consecutively.
func generateAnchors() []anchorPoint {
	anchors := make([]anchorPoint, 0, numAnchors)
	anchors = appendAnchorLayer(anchors, 24, 2)
	anchors = appendAnchorLayer(anchors, 12, 6)
	return anchors
}

func appendAnchorLayer(anchors []anchorPoint, grid, perCell int) []anchorPoint {
	for y := 0; y < grid; y++ {
		cy := (float32(y) + 0.5) / float32(grid)
		for x := 0; x < grid; x++ {
			cx := (float32(x) + 0.5) / float32(grid)
			for k := 0; k < perCell; k++ {
				anchors = append(anchors, anchorPoint{X: cx, Y: cy})
			}
		}
	}
	return anchors
}
