package flowfield

import (
	"image"
	"image/color"
	"math"
)

var (
	goalColor        = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	unreachableColor = color.RGBA{A: 255}
)

// HeatColor maps t in [0,1] from green (cheap) to red (expensive).
func HeatColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	r := uint8(math.Ceil(t * 255))
	return color.RGBA{R: r, G: 255 - r, B: 0, A: 255}
}

// CostImage renders one pixel per cell. Impassable cells are black and the
// goal is blue.
func CostImage(costs *CostField, goal Cell) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, costs.Width, costs.Height))
	var hi Cost
	for _, c := range costs.Costs {
		if c != CostImpassable && c > hi {
			hi = c
		}
	}
	for i, c := range costs.Costs {
		cell := costs.CellAt(i)
		switch {
		case cell == goal:
			img.SetRGBA(cell.X, cell.Y, goalColor)
		case c == CostImpassable:
			img.SetRGBA(cell.X, cell.Y, unreachableColor)
		case hi == 0:
			img.SetRGBA(cell.X, cell.Y, HeatColor(0))
		default:
			img.SetRGBA(cell.X, cell.Y, HeatColor(float64(c)/float64(hi)))
		}
	}
	return img
}

// IntegrationImage renders cost-to-goal normalised by the largest finite
// value.
func IntegrationImage(field *IntegrationField, goal Cell) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, field.Width, field.Height))
	hi := field.Max()
	for i, v := range field.Values {
		cell := field.CellAt(i)
		switch {
		case cell == goal:
			img.SetRGBA(cell.X, cell.Y, goalColor)
		case v == Unreached:
			img.SetRGBA(cell.X, cell.Y, unreachableColor)
		case hi == 0:
			img.SetRGBA(cell.X, cell.Y, HeatColor(0))
		default:
			img.SetRGBA(cell.X, cell.Y, HeatColor(float64(v)/float64(hi)))
		}
	}
	return img
}

// FlowImage encodes each direction's x and y in the red and green channels.
// Cells without a direction are black.
func FlowImage(flow *FlowField, goal Cell) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, flow.Width, flow.Height))
	for i, d := range flow.Directions {
		cell := flow.CellAt(i)
		switch {
		case cell == goal:
			img.SetRGBA(cell.X, cell.Y, goalColor)
		case d.IsZero():
			img.SetRGBA(cell.X, cell.Y, unreachableColor)
		default:
			x, y := d.Vector()
			img.SetRGBA(cell.X, cell.Y, color.RGBA{
				R: uint8(math.Round((x*0.5 + 0.5) * 255)),
				G: uint8(math.Round((y*0.5 + 0.5) * 255)),
				A: 255,
			})
		}
	}
	return img
}
