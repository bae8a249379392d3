package analyzer

import (
	"image"
	"image/color"
)

// region is one connected component of a mask.
type region struct {
	rect image.Rectangle
	area int
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// erode shrinks white regions, cutting thin bridges between windows.
func erode(img *image.Gray, kernelSize int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	half := kernelSize / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			minVal := uint8(255)
			for ky := -half; ky <= half && minVal > 0; ky++ {
				for kx := -half; kx <= half; kx++ {
					p := image.Pt(x+kx, y+ky)
					if !p.In(bounds) {
						continue
					}
					if v := img.GrayAt(p.X, p.Y).Y; v < minVal {
						minVal = v
					}
				}
			}
			result.SetGray(x, y, color.Gray{Y: minVal})
		}
	}

	return result
}

// findRegions finds connected white regions of the mask. Regions touching
// the image border are dropped when ignoreBorder is set: those are margins
// around the frame, not windows in it.
func findRegions(mask *image.Gray, ignoreBorder bool) []region {
	bounds := mask.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	regions := []region{}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y > 128 && !visited[y-bounds.Min.Y][x-bounds.Min.X] {
				r := floodFill(mask, visited, x, y)
				if ignoreBorder && touchesBorder(r.rect, bounds) {
					continue
				}
				regions = append(regions, r)
			}
		}
	}

	return regions
}

func touchesBorder(r, bounds image.Rectangle) bool {
	return r.Min.X == bounds.Min.X || r.Min.Y == bounds.Min.Y || r.Max.X == bounds.Max.X || r.Max.Y == bounds.Max.Y
}

// floodFill marks one component and returns its bounds and pixel count
func floodFill(mask *image.Gray, visited [][]bool, startX, startY int) region {
	bounds := mask.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	area := 0

	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y

		if !p.In(bounds) {
			continue
		}

		if visited[y-bounds.Min.Y][x-bounds.Min.X] || mask.GrayAt(x, y).Y <= 128 {
			continue
		}

		visited[y-bounds.Min.Y][x-bounds.Min.X] = true
		area++

		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)

		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	return region{rect: image.Rect(minX, minY, maxX+1, maxY+1), area: area}
}

// windows converts regions to windows, keeping those of at least minArea.
func windows(regions []region, minArea int, kind string) []Window {
	out := []Window{}
	for _, r := range regions {
		if r.area < minArea {
			continue
		}
		out = append(out, Window{
			Rect:     r.rect,
			Area:     r.area,
			Coverage: float64(r.area) / float64(r.rect.Dx()*r.rect.Dy()),
			Kind:     kind,
		})
	}
	return out
}
