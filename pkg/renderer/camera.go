package renderer

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// View is a camera given as a view pyramid: the eye position and three
// corners of the screen plane (top-left, top-right, bottom-left)
type View struct {
	Pos core.Vec3
	P1  core.Vec3
	P2  core.Vec3
	P3  core.Vec3
}

// NewView builds the view pyramid for a camera config at a given resolution.
// The screen sits one unit in front of the eye.
func NewView(cam scene.CameraConfig, width, height int) View {
	aspect := cam.AspectRatio
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}
	if aspect <= 0 {
		aspect = 1
	}
	vfov := cam.VFov
	if vfov <= 0 || vfov >= 180 {
		vfov = 60
	}

	halfHeight := math.Tan(vfov * math.Pi / 360)
	halfWidth := aspect * halfHeight

	w := cam.Center.Subtract(cam.LookAt).Normalize()
	u := cam.Up.Cross(w).Normalize()
	v := w.Cross(u)

	center := cam.Center.Subtract(w)
	right := u.Multiply(halfWidth)
	up := v.Multiply(halfHeight)

	return View{
		Pos: cam.Center,
		P1:  center.Subtract(right).Add(up),
		P2:  center.Add(right).Add(up),
		P3:  center.Subtract(right).Subtract(up),
	}
}

// Ray returns the primary ray through pixel (x, y). Pixel (0, 0) looks at
// P1 and pixel (width-1, height-1) at the bottom-right corner.
func (v View) Ray(x, y, width, height int) core.Ray {
	s := step(x, width)
	t := step(y, height)

	point := v.P1.
		Add(v.P2.Subtract(v.P1).Multiply(s)).
		Add(v.P3.Subtract(v.P1).Multiply(t))
	return core.NewRay(v.Pos, point.Subtract(v.Pos).Normalize())
}

func step(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
