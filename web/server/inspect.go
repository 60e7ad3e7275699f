package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/renderer"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// materialInfo describes a material entry
func materialInfo(m material.Material) map[string]interface{} {
	properties := map[string]interface{}{
		"color": vec(m.Color),
	}
	if m.HasTexture() {
		properties["texture"] = m.TextureID
	}
	if m.Kind == material.Glass {
		properties["ior"] = m.IOR
	}
	return properties
}

// geometryInfo describes the primitive behind a hit
func geometryInfo(s *scene.Scene, hit scene.Hit) (string, map[string]interface{}) {
	if hit.Sphere >= 0 {
		sphere := s.Spheres[hit.Sphere]
		return "sphere", map[string]interface{}{
			"index":  hit.Sphere,
			"center": vec(sphere.Center),
			"radius": sphere.Radius,
		}
	}

	tri := s.Meshes[hit.Mesh].BVH.Primitives[hit.Triangle]
	return "triangle", map[string]interface{}{
		"mesh":     hit.Mesh,
		"index":    hit.Triangle,
		"vertices": [3][3]float64{vec(tri.V0), vec(tri.V1), vec(tri.V2)},
	}
}

// inspectPixel casts the camera ray through a pixel and reports the first hit
func inspectPixel(s *scene.Scene, width, height, x, y int) InspectResponse {
	view := renderer.NewView(s.Camera, width, height)
	ray := view.Ray(x, y, width, height)

	hit, ok := s.Intersect(ray)
	if !ok {
		return InspectResponse{Hit: false}
	}

	m := s.Material(hit)
	geometryType, geometryProps := geometryInfo(s, hit)
	return InspectResponse{
		Hit:          true,
		MaterialType: m.Kind.String(),
		GeometryType: geometryType,
		Point:        vec(hit.Point),
		Normal:       vec(hit.Normal),
		Distance:     hit.T,
		FrontFace:    ray.Direction.Dot(hit.Normal) < 0,
		Properties: map[string]interface{}{
			"material": materialInfo(m),
			"geometry": geometryProps,
			"color":    vec(s.SurfaceColor(hit)),
		},
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req, err := s.parseRenderRequest(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid x coordinate")
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid y coordinate")
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		return errorJSON(c, http.StatusBadRequest, "Pixel coordinates out of bounds")
	}

	sceneObj, err := s.loadScene(req.Scene, s.log.Sugar())
	if err != nil {
		return errorJSON(c, http.StatusNotFound, err.Error())
	}

	return c.JSON(http.StatusOK, inspectPixel(sceneObj, req.Width, req.Height, pixelX, pixelY))
}
