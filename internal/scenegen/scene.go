package scenegen

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
	"postfx/pkg/postfx"
)

// MeshUploader turns CPU geometry into a backend mesh
type MeshUploader func(g Geometry) (gfx.Mesh, error)

var (
	terrainColor = mgl32.Vec3{0.32, 0.38, 0.27}
	bandColors   = map[Band]mgl32.Vec3{
		BandLow:    {0.25, 0.3, 0.38},
		BandGround: {0.45, 0.36, 0.25},
		BandRock:   {0.5, 0.5, 0.52},
		BandPeak:   {0.9, 0.9, 0.95},
	}
)

// World is a populated scene together with the resources it owns
type World struct {
	Scene  *gfx.Scene
	Layout *Layout

	meshes    []gfx.Mesh
	materials []*gfx.Material
}

// Build uploads the layout's terrain and props into a new scene. Props of
// the same band share a material; all props share one box mesh.
func Build(ctx gfx.Context, l *Layout, upload MeshUploader) (*World, error) {
	w := &World{Scene: gfx.NewScene(), Layout: l}

	terrainMesh, err := w.upload(upload, l.TerrainGeometry())
	if err != nil {
		return nil, fmt.Errorf("terrain mesh: %w", err)
	}
	terrainMat, err := w.material(ctx, terrainColor)
	if err != nil {
		w.Dispose()
		return nil, err
	}
	w.Scene.Add(&gfx.Object{Name: "terrain", Mesh: terrainMesh, Material: terrainMat, Visible: true})

	if len(l.Props) == 0 {
		return w, nil
	}

	box, err := w.upload(upload, BoxGeometry())
	if err != nil {
		return nil, fmt.Errorf("prop mesh: %w", err)
	}

	byBand := make(map[Band]*gfx.Material)
	for i, prop := range l.Props {
		mat, ok := byBand[prop.Band]
		if !ok {
			mat, err = w.material(ctx, bandColors[prop.Band])
			if err != nil {
				w.Dispose()
				return nil, err
			}
			byBand[prop.Band] = mat
		}
		w.Scene.Add(&gfx.Object{
			Name:      fmt.Sprintf("%s-%d", prop.Kind, i),
			Mesh:      box,
			Material:  mat,
			Transform: prop.Transform(),
			Visible:   true,
		})
	}
	return w, nil
}

func (w *World) upload(upload MeshUploader, g Geometry) (gfx.Mesh, error) {
	m, err := upload(g)
	if err != nil {
		w.Dispose()
		return nil, err
	}
	w.meshes = append(w.meshes, m)
	return m, nil
}

func (w *World) material(ctx gfx.Context, color mgl32.Vec3) (*gfx.Material, error) {
	m, err := ctx.NewMaterial(postfx.BasicShader())
	if err != nil {
		return nil, fmt.Errorf("scene material: %w", err)
	}
	m.Uniforms.Set("color", color)
	w.materials = append(w.materials, m)
	return m, nil
}

// Dispose releases every mesh and material the world created
func (w *World) Dispose() {
	for _, m := range w.meshes {
		m.Dispose()
	}
	for _, m := range w.materials {
		m.Dispose()
	}
	w.meshes = nil
	w.materials = nil
}
