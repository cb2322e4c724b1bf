package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"go.uber.org/zap"
)

// Model is an imported scene: a node tree ready to be added to a scene, the
// meshes found in it and any animation clips targeting its nodes.
type Model struct {
	Root       *renderer.Object3D
	Meshes     []*renderer.Mesh
	Animations []*renderer.AnimationClip
	SourcePath string
}

// Load picks the importer from the file extension: .glb and .gltf go through
// the glTF importer, .obj through the OBJ importer.
func Load(path string) (*Model, error) {
	var (
		model *Model
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		model, err = LoadGLTF(path)
	case ".obj":
		model, err = LoadOBJ(path, false)
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("animations", len(model.Animations)))
	return model, nil
}

// Dispose releases every mesh's geometry and material.
func (m *Model) Dispose() {
	for _, mesh := range m.Meshes {
		mesh.Geometry.Dispose()
		mesh.Material.Dispose()
	}
}
