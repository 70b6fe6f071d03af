package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/models"
)

// ImportMesh loads a GLB or glTF file and adds every primitive as a mesh.
// Exactly one of onSuccess or onError is called; onProgress may be called
// any number of times before. Callbacks may be nil.
func (s *Scene) ImportMesh(path string, onSuccess func([]*Mesh), onProgress func(done, total int), onError func(error)) {
	loader := models.NewGLTFLoader()
	loader.OnProgress = onProgress

	model, err := loader.Load(path)
	if err != nil {
		err = fmt.Errorf("import %s: %w", path, err)
		s.log.Error("import failed", zap.String("path", path), zap.Error(err))
		if onError != nil {
			onError(err)
		}
		return
	}

	meshes := s.AddModel(model)
	s.log.Info("model imported",
		zap.String("path", path),
		zap.Int("meshes", len(meshes)),
		zap.Int("triangles", model.TriangleCount()))
	if onSuccess != nil {
		onSuccess(meshes)
	}
}
