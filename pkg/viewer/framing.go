package viewer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/render"
	"github.com/taigrr/meshpick/pkg/scene"
)

var (
	errNoCamera = errors.New("no camera")
	errNoBounds = errors.New("first mesh has no bounding box")
)

// FrameCamera points cam at the center of the first mesh's bounding box and
// pulls it back to at least minRadius. Failures are logged and reported but
// leave the camera as it was.
func FrameCamera(cam *render.OrbitCamera, meshes []*scene.Mesh, minRadius float64, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cam == nil {
		log.Warn("camera framing skipped", zap.Error(errNoCamera))
		return errNoCamera
	}
	if len(meshes) == 0 {
		log.Warn("camera framing skipped", zap.Error(errNoBounds))
		return errNoBounds
	}

	box, ok := meshes[0].BoundingBox()
	if !ok {
		log.Warn("camera framing skipped",
			zap.String("mesh", meshes[0].Name()), zap.Error(errNoBounds))
		return errNoBounds
	}

	cam.SetTarget(box.Center())
	cam.SetRadius(max(cam.Radius(), minRadius))
	log.Debug("camera framed",
		zap.String("mesh", meshes[0].Name()),
		zap.Float64("radius", cam.Radius()))
	return nil
}
