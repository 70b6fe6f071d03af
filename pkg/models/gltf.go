package models

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/meshpick/pkg/math3d"
)

// ErrNoGeometry is returned when an asset holds no triangle primitives.
var ErrNoGeometry = errors.New("no triangle geometry")

const (
	extUnlit              = "KHR_materials_unlit"
	extSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"
)

// GLTFLoader loads GLTF/GLB files into one Mesh per triangle primitive.
type GLTFLoader struct {
	// Options
	CalculateNormals bool

	// OnProgress, when set, is called after each primitive is decoded.
	OnProgress func(done, total int)
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Model, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens a GLTF or GLB file and decodes it.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.Decode(doc, filepath.Base(path), filepath.Dir(path))
}

// nodeInstance is a mesh-bearing node with its world transform.
type nodeInstance struct {
	node  *gltf.Node
	world math3d.Mat4
}

// Decode converts an already parsed document. dir resolves external images.
func (l *GLTFLoader) Decode(doc *gltf.Document, name, dir string) (*Model, error) {
	materials := decodeMaterials(doc, dir)

	instances := collectInstances(doc)
	total := 0
	for _, inst := range instances {
		total += len(doc.Meshes[*inst.node.Mesh].Primitives)
	}

	model := &Model{Name: name}
	done := 0
	for _, inst := range instances {
		gm := doc.Meshes[*inst.node.Mesh]
		baseName := inst.node.Name
		if baseName == "" {
			baseName = gm.Name
		}
		if baseName == "" {
			baseName = fmt.Sprintf("mesh_%d", *inst.node.Mesh)
		}

		for pi, prim := range gm.Primitives {
			meshName := baseName
			if len(gm.Primitives) > 1 {
				meshName = fmt.Sprintf("%s_primitive%d", baseName, pi)
			}

			mesh, err := l.decodePrimitive(doc, prim, meshName)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", meshName, err)
			}

			done++
			if l.OnProgress != nil {
				l.OnProgress(done, total)
			}
			if mesh == nil {
				continue
			}

			mesh.Transform(inst.world)
			if prim.Material != nil && *prim.Material < len(materials) {
				mesh.Material = materials[*prim.Material]
			}
			model.Meshes = append(model.Meshes, mesh)
		}
	}

	if len(model.Meshes) == 0 {
		return nil, ErrNoGeometry
	}
	return model, nil
}

// collectInstances walks the default scene (or every root node when the
// document has no scene) and accumulates node transforms.
func collectInstances(doc *gltf.Document) []nodeInstance {
	var roots []int
	switch {
	case len(doc.Scenes) > 0:
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		roots = doc.Scenes[idx].Nodes
	default:
		isChild := make([]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				if c < len(isChild) {
					isChild[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
	}

	var out []nodeInstance
	visited := make(map[int]bool)
	var walk func(idx int, parent math3d.Mat4)
	walk = func(idx int, parent math3d.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true

		n := doc.Nodes[idx]
		world := parent.Mul(nodeTransform(n))
		if n.Mesh != nil && *n.Mesh < len(doc.Meshes) {
			out = append(out, nodeInstance{node: n, world: world})
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range roots {
		walk(r, math3d.Identity())
	}
	return out
}

// nodeTransform returns the node's local matrix, preferring an explicit matrix.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	local := math3d.FromGLTF(n.MatrixOrDefault())
	if local != math3d.Identity() {
		return local
	}
	t := n.TranslationOrDefault()
	s := n.ScaleOrDefault()
	return math3d.FromTRS(
		math3d.V3(t[0], t[1], t[2]),
		n.RotationOrDefault(),
		math3d.V3(s[0], s[1], s[2]),
	)
}

// decodePrimitive extracts geometry from a GLTF primitive. A nil mesh with a
// nil error means the primitive was skipped.
func (l *GLTFLoader) decodePrimitive(doc *gltf.Document, prim *gltf.Primitive, name string) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		// Skip non-triangle primitives (lines, points, etc)
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	mesh := NewMesh(name)
	for i := range positions {
		v := MeshVertex{Position: positions[i]}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	// GLTF winds front faces CCW; the rasterizer expects CW after the
	// screen-space Y flip, so swap the last two corners.
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= len(positions) || b >= len(positions) || c >= len(positions) {
			return nil, fmt.Errorf("index out of range in triangle %d", i/3)
		}
		mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, c, b}})
	}

	if len(mesh.Faces) == 0 {
		return nil, nil
	}

	if l.CalculateNormals && len(normals) == 0 {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// decodeMaterials converts every document material, decoding base color
// textures once per image.
func decodeMaterials(doc *gltf.Document, dir string) []*Material {
	images := make(map[int]image.Image)
	loadImage := func(texIdx int) image.Image {
		if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
			return nil
		}
		src := *doc.Textures[texIdx].Source
		if img, ok := images[src]; ok {
			return img
		}
		img := decodeImage(doc, src, dir)
		images[src] = img
		return img
	}

	out := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := &Material{
			Name:        gm.Name,
			Kind:        MaterialMetallicRoughness,
			BaseColor:   [4]float64{1, 1, 1, 1},
			Metallic:    1,
			Roughness:   1,
			Blend:       gm.AlphaMode == gltf.AlphaBlend,
			DoubleSided: gm.DoubleSided,
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("material_%d", i)
		}

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			m.BaseColor = pbr.BaseColorFactorOrDefault()
			m.Metallic = pbr.MetallicFactorOrDefault()
			m.Roughness = pbr.RoughnessFactorOrDefault()
			if pbr.BaseColorTexture != nil {
				m.BaseMap = loadImage(pbr.BaseColorTexture.Index)
				m.BaseSampler = textureSampler(doc, pbr.BaseColorTexture.Index)
			}
		}

		if sg, ok := gm.Extensions[extSpecularGlossiness]; ok {
			m.Kind = MaterialSpecularGlossiness
			if diffuse, ok := specularGlossinessDiffuse(sg); ok {
				m.BaseColor = diffuse
			}
		}
		if _, ok := gm.Extensions[extUnlit]; ok {
			m.Kind = MaterialUnlit
		}

		out[i] = m
	}
	return out
}

// textureSampler resolves the sampler of texture texIdx, falling back to the
// glTF defaults when it has none.
func textureSampler(doc *gltf.Document, texIdx int) Sampler {
	var s Sampler
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Sampler == nil {
		return s
	}
	idx := *doc.Textures[texIdx].Sampler
	if idx < 0 || idx >= len(doc.Samplers) {
		return s
	}
	gs := doc.Samplers[idx]
	s.WrapS = wrapFromGLTF(gs.WrapS)
	s.WrapT = wrapFromGLTF(gs.WrapT)
	s.Nearest = gs.MagFilter == gltf.MagNearest
	return s
}

func wrapFromGLTF(w gltf.WrappingMode) Wrap {
	switch w {
	case gltf.WrapClampToEdge:
		return WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return WrapMirroredRepeat
	default:
		return WrapRepeat
	}
}

// specularGlossinessDiffuse reads diffuseFactor from an undecoded extension.
func specularGlossinessDiffuse(ext any) ([4]float64, bool) {
	var raw []byte
	switch v := ext.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return [4]float64{}, false
	}

	var payload struct {
		DiffuseFactor *[4]float64 `json:"diffuseFactor"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.DiffuseFactor == nil {
		return [4]float64{}, false
	}
	return *payload.DiffuseFactor, true
}

// decodeImage decodes an embedded or sibling-file image. Failures yield nil.
func decodeImage(doc *gltf.Document, idx int, dir string) image.Image {
	if idx < 0 || idx >= len(doc.Images) {
		return nil
	}
	img := doc.Images[idx]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		b, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		data = b
	default:
		return nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}

// accessorBytes returns the buffer backing an accessor plus its start and stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor overruns buffer (%d > %d)", end, len(buffer.Data))
		}
	}
	return buffer.Data, start, stride, nil
}

// readFloats reads n float32 components per element.
func readFloats(doc *gltf.Document, accessorIdx, n int, want gltf.AccessorType) ([][3]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != want {
		return nil, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, err
	}

	out := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			out[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	raw, err := readFloats(doc, accessorIdx, 3, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(raw))
	for i, f := range raw {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	raw, err := readFloats(doc, accessorIdx, 2, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(raw))
	for i, f := range raw {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

// readIndices reads index data from a scalar GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		default:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}
