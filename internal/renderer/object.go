package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is anything that can live in the scene graph.
type Node interface {
	Object() *Object3D
}

// Object3D is the transform node every scene graph element embeds.
type Object3D struct {
	ID   uuid.UUID
	Name string

	// Local transform
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Matrix      mgl32.Mat4 // Local matrix, rebuilt from TRS when MatrixAutoUpdate is set
	MatrixWorld mgl32.Mat4 // Parent world matrix * Matrix

	MatrixAutoUpdate bool
	Visible          bool

	self     Node
	parent   *Object3D
	children []Node
}

var defaultUp = mgl32.Vec3{0, 1, 0}

// NewObject3D returns an empty group node at the origin.
func NewObject3D() *Object3D {
	o := &Object3D{}
	o.Init(o)
	return o
}

// Init must be called by every constructor of a type embedding Object3D so
// that traversal hands out the outer type.
func (o *Object3D) Init(self Node) {
	o.ID = uuid.New()
	o.Rotation = mgl32.QuatIdent()
	o.Scale = mgl32.Vec3{1, 1, 1}
	o.Matrix = mgl32.Ident4()
	o.MatrixWorld = mgl32.Ident4()
	o.MatrixAutoUpdate = true
	o.Visible = true
	o.self = self
}

func (o *Object3D) Object() *Object3D {
	return o
}

func (o *Object3D) Parent() *Object3D {
	return o.parent
}

func (o *Object3D) Children() []Node {
	return o.children
}

// Add attaches nodes as children, detaching them from any previous parent.
func (o *Object3D) Add(nodes ...Node) {
	for _, n := range nodes {
		child := n.Object()
		if child == o {
			continue
		}
		if child.parent != nil {
			child.parent.Remove(n)
		}
		child.parent = o
		o.children = append(o.children, n)
	}
}

func (o *Object3D) Remove(nodes ...Node) {
	for _, n := range nodes {
		child := n.Object()
		for i, c := range o.children {
			if c.Object() == child {
				o.children = append(o.children[:i], o.children[i+1:]...)
				child.parent = nil
				break
			}
		}
	}
}

// Traverse calls fn for this node and every descendant, depth first.
func (o *Object3D) Traverse(fn func(Node)) {
	fn(o.node())
	for _, c := range o.children {
		c.Object().Traverse(fn)
	}
}

// TraverseVisible is Traverse that skips invisible subtrees.
func (o *Object3D) TraverseVisible(fn func(Node)) {
	if !o.Visible {
		return
	}
	fn(o.node())
	for _, c := range o.children {
		c.Object().TraverseVisible(fn)
	}
}

func (o *Object3D) node() Node {
	if o.self == nil {
		return o
	}
	return o.self
}

func (o *Object3D) SetPosition(x, y, z float32) {
	o.Position = mgl32.Vec3{x, y, z}
}

func (o *Object3D) SetScale(x, y, z float32) {
	o.Scale = mgl32.Vec3{x, y, z}
}

// UpdateMatrix rebuilds the local matrix in TRS order.
func (o *Object3D) UpdateMatrix() {
	scaleMatrix := mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	rotationMatrix := o.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2])
	o.Matrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}

// UpdateMatrixWorld refreshes this node and its whole subtree.
func (o *Object3D) UpdateMatrixWorld() {
	o.updateWorld()
	for _, c := range o.children {
		c.Object().UpdateMatrixWorld()
	}
}

// UpdateWorldMatrix optionally refreshes the ancestors first and the
// descendants after.
func (o *Object3D) UpdateWorldMatrix(updateParents, updateChildren bool) {
	if updateParents && o.parent != nil {
		o.parent.UpdateWorldMatrix(true, false)
	}
	o.updateWorld()
	if updateChildren {
		for _, c := range o.children {
			c.Object().UpdateWorldMatrix(false, true)
		}
	}
}

func (o *Object3D) updateWorld() {
	if o.MatrixAutoUpdate {
		o.UpdateMatrix()
	}
	if o.parent == nil {
		o.MatrixWorld = o.Matrix
	} else {
		o.MatrixWorld = o.parent.MatrixWorld.Mul4(o.Matrix)
	}
}

// WorldPosition returns the translation of the current world matrix.
func (o *Object3D) WorldPosition() mgl32.Vec3 {
	return o.MatrixWorld.Col(3).Vec3()
}

// LookAt rotates the node so its local +Z axis points at a world position.
func (o *Object3D) LookAt(target mgl32.Vec3) {
	o.lookAt(target, false)
}

func (o *Object3D) lookAt(target mgl32.Vec3, camera bool) {
	o.UpdateWorldMatrix(true, false)
	position := o.WorldPosition()

	var rotation mgl32.Mat4
	if camera {
		rotation = lookAtRotation(position, target, defaultUp)
	} else {
		rotation = lookAtRotation(target, position, defaultUp)
	}
	q := mgl32.Mat4ToQuat(rotation)

	if o.parent != nil {
		parentRotation := mgl32.Mat4ToQuat(extractRotation(o.parent.MatrixWorld))
		q = parentRotation.Inverse().Mul(q)
	}
	o.Rotation = q.Normalize()
}

// lookAtRotation builds a rotation whose Z axis points from target to eye.
func lookAtRotation(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := eye.Sub(target)
	if z.Len() == 0 {
		z[2] = 1
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() == 0 {
		if mgl32.Abs(up.Z()) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
}

// extractRotation strips translation and scale from an affine matrix.
func extractRotation(m mgl32.Mat4) mgl32.Mat4 {
	out := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		l := col.Len()
		if l == 0 {
			continue
		}
		col = col.Mul(1 / l)
		out.SetCol(c, col.Vec4(0))
	}
	return out
}
