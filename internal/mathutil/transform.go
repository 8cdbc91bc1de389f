package mathutil

// Transform is a scene node transform: uniform scale, then rotation, then
// translation.
type Transform struct {
	Rotation    Mat3
	Translation Vec3
	Scale       float64
}

// Identity is the transform that changes nothing.
var Identity = Transform{Rotation: Mat3Identity(), Scale: 1}

// Apply maps a point from local to parent space.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.MulVec3(p.Scale(t.Scale)).Add(t.Translation)
}

// Then returns the transform that applies t first and then parent.
func (t Transform) Then(parent Transform) Transform {
	return Transform{
		Rotation:    Mat3Mul(parent.Rotation, t.Rotation),
		Translation: parent.Apply(t.Translation),
		Scale:       parent.Scale * t.Scale,
	}
}
