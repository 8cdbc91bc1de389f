package mathutil

import "math"

var (
	// ZUp maps scene space, where Z points up, onto view space with Y up.
	ZUp = Rotation(AxisX, -math.Pi/2)

	// PreviewCamera views the model from slightly above and to the side.
	PreviewCamera = Mat3Mul(Mat3Mul(Rotation(AxisX, Deg2Rad(-15)), Rotation(AxisY, Deg2Rad(30))), ZUp)
)
