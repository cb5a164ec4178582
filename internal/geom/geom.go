// Package geom holds the value types shared by entities and components:
// 3D vectors, unit quaternions and the parsers for their textual forms.
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vector3 is an immutable 3D vector.
type Vector3 struct {
	X, Y, Z float64
}

var (
	Zero  = Vector3{}
	XAxis = Vector3{X: 1}
	YAxis = Vector3{Y: 1}
	ZAxis = Vector3{Z: 1}
)

func (v Vector3) Add(o Vector3) Vector3      { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3      { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Scale(f float64) Vector3    { return Vector3{v.X * f, v.Y * f, v.Z * f} }
func (v Vector3) Dot(o Vector3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector3) Length() float64            { return math.Sqrt(v.Dot(v)) }
func (v Vector3) Distance(o Vector3) float64 { return v.Sub(o).Length() }

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Rotate returns v rotated by the unit quaternion q.
func (v Vector3) Rotate(q Quaternion) Vector3 {
	u := Vector3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

func (v Vector3) String() string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

// Quaternion is a rotation. Constructors return unit quaternions.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the null rotation.
var Identity = Quaternion{W: 1}

// FromAxisAngle builds the rotation of rad radians around axis.
func FromAxisAngle(axis Vector3, rad float64) Quaternion {
	l := axis.Length()
	if l == 0 {
		return Identity
	}
	s := math.Sin(rad/2) / l
	return Quaternion{W: math.Cos(rad / 2), X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// FromEulerZYX builds a rotation from angles in degrees applied around Z,
// then Y, then X.
func FromEulerZYX(z, y, x float64) Quaternion {
	qz := FromAxisAngle(ZAxis, Radians(z))
	qy := FromAxisAngle(YAxis, Radians(y))
	qx := FromAxisAngle(XAxis, Radians(x))
	return qz.Multiply(qy).Multiply(qx)
}

func (q Quaternion) Multiply(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// AngleTo returns the magnitude in radians of the rotation from q to o.
// Identical orientations yield exactly zero.
func (q Quaternion) AngleTo(o Quaternion) float64 {
	r := q.Conjugate().Multiply(o)
	return 2 * math.Atan2(math.Sqrt(r.X*r.X+r.Y*r.Y+r.Z*r.Z), math.Abs(r.W))
}

// Yaw returns the rotation around Z in radians.
func (q Quaternion) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// ParseVector3 parses "x,y,z".
func ParseVector3(s string) (Vector3, error) {
	f, err := parseTriple(s)
	if err != nil {
		return Vector3{}, err
	}
	return Vector3{f[0], f[1], f[2]}, nil
}

// ParseEulerZYX parses "z,y,x" in degrees into a rotation.
func ParseEulerZYX(s string) (Quaternion, error) {
	f, err := parseTriple(s)
	if err != nil {
		return Quaternion{}, err
	}
	return FromEulerZYX(f[0], f[1], f[2]), nil
}

func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected 3 comma-separated values, got %d in %q", len(parts), s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("value %d of %q: %w", i, s, err)
		}
		out[i] = f
	}
	return out, nil
}
