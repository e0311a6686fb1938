package api

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CameraMsg carries optional camera angles in degrees.
type CameraMsg struct {
	Yaw   *float64 `json:"yaw"`
	Pitch *float64 `json:"pitch"`
}

// TwistMsg is a velocity command in geometry_msgs/Twist layout. Only
// linear.x and angular.z are used for driving.
type TwistMsg struct {
	Linear  Vector3    `json:"linear"`
	Angular Vector3    `json:"angular"`
	Camera  *CameraMsg `json:"camera,omitempty"`
}
