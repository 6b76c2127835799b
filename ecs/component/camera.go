package component

type Camera struct {
	Zoom     float64
	PanSpeed float64
}

var CameraComponent = NewComponent[Camera]()
