package component

// SelectedTag marks units that receive right-click orders.
type SelectedTag struct{}

var SelectedTagComponent = NewComponent[SelectedTag]()

// NavigationTag marks the singleton entity holding Terrain and Navigation.
type NavigationTag struct{}

var NavigationTagComponent = NewComponent[NavigationTag]()
