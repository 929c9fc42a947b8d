package valueobjects

import "fmt"

// GeoLocation is a WGS84 coordinate pair
type GeoLocation struct {
	latitude  float64
	longitude float64
}

// NewGeoLocation validates coordinate ranges and returns a GeoLocation
func NewGeoLocation(latitude, longitude float64) (GeoLocation, error) {
	if latitude < -90 || latitude > 90 {
		return GeoLocation{}, fmt.Errorf("latitude must be between -90 and 90: got %f", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return GeoLocation{}, fmt.Errorf("longitude must be between -180 and 180: got %f", longitude)
	}
	return GeoLocation{latitude: latitude, longitude: longitude}, nil
}

// Latitude returns the latitude in degrees
func (g GeoLocation) Latitude() float64 {
	return g.latitude
}

// Longitude returns the longitude in degrees
func (g GeoLocation) Longitude() float64 {
	return g.longitude
}

// Equals checks if two GeoLocations are equal
func (g GeoLocation) Equals(other GeoLocation) bool {
	return g.latitude == other.latitude && g.longitude == other.longitude
}

// Geofence is a rectangular boundary defined by its south-west and
// north-east corners
type Geofence struct {
	southWest GeoLocation
	northEast GeoLocation
}

// NewGeofence validates corner ordering and returns a Geofence
func NewGeofence(southWest, northEast GeoLocation) (Geofence, error) {
	if southWest.latitude > northEast.latitude {
		return Geofence{}, fmt.Errorf("geofence south-west latitude %f above north-east latitude %f",
			southWest.latitude, northEast.latitude)
	}
	if southWest.longitude > northEast.longitude {
		return Geofence{}, fmt.Errorf("geofence south-west longitude %f east of north-east longitude %f",
			southWest.longitude, northEast.longitude)
	}
	return Geofence{southWest: southWest, northEast: northEast}, nil
}

// SouthWest returns the south-west corner
func (f Geofence) SouthWest() GeoLocation {
	return f.southWest
}

// NorthEast returns the north-east corner
func (f Geofence) NorthEast() GeoLocation {
	return f.northEast
}

// Contains reports whether a location falls inside the boundary
func (f Geofence) Contains(loc GeoLocation) bool {
	return loc.latitude >= f.southWest.latitude &&
		loc.latitude <= f.northEast.latitude &&
		loc.longitude >= f.southWest.longitude &&
		loc.longitude <= f.northEast.longitude
}

// IsZero checks if the Geofence is the zero value
func (f Geofence) IsZero() bool {
	return f.southWest == (GeoLocation{}) && f.northEast == (GeoLocation{})
}
