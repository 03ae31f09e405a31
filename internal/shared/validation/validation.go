package validation

import (
	"errors"
	"regexp"
)

var uuidRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// ValidateCoordinates validates latitude and longitude values
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(id string) error {
	if !uuidRegex.MatchString(id) {
		return errors.New("invalid UUID format")
	}
	return nil
}

// ValidateSequence validates a client-supplied ping sequence number.
// Sequences start at 1; the cache seeds journeys with lastSequence 0.
func ValidateSequence(seq int64) error {
	if seq < 1 {
		return errors.New("sequence must be >= 1")
	}
	return nil
}

// ValidateSpeed validates speed in km/h
func ValidateSpeed(speed float64) error {
	if speed < 0 {
		return errors.New("speed must be non-negative")
	}
	if speed > 300 {
		return errors.New("speed exceeds reasonable limit (300 km/h)")
	}
	return nil
}

// ValidateHeading validates heading in degrees
func ValidateHeading(heading float64) error {
	if heading < 0 || heading > 360 {
		return errors.New("heading must be between 0 and 360 degrees")
	}
	return nil
}

// ValidateAccuracy validates GPS accuracy in meters
func ValidateAccuracy(accuracy float64) error {
	if accuracy < 0 {
		return errors.New("accuracy must be non-negative")
	}
	if accuracy > 10000 {
		return errors.New("accuracy exceeds reasonable limit (10km)")
	}
	return nil
}
