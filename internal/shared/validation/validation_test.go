package validation

import "testing"

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid city point", 51.1605, 71.4704, false},
		{"equator origin", 0, 0, false},
		{"lat upper bound", 90, 0, false},
		{"lat over bound", 90.0001, 0, true},
		{"lat under bound", -91, 0, true},
		{"lng upper bound", 0, 180, false},
		{"lng over bound", 0, 180.5, true},
		{"lng under bound", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSequence(t *testing.T) {
	if err := ValidateSequence(1); err != nil {
		t.Errorf("sequence 1 should be valid: %v", err)
	}
	if err := ValidateSequence(0); err == nil {
		t.Error("sequence 0 should be rejected")
	}
	if err := ValidateSequence(-7); err == nil {
		t.Error("negative sequence should be rejected")
	}
}

func TestValidateOptionalPingFields(t *testing.T) {
	if err := ValidateSpeed(301); err == nil {
		t.Error("speed above 300 km/h should be rejected")
	}
	if err := ValidateSpeed(42); err != nil {
		t.Errorf("speed 42 should be valid: %v", err)
	}
	if err := ValidateHeading(361); err == nil {
		t.Error("heading above 360 should be rejected")
	}
	if err := ValidateAccuracy(-1); err == nil {
		t.Error("negative accuracy should be rejected")
	}
	if err := ValidateAccuracy(10001); err == nil {
		t.Error("accuracy above 10km should be rejected")
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("7c9e6679-7425-40de-944b-e07fc1f90ae7"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); err == nil {
		t.Error("garbage uuid accepted")
	}
}
