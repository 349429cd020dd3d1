package domain

import "math"

// EyeRx is one eye's prescription values.
type EyeRx struct {
	Sphere   float64  `json:"sphere"`
	Cylinder float64  `json:"cylinder"`
	Axis     *int     `json:"axis,omitempty"`
	Add      *float64 `json:"add,omitempty"`
}

// Prescription carries both eyes. Band and add-on matching evaluate the
// stronger eye per field.
type Prescription struct {
	Right *EyeRx `json:"right,omitempty"`
	Left  *EyeRx `json:"left,omitempty"`
}

// BandPower returns the signed sphere of the eye with the greater magnitude.
func (p Prescription) BandPower() (float64, bool) {
	var power float64
	found := false
	for _, eye := range []*EyeRx{p.Right, p.Left} {
		if eye == nil {
			continue
		}
		if !found || math.Abs(eye.Sphere) > math.Abs(power) {
			power = eye.Sphere
		}
		found = true
	}
	return power, found
}

// CylMagnitude returns the larger cylinder magnitude across both eyes.
func (p Prescription) CylMagnitude() (float64, bool) {
	var mag float64
	found := false
	for _, eye := range []*EyeRx{p.Right, p.Left} {
		if eye == nil {
			continue
		}
		if abs := math.Abs(eye.Cylinder); abs > mag || !found {
			mag = abs
		}
		found = true
	}
	return mag, found
}

// AddPower returns the larger reading addition across both eyes.
func (p Prescription) AddPower() (float64, bool) {
	var add float64
	found := false
	for _, eye := range []*EyeRx{p.Right, p.Left} {
		if eye == nil || eye.Add == nil {
			continue
		}
		if *eye.Add > add || !found {
			add = *eye.Add
		}
		found = true
	}
	return add, found
}
