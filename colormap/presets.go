package colormap

// Built-in presets in the usual (value,r,g,b) quadruple form. All span
// [0,1] already so they normalize to themselves.

// CoolToWarm is a diverging blue-gray-red preset suited to signed fields.
func CoolToWarm() Preset {
	return Preset{
		Name: "cool-to-warm",
		RGBPoints: []float32{
			0, 0.23137, 0.298039, 0.752941,
			0.5, 0.865, 0.865, 0.865,
			1, 0.705882, 0.0156863, 0.14902,
		},
		NanColor: []float32{1, 1, 0},
	}
}

// Grayscale is a black to white ramp.
func Grayscale() Preset {
	return Preset{
		Name: "grayscale",
		RGBPoints: []float32{
			0, 0, 0, 0,
			1, 1, 1, 1,
		},
	}
}

// Rainbow sweeps hue from blue through green to red, interpolating in HSV
// space to keep intermediate colors saturated.
func Rainbow() Preset {
	return Preset{
		Name: "rainbow",
		RGBPoints: []float32{
			0, 0, 0, 1,
			0.25, 0, 1, 1,
			0.5, 0, 1, 0,
			0.75, 1, 1, 0,
			1, 1, 0, 0,
		},
		NanColor: []float32{0.5, 0.5, 0.5},
		Space:    SpaceHSV,
	}
}
