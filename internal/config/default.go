package config

// Default is the Singapore canopy view the viewer opens on.
func Default() *Config {
	return &Config{
		Style: "mapbox://styles/cheeaun/ckpoxzt7o076k17rqq7jrowxg",
		Camera: CameraConfig{
			Center:  [2]float64{103.84708968044379, 1.2928590602954841},
			Zoom:    17.7,
			Pitch:   65,
			MinZoom: 8,
		},
		Layers: LayerConfig{
			MinZoom:    15,
			MaxZoom:    22.1,
			TrunkColor: "#DBC39A",
			CrownColor: "#AFD88E",
		},
		Lighting: LightingConfig{
			Ambient: 2.25,
			Directional: DirectionalConfig{
				Color:     "#FFFFFF",
				Intensity: 0.35,
				Direction: [3]float64{0, 0, -1},
			},
		},
		HTTP: HTTPConfig{Listen: ":5000"},
	}
}
