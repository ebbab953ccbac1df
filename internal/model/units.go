package model

// Unit is a measurement unit accepted from report tables.
// Values are stored lowercase, exactly as listed here.
type Unit string

// Accepted units.
const (
	UnitPPM  Unit = "ppm"
	UnitPPB  Unit = "ppb"
	UnitPCIL Unit = "pci/l"
	UnitNTU  Unit = "ntu"
	UnitMREM Unit = "mrem"
	UnitMFL  Unit = "mfl"
	UnitPPT  Unit = "ppt"
	UnitPPQ  Unit = "ppq"
	UnitMGL  Unit = "mg/l"
)

// String returns the unit text.
func (u Unit) String() string {
	return string(u)
}

// WaterSource is the primary source type of a public water system.
type WaterSource string

// Water sources.
const (
	WaterSourceGround  WaterSource = "Ground Water"
	WaterSourceSurface WaterSource = "Surface Water"
)

// String returns the display name.
func (w WaterSource) String() string {
	return string(w)
}
