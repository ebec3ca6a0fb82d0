package soil

// humusCorg maps a humus class to organic carbon in mass% [0-100]. Classes
// up to 4 use the humus-to-carbon factor 1.72, the peat classes factor 2.
var humusCorg = map[int64]float64{
	0: 0.0,
	1: 0.5 / 1.72,
	2: 1.5 / 1.72,
	3: 3.0 / 1.72,
	4: 6.0 / 1.72,
	5: 11.5 / 2.0,
	6: 17.5 / 2.0,
	7: 30.0 / 2.0,
}

// HumusClassToCorg returns the organic carbon content of a humus class.
// Unknown classes yield 0.
func HumusClassToCorg(class int64) float64 {
	return humusCorg[class]
}

// bulkDensity maps effective bulk density classes to g cm-3.
var bulkDensity = map[int64]float64{
	1: 1.3,
	2: 1.5,
	3: 1.7,
	4: 1.9,
	5: 2.1,
}

// BulkDensityClassToRawDensity returns the raw density in kg m-3 of a soil
// with the given effective bulk density class and clay fraction. Unknown
// classes use a class density of 0.
func BulkDensityClassToRawDensity(class int64, clay float64) float64 {
	// The explicit conversion keeps the product from being fused.
	return (bulkDensity[class] - float64(0.9*clay)) * 1000
}

// SandAndClayToLambda estimates the soil water conductivity coefficient
// from sand and clay fractions.
func SandAndClayToLambda(sand, clay float64) float64 {
	sandTerm := float64(2 * float64(sand*sand*0.575))
	clayTerm := float64(clay * 0.1)
	siltTerm := float64((1 - sand - clay) * 0.35)

	return sandTerm + clayTerm + siltTerm
}
