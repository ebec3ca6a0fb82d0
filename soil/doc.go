// Package soil provides the soil lookup tables and pedotransfer formulas
// used by the unit-conversion macros: humus class to organic carbon, bulk
// density class to raw density, KA5 texture classes to sand and clay
// fractions (and back), and the sand/clay lambda estimate.
//
// Fractions are in [0, 1]; densities are in kg m-3 unless noted.
package soil
