package extract

import "testing"

const mechanicalText = `Mechanical Parameters
Dimensions: 2278×1134×30 mm
Weight: 32.5 kg
Front Glass: 2.0 mm AR coated, heat strengthened
Junction Box: IP68, 3 bypass diodes
Output Cables: 4.0 mm², 300 mm length
Power Tolerance: 0~+3%
Maximum System Voltage: 1500 VDC (IEC)
Maximum Series Fuse Rating: 30 A
Temperature Coefficient of Pmax: -0.30%/°C
Temperature Coefficient of Voc: -0.25%/°C
Temperature Coefficient of Isc: +0.045%/°C
NOCT of the module is 45±2 °C
36 pcs/pallet, 792 pcs/40'HQ container
`

func TestCanonicalFields(t *testing.T) {
	got := CanonicalFields(mechanicalText)

	tests := map[string]string{
		"dimensions":                   "2278×1134×30 mm",
		"weight":                       "32.5 kg",
		"front_glass":                  "2.0 mm AR coated, heat strengthened",
		"junction_box":                 "IP68, 3 bypass diodes",
		"power_tolerance":              "0~+3%",
		"maximum_system_voltage":       "1500 VDC (IEC)",
		"maximum_series_fuse_rating":   "30 A",
		"temperature_coefficient_pmax": "-0.30%/°C",
		"temperature_coefficient_voc":  "-0.25%/°C",
		"temperature_coefficient_isc":  "+0.045%/°C",
		"temperature_noct":             "45±2 °C",
		"packing_details":              "36 pcs/pallet, 792 pcs/40'HQ container",
	}
	for k, want := range tests {
		if got[k] != want {
			t.Errorf("%s = %q, want %q", k, got[k], want)
		}
	}
}

func TestCanonicalFieldsAlwaysPresent(t *testing.T) {
	got := CanonicalFields("nothing matches in this text")
	for _, k := range CanonicalKeys() {
		v, ok := got[k]
		if !ok {
			t.Errorf("canonical key %q missing from result", k)
		}
		if v != "" {
			t.Errorf("canonical key %q = %q, want empty on non-match", k, v)
		}
	}
}

func TestCanonicalFullMatchPattern(t *testing.T) {
	// The bare 45±2 °C pattern has no capture group; the whole match is used.
	got := CanonicalFields("operating point 45 ± 2 °C nominal")
	if got["temperature_noct"] != "45 ± 2 °C" {
		t.Errorf("temperature_noct = %q, want full match", got["temperature_noct"])
	}
}
