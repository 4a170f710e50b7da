package extract

import "testing"

func TestTablesKV(t *testing.T) {
	tables := []Table{
		{
			{"Maximum System Voltage", "1500 VDC (IEC)"},
			{"", "Weight", "32.5 kg"},           // empty cell dropped, next two used
			{"Frame", ""},                       // empty value rejected
			{"JB", "IP68"},                      // label under 3 chars rejected
			{"Cell Type", "N-type TOPCon", "x"}, // third cell ignored
		},
	}
	got := TablesKV(tables)

	want := map[string]string{
		"maximum_system_voltage": "1500 VDC (IEC)",
		"weight":                 "32.5 kg",
		"cell_type":              "N-type TOPCon",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %q = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["frame"]; ok {
		t.Error("empty value row should be rejected")
	}
	if _, ok := got["jb"]; ok {
		t.Error("short label row should be rejected")
	}
}

func TestTablesKVFirstNonEmptyWins(t *testing.T) {
	tables := []Table{
		{{"Weight", "10"}, {"Weight", "99"}},
	}
	if got := TablesKV(tables)["weight"]; got != "10" {
		t.Errorf("weight = %q, want first value %q", got, "10")
	}
}

func TestLinesKV(t *testing.T) {
	text := "Maximum System Voltage: 1500 VDC (IEC)\n" +
		"Junction Box  IP68, 3 diodes\n" + // two-space split
		"short\n" + // under 6 chars
		"no separator here\n" + // single spaces only, no colon
		"Frame:\n" // empty value
	got := LinesKV(text)

	if got["maximum_system_voltage"] != "1500 VDC (IEC)" {
		t.Errorf("colon split failed: %q", got["maximum_system_voltage"])
	}
	if got["junction_box"] != "IP68, 3 diodes" {
		t.Errorf("two-space split failed: %q", got["junction_box"])
	}
	if _, ok := got["frame"]; ok {
		t.Error("empty value line should be rejected")
	}
	if _, ok := got["no_separator_here"]; ok {
		t.Error("line without separator should be skipped")
	}
}

func TestFieldMapRegister(t *testing.T) {
	m := FieldMap{}
	m.Register("k", "10")
	m.Register("k", "")
	if m["k"] != "10" {
		t.Errorf("non-empty value was overwritten by empty: %q", m["k"])
	}

	m = FieldMap{}
	m.Register("k", "")
	m.Register("k", "20")
	if m["k"] != "20" {
		t.Errorf("empty value was not upgraded: %q", m["k"])
	}
}
