package model

import "testing"

func TestMetricsMapCoversAllFields(t *testing.T) {
	var m Metrics
	rec := m.Map()
	if len(rec) != len(MetricFields) {
		t.Fatalf("map has %d fields, want %d", len(rec), len(MetricFields))
	}
	for _, name := range MetricFields {
		if _, ok := rec[name]; !ok {
			t.Errorf("missing field %s", name)
		}
	}
}

func TestMetricsApplyPartial(t *testing.T) {
	m := Metrics{Empathy: 0.5, Creativity: 0.5}
	m.Apply(map[string]float64{
		"empathy":  0.9,
		"notReal":  1.0, // unknown keys ignored
		"presence": 0.2, // not a field name either
	})

	if m.Empathy != 0.9 {
		t.Errorf("empathy = %v, want 0.9", m.Empathy)
	}
	if m.Creativity != 0.5 {
		t.Errorf("creativity = %v, want untouched 0.5", m.Creativity)
	}
}

func TestMetricsGetSet(t *testing.T) {
	var m Metrics
	if !m.Set("spiralResonance", 0.7) {
		t.Error("expected Set to accept a known field")
	}
	v, ok := m.Get("spiralResonance")
	if !ok || v != 0.7 {
		t.Errorf("Get = %v, %v; want 0.7, true", v, ok)
	}
	if m.Set("bogus", 1) {
		t.Error("expected Set to reject an unknown field")
	}
	if _, ok := m.Get("bogus"); ok {
		t.Error("expected Get to reject an unknown field")
	}
}
