package schema

import (
	"errors"
	"testing"
)

const testDocument = `
model_id: PDPR1H1HAW100
fw_code: "539187"
parameters:
  temperature:
    key: w_1eommf39k
    kind: sensor
  ph_target:
    key: w_1eomph456
    kind: number
  dosing_time_min:
    key: w_1eomtimer
    kind: number
    field: minT
  dosing_time_max:
    key: w_1eomtimer
    kind: number
    field: maxT
  stop_pool_dosing:
    key: w_1eklvq5ns
    kind: switch
  water_meter_unit:
    key: w_1eklinki6
    kind: select
    options:
      "0": COMBO_M3
      "1": COMBO_LITER
    conversion:
      COMBO_M3: "m³"
      COMBO_LITER: "L"
`

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(testDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func TestParse_Valid(t *testing.T) {
	s := loadTestSchema(t)

	if s.ModelID != "PDPR1H1HAW100" {
		t.Errorf("ModelID = %q, want PDPR1H1HAW100", s.ModelID)
	}
	if s.FWCode != "539187" {
		t.Errorf("FWCode = %q, want 539187", s.FWCode)
	}
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}
	if got := s.Prefix(); got != "PDPR1H1HAW100_FW539187_" {
		t.Errorf("Prefix() = %q, want PDPR1H1HAW100_FW539187_", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "missing model_id",
			doc:     "fw_code: \"1\"\nparameters:\n  x: {key: k, kind: sensor}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "missing fw_code",
			doc:     "model_id: M\nparameters:\n  x: {key: k, kind: sensor}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "no parameters",
			doc:     "model_id: M\nfw_code: \"1\"\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "unknown kind",
			doc:     "model_id: M\nfw_code: \"1\"\nparameters:\n  x: {key: k, kind: gauge}\n",
			wantErr: ErrInvalidDescriptor,
		},
		{
			name:    "missing wire key",
			doc:     "model_id: M\nfw_code: \"1\"\nparameters:\n  x: {kind: sensor}\n",
			wantErr: ErrInvalidDescriptor,
		},
		{
			name:    "select without options",
			doc:     "model_id: M\nfw_code: \"1\"\nparameters:\n  x: {key: k, kind: select}\n",
			wantErr: ErrInvalidDescriptor,
		},
		{
			name:    "field on non-number",
			doc:     "model_id: M\nfw_code: \"1\"\nparameters:\n  x: {key: k, kind: sensor, field: minT}\n",
			wantErr: ErrInvalidDescriptor,
		},
		{
			name:    "invalid field marker",
			doc:     "model_id: M\nfw_code: \"1\"\nparameters:\n  x: {key: k, kind: number, field: midT}\n",
			wantErr: ErrInvalidDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	s := loadTestSchema(t)

	d, err := s.Lookup("temperature")
	if err != nil {
		t.Fatalf("Lookup(temperature) error = %v", err)
	}
	if d.WireKey != "w_1eommf39k" {
		t.Errorf("WireKey = %q, want w_1eommf39k", d.WireKey)
	}
	if d.Kind != KindSensor {
		t.Errorf("Kind = %q, want sensor", d.Kind)
	}

	if _, err := s.Lookup("nonexistent"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Lookup(nonexistent) error = %v, want ErrUnknownParameter", err)
	}
}

func TestListByKind(t *testing.T) {
	s := loadTestSchema(t)

	numbers := s.ListByKind(KindNumber)
	want := []string{"dosing_time_max", "dosing_time_min", "ph_target"}
	if len(numbers) != len(want) {
		t.Fatalf("ListByKind(number) = %v, want %v", numbers, want)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("ListByKind(number)[%d] = %q, want %q", i, numbers[i], want[i])
		}
	}

	if got := s.ListByKind(KindBinarySensor); len(got) != 0 {
		t.Errorf("ListByKind(binary_sensor) = %v, want empty", got)
	}
}

func TestCompanion(t *testing.T) {
	s := loadTestSchema(t)

	minD, _ := s.Lookup("dosing_time_min")
	maxD, _ := s.Lookup("dosing_time_max")

	if got := s.Companion(minD); got == nil || got.Name != "dosing_time_max" {
		t.Errorf("Companion(minT) = %v, want dosing_time_max", got)
	}
	if got := s.Companion(maxD); got == nil || got.Name != "dosing_time_min" {
		t.Errorf("Companion(maxT) = %v, want dosing_time_min", got)
	}

	plain, _ := s.Lookup("ph_target")
	if got := s.Companion(plain); got != nil {
		t.Errorf("Companion(plain number) = %v, want nil", got)
	}
}

func TestFullWireKey(t *testing.T) {
	s := loadTestSchema(t)
	d, _ := s.Lookup("temperature")

	want := "PDPR1H1HAW100_FW539187_w_1eommf39k"
	if got := s.FullWireKey(d); got != want {
		t.Errorf("FullWireKey = %q, want %q", got, want)
	}
}

func TestForDevice_Embedded(t *testing.T) {
	s, err := ForDevice("PDPR1H1HAW100", "539187")
	if err != nil {
		t.Fatalf("ForDevice() error = %v", err)
	}
	if !s.Contains("ph") {
		t.Error("embedded document missing ph parameter")
	}
	if !s.Contains("water_meter_unit") {
		t.Error("embedded document missing water_meter_unit parameter")
	}
}

func TestForDevice_Unknown(t *testing.T) {
	_, err := ForDevice("UNKNOWN_MODEL", "000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ForDevice() error = %v, want ErrNotFound", err)
	}
}
