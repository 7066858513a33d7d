package timelog

import (
	"testing"

	"github.com/croplog/taskdata-decoder/internal/taskdata"
)

func declaredAttr() *string {
	s := ""
	return &s
}

func literalAttr(v string) *string {
	return &v
}

func TestBuildHeaderSchemaFull(t *testing.T) {
	hdr := &taskdata.TimeLogHeader{
		Start: declaredAttr(),
		Position: &taskdata.PositionHeader{
			North:      declaredAttr(),
			East:       declaredAttr(),
			Up:         declaredAttr(),
			Status:     declaredAttr(),
			PDOP:       declaredAttr(),
			HDOP:       declaredAttr(),
			Satellites: declaredAttr(),
			GpsUtcTime: declaredAttr(),
			GpsUtcDate: declaredAttr(),
		},
	}

	want := []HeaderField{
		{FieldTimeStartTOFD, KindTime},
		{FieldTimeStartDATE, KindDate},
		{FieldPositionNorth, KindInt32},
		{FieldPositionEast, KindInt32},
		{FieldPositionUp, KindInt32},
		{FieldPositionStatus, KindUint8},
		{FieldPDOP, KindUint16},
		{FieldHDOP, KindUint16},
		{FieldSatellites, KindUint8},
		{FieldGpsUtcTime, KindTime},
		{FieldGpsUtcDate, KindDate},
	}

	fields := BuildHeaderSchema(hdr)
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(fields), len(want), fields)
	}
	for i, f := range fields {
		if f != want[i] {
			t.Errorf("field[%d] = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestBuildHeaderSchemaPartial(t *testing.T) {
	// Only attributes declared with an empty value mark a recorded field;
	// absent attributes and attributes carrying a literal contribute nothing.
	hdr := &taskdata.TimeLogHeader{
		Start: literalAttr("2020-05-17T08:00:00"),
		Position: &taskdata.PositionHeader{
			North:  declaredAttr(),
			East:   declaredAttr(),
			Status: literalAttr("1"),
		},
	}

	fields := BuildHeaderSchema(hdr)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2: %v", len(fields), fields)
	}
	if fields[0].Name != FieldPositionNorth || fields[1].Name != FieldPositionEast {
		t.Errorf("fields = %v, want north then east", fields)
	}
}

func TestBuildHeaderSchemaNoPosition(t *testing.T) {
	hdr := &taskdata.TimeLogHeader{Start: declaredAttr()}

	fields := BuildHeaderSchema(hdr)
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2: %v", len(fields), fields)
	}
	if fields[0].Name != FieldTimeStartTOFD || fields[1].Name != FieldTimeStartDATE {
		t.Errorf("fields = %v, want derived time then date", fields)
	}
}

func TestBuildHeaderSchemaEmpty(t *testing.T) {
	fields := BuildHeaderSchema(&taskdata.TimeLogHeader{})
	if len(fields) != 0 {
		t.Errorf("got %d fields, want 0: %v", len(fields), fields)
	}
}
