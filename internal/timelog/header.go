package timelog

import "github.com/croplog/taskdata-decoder/internal/taskdata"

// Header field names form a closed vocabulary matching the ISO 11783
// time-log position and time attributes.
const (
	FieldTimeStartTOFD  = "TimeStartTOFD"
	FieldTimeStartDATE  = "TimeStartDATE"
	FieldPositionNorth  = "PositionNorth"
	FieldPositionEast   = "PositionEast"
	FieldPositionUp     = "PositionUp"
	FieldPositionStatus = "PositionStatus"
	FieldPDOP           = "PDOP"
	FieldHDOP           = "HDOP"
	FieldSatellites     = "NumberOfSatellites"
	FieldGpsUtcTime     = "GpsUtcTime"
	FieldGpsUtcDate     = "GpsUtcDate"
)

// HeaderField identifies one fixed-position field in a binary time record.
// The order fields appear in the header list fixes their order in the
// stream.
type HeaderField struct {
	Name string
	Kind ValueKind
}

// BuildHeaderSchema inspects a run's header descriptor and returns the
// ordered list of fixed-format fields present in the binary stream. The
// schema marks a field as present by declaring its attribute with an empty
// value; attributes that are absent or carry a value contribute nothing.
//
// A time marker with an empty primary attribute prepends the derived start
// time and start date fields before the position attributes are scanned.
func BuildHeaderSchema(hdr *taskdata.TimeLogHeader) []HeaderField {
	var fields []HeaderField

	if declared(hdr.Start) {
		fields = append(fields,
			HeaderField{Name: FieldTimeStartTOFD, Kind: KindTime},
			HeaderField{Name: FieldTimeStartDATE, Kind: KindDate},
		)
	}

	ptn := hdr.Position
	if ptn == nil {
		return fields
	}

	for _, cand := range []struct {
		attr *string
		name string
		kind ValueKind
	}{
		{ptn.North, FieldPositionNorth, KindInt32},
		{ptn.East, FieldPositionEast, KindInt32},
		{ptn.Up, FieldPositionUp, KindInt32},
		{ptn.Status, FieldPositionStatus, KindUint8},
		{ptn.PDOP, FieldPDOP, KindUint16},
		{ptn.HDOP, FieldHDOP, KindUint16},
		{ptn.Satellites, FieldSatellites, KindUint8},
		{ptn.GpsUtcTime, FieldGpsUtcTime, KindTime},
		{ptn.GpsUtcDate, FieldGpsUtcDate, KindDate},
	} {
		if declared(cand.attr) {
			fields = append(fields, HeaderField{Name: cand.name, Kind: cand.kind})
		}
	}

	return fields
}

// declared reports presence-with-empty-value: the attribute exists in the
// descriptor but holds no literal, marking a field recorded in the stream.
func declared(attr *string) bool {
	return attr != nil && *attr == ""
}
