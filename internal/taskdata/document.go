// Package taskdata models and indexes ISO 11783 task-data documents.
//
// A task file is a TASKDATA.XML document plus external fragment files spliced
// in by reference, describing devices, their process-data channels, products,
// fields, farms and the logged tasks whose measurements live in companion
// binary time-log files.
package taskdata

import "encoding/xml"

// Document is the parsed ISO 11783 task-data document. After merging, the
// external file references are gone and all top-level tables are complete.
type Document struct {
	XMLName xml.Name `xml:"ISO11783_TaskData"`

	Devices  []Device  `xml:"DVC"`
	Products []Product `xml:"PDT"`
	Fields   []Field   `xml:"PFD"`
	Farms    []Farm    `xml:"FRM"`
	Tasks    []Task    `xml:"TSK"`

	// ExternalRefs name fragment files (XFR) that still need merging.
	ExternalRefs []ExternalRef `xml:"XFR"`
}

// ExternalRef points to an external fragment file by base name, e.g. "PDT00001".
type ExternalRef struct {
	Filename string `xml:"A,attr"`
}

// Device describes one machine (DVC) with its elements and process data.
type Device struct {
	ID          string          `xml:"A,attr"`
	Designator  string          `xml:"B,attr"`
	ClientName  string          `xml:"D,attr"`
	Elements    []DeviceElement `xml:"DET"`
	ProcessData []ProcessData   `xml:"DPD"`
}

// DeviceElement is a physical or logical sub-part of a device (DET).
// Its object references (DOR) name the process-data objects it can report.
type DeviceElement struct {
	ID         string      `xml:"A,attr"`
	ObjectID   string      `xml:"B,attr"`
	Type       string      `xml:"C,attr"`
	Designator string      `xml:"D,attr"`
	Number     string      `xml:"E,attr"`
	ObjectRefs []ObjectRef `xml:"DOR"`
}

// ObjectRef links a device element to one of its device's objects (DOR).
type ObjectRef struct {
	ObjectID string `xml:"A,attr"`
}

// ProcessData declares a DDI a device can report and its designator (DPD).
type ProcessData struct {
	ObjectID   string `xml:"A,attr"`
	DDI        string `xml:"B,attr"` // 4 hex digits
	Designator string `xml:"E,attr"`
}

// Product is a product-type definition (PDT).
type Product struct {
	ID         string `xml:"A,attr"`
	Designator string `xml:"B,attr"`
}

// Field is a partfield definition (PFD).
type Field struct {
	ID         string `xml:"A,attr"`
	Designator string `xml:"C,attr"`
}

// Farm definition (FRM).
type Farm struct {
	ID         string `xml:"A,attr"`
	Designator string `xml:"B,attr"`
}

// StatusPlanned marks a task that was planned but never executed; such tasks
// carry no time logs.
const StatusPlanned = "1"

// Task is one work order (TSK), planned or logged.
type Task struct {
	ID         string `xml:"A,attr"`
	Designator string `xml:"B,attr"`
	FarmRef    string `xml:"D,attr"`
	FieldRef   string `xml:"E,attr"`
	Status     string `xml:"G,attr"`

	Allocations []DeviceAllocation `xml:"DAN"`
	Zones       []TreatmentZone    `xml:"TZN"`
	TimeLogs    []TimeLogRef       `xml:"TLG"`
}

// Planned reports whether the task never ran and has no binary data.
func (t *Task) Planned() bool {
	return t.Status == StatusPlanned
}

// DeviceAllocation binds a task to a device (DAN).
type DeviceAllocation struct {
	DeviceRef string `xml:"C,attr"`
}

// TreatmentZone groups per-zone process-data values (TZN).
type TreatmentZone struct {
	Values []ZoneValue `xml:"PDV"`
}

// ZoneValue is a process-data variable inside a treatment zone (PDV). DDI is
// the channel code the value applies to; ProductRef names the product used.
type ZoneValue struct {
	DDI        string `xml:"A,attr"`
	Value      string `xml:"B,attr"`
	ProductRef string `xml:"C,attr"`
}

// TimeLogRef names one logged run's file pair, e.g. "TLG00001" (TLG).
type TimeLogRef struct {
	Filename string `xml:"A,attr"`
}

// TimeLogHeader is the per-run header descriptor loaded from TLGnnnnn.XML.
// Attribute presence is significant: an attribute declared with an empty
// value marks the matching field as present in the binary stream, which is
// why the position attributes are pointers.
type TimeLogHeader struct {
	XMLName xml.Name `xml:"TIM"`

	Start    *string         `xml:"A,attr"`
	Position *PositionHeader `xml:"PTN"`
	Values   []ValueDecl     `xml:"DLV"`
}

// PositionHeader declares which position fields each record carries (PTN).
type PositionHeader struct {
	North      *string `xml:"A,attr"`
	East       *string `xml:"B,attr"`
	Up         *string `xml:"C,attr"`
	Status     *string `xml:"D,attr"`
	PDOP       *string `xml:"E,attr"`
	HDOP       *string `xml:"F,attr"`
	Satellites *string `xml:"G,attr"`
	GpsUtcTime *string `xml:"H,attr"`
	GpsUtcDate *string `xml:"I,attr"`
}

// ValueDecl declares one logged channel (DLV): its DDI, the literal start
// value, and the reporting device element.
type ValueDecl struct {
	DDI        string `xml:"A,attr"`
	Value      string `xml:"B,attr"`
	ElementRef string `xml:"C,attr"`
}

// ParseDocument decodes a task-data document from XML bytes.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseTimeLogHeader decodes a run's header descriptor from XML bytes.
func ParseTimeLogHeader(data []byte) (*TimeLogHeader, error) {
	var hdr TimeLogHeader
	if err := xml.Unmarshal(data, &hdr); err != nil {
		return nil, err
	}
	return &hdr, nil
}
