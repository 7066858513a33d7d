package timelog

import (
	"strconv"

	"github.com/croplog/taskdata-decoder/internal/taskdata"
)

// ChannelDescriptor identifies one recorded process-data quantity. The
// designators come from the schema and may be empty strings when the schema
// omits them; they are never absent.
type ChannelDescriptor struct {
	Name              string
	DeviceDesignator  string
	ElementDesignator string
	ElementNumber     string
	DDI               uint16
	Kind              ValueKind
}

// ParseDDI parses a data-dictionary identifier from its 4-hex-digit schema
// code. A malformed code degrades to 0 rather than failing.
func ParseDDI(code string) uint16 {
	n, err := strconv.ParseUint(code, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}

// ResolveChannel turns a binary channel reference, a device-element id plus
// DDI, into a typed descriptor. The process-data definition must both match
// the DDI and be among the element's declared object references; the double
// condition disambiguates devices exposing the same DDI on several elements.
//
// When the lookup finds zero or multiple candidates the pairing is demoted
// to an unnamed channel carrying the raw element reference, so no recorded
// data is ever dropped.
func ResolveChannel(cat *taskdata.Catalog, elementRef string, ddi uint16) ChannelDescriptor {
	dev, elem, ok := cat.ElementByRef(elementRef)
	if !ok {
		return unnamedChannel(elementRef, ddi)
	}

	refs := make(map[string]bool, len(elem.ObjectRefs))
	for _, ref := range elem.ObjectRefs {
		refs[ref.ObjectID] = true
	}

	var match *taskdata.ProcessData
	for i := range dev.ProcessData {
		pd := &dev.ProcessData[i]
		if ParseDDI(pd.DDI) != ddi || !refs[pd.ObjectID] {
			continue
		}
		if match != nil {
			return unnamedChannel(elementRef, ddi)
		}
		match = pd
	}
	if match == nil {
		return unnamedChannel(elementRef, ddi)
	}

	return ChannelDescriptor{
		Name:              match.Designator,
		DeviceDesignator:  dev.Designator,
		ElementDesignator: elem.Designator,
		ElementNumber:     elem.Number,
		DDI:               ddi,
		Kind:              KindInt32,
	}
}

func unnamedChannel(elementRef string, ddi uint16) ChannelDescriptor {
	return ChannelDescriptor{
		Name: elementRef,
		DDI:  ddi,
		Kind: KindInt32,
	}
}
