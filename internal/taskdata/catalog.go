package taskdata

import "errors"

// ErrNotFound is returned when a required single-match lookup finds zero or
// multiple entries for an identifier.
var ErrNotFound = errors.New("no single match in task-data document")

type elementEntry struct {
	device  *Device
	element *DeviceElement
}

// Catalog is a read-only index over a merged task-data document. Identifiers
// are opaque, case-sensitive tokens taken exactly as declared in the schema.
type Catalog struct {
	doc *Document

	products map[string]string
	farms    map[string][]*Farm
	fields   map[string][]*Field
	devices  map[string][]*Device
	elements map[string][]elementEntry
}

// NewCatalog builds the lookup index for a merged document. The catalog holds
// references into the document; neither is mutated afterwards.
func NewCatalog(doc *Document) *Catalog {
	c := &Catalog{
		doc:      doc,
		products: make(map[string]string),
		farms:    make(map[string][]*Farm),
		fields:   make(map[string][]*Field),
		devices:  make(map[string][]*Device),
		elements: make(map[string][]elementEntry),
	}

	for i := range doc.Products {
		p := &doc.Products[i]
		c.products[p.ID] = p.Designator
	}
	for i := range doc.Farms {
		f := &doc.Farms[i]
		c.farms[f.ID] = append(c.farms[f.ID], f)
	}
	for i := range doc.Fields {
		f := &doc.Fields[i]
		c.fields[f.ID] = append(c.fields[f.ID], f)
	}
	for i := range doc.Devices {
		d := &doc.Devices[i]
		c.devices[d.ID] = append(c.devices[d.ID], d)
		for j := range d.Elements {
			e := &d.Elements[j]
			c.elements[e.ID] = append(c.elements[e.ID], elementEntry{device: d, element: e})
		}
	}

	return c
}

// Tasks returns the document's tasks in document order.
func (c *Catalog) Tasks() []Task {
	return c.doc.Tasks
}

// FarmName resolves a task's farm reference to its designator. A document
// with no farm table yields an empty name; a populated table with no single
// match for the reference is ErrNotFound.
func (c *Catalog) FarmName(ref string) (string, error) {
	if len(c.farms) == 0 || ref == "" {
		return "", nil
	}
	matches := c.farms[ref]
	if len(matches) != 1 {
		return "", ErrNotFound
	}
	return matches[0].Designator, nil
}

// FieldName resolves a task's field reference, with the same semantics as
// FarmName.
func (c *Catalog) FieldName(ref string) (string, error) {
	if len(c.fields) == 0 || ref == "" {
		return "", nil
	}
	matches := c.fields[ref]
	if len(matches) != 1 {
		return "", ErrNotFound
	}
	return matches[0].Designator, nil
}

// DeviceByRef resolves a device reference to exactly one device.
func (c *Catalog) DeviceByRef(ref string) (*Device, error) {
	matches := c.devices[ref]
	if len(matches) != 1 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

// ElementByRef resolves a device-element reference to its element and owning
// device. Zero or multiple matches report !ok.
func (c *Catalog) ElementByRef(ref string) (*Device, *DeviceElement, bool) {
	matches := c.elements[ref]
	if len(matches) != 1 {
		return nil, nil, false
	}
	return matches[0].device, matches[0].element, true
}

// ProductNames builds the product mapping for a task. The direct mapping is
// product id to designator from the PDT table. When the task carries
// treatment-zone values and the direct map is non-empty, the mapping is
// rebuilt keyed by each zone value's DDI code, resolved through the direct
// map. A zone value whose product reference is absent or unknown abandons the
// rebuild entirely and the direct map is returned unchanged; real-world task
// files routinely omit the optional product reference attributes, and a
// partial rebuild would silently mix the two keyspaces.
func (c *Catalog) ProductNames(zones []TreatmentZone) map[string]string {
	direct := make(map[string]string, len(c.products))
	for id, name := range c.products {
		direct[id] = name
	}

	if len(zones) == 0 || len(direct) == 0 {
		return direct
	}

	rebuilt := make(map[string]string)
	for _, zone := range zones {
		for _, v := range zone.Values {
			name, ok := direct[v.ProductRef]
			if !ok {
				return direct
			}
			rebuilt[v.DDI] = name
		}
	}
	if len(rebuilt) == 0 {
		return direct
	}
	return rebuilt
}
