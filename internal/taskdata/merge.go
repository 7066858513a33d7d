package taskdata

// Merge combines a primary document with its external fragments into a new
// merged document. Fragments are keyed by the base filename their XFR marker
// declares. The inputs are not mutated; the result carries no XFR markers.
//
// Fragment tables are appended after the primary document's own entries, in
// XFR declaration order, which preserves the document order the rest of the
// decoder relies on.
func Merge(primary *Document, fragments map[string]*Document) *Document {
	merged := &Document{
		Devices:  append([]Device(nil), primary.Devices...),
		Products: append([]Product(nil), primary.Products...),
		Fields:   append([]Field(nil), primary.Fields...),
		Farms:    append([]Farm(nil), primary.Farms...),
		Tasks:    append([]Task(nil), primary.Tasks...),
	}

	for _, ref := range primary.ExternalRefs {
		frag, ok := fragments[ref.Filename]
		if !ok {
			continue
		}
		merged.Devices = append(merged.Devices, frag.Devices...)
		merged.Products = append(merged.Products, frag.Products...)
		merged.Fields = append(merged.Fields, frag.Fields...)
		merged.Farms = append(merged.Farms, frag.Farms...)
		merged.Tasks = append(merged.Tasks, frag.Tasks...)
	}

	return merged
}
