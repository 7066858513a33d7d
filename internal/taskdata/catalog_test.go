package taskdata

import (
	"errors"
	"testing"
)

func catalogDoc() *Document {
	return &Document{
		Devices: []Device{
			{ID: "DVC-1", Designator: "Tractor", Elements: []DeviceElement{
				{ID: "DET-1", Designator: "Engine"},
			}},
		},
		Products: []Product{
			{ID: "PDT1", Designator: "Corn"},
			{ID: "PDT2", Designator: "Wheat"},
		},
		Fields: []Field{{ID: "PFD1", Designator: "North 40"}},
		Farms:  []Farm{{ID: "FRM1", Designator: "Home farm"}},
	}
}

func TestFarmAndFieldName(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	if name, err := cat.FarmName("FRM1"); err != nil || name != "Home farm" {
		t.Errorf("FarmName(FRM1) = %q, %v", name, err)
	}
	if name, err := cat.FieldName("PFD1"); err != nil || name != "North 40" {
		t.Errorf("FieldName(PFD1) = %q, %v", name, err)
	}

	// An empty reference is a task that simply names no farm.
	if name, err := cat.FarmName(""); err != nil || name != "" {
		t.Errorf("FarmName(\"\") = %q, %v", name, err)
	}

	// A populated table with no match is an error the caller reports.
	if _, err := cat.FarmName("FRM-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FarmName(FRM-404) = %v, want ErrNotFound", err)
	}
}

func TestFarmNameEmptyTable(t *testing.T) {
	cat := NewCatalog(&Document{})
	if name, err := cat.FarmName("FRM1"); err != nil || name != "" {
		t.Errorf("FarmName with no farm table = %q, %v, want empty and nil", name, err)
	}
}

func TestFarmNameDuplicateID(t *testing.T) {
	doc := catalogDoc()
	doc.Farms = append(doc.Farms, Farm{ID: "FRM1", Designator: "Other farm"})

	cat := NewCatalog(doc)
	if _, err := cat.FarmName("FRM1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FarmName with duplicate id = %v, want ErrNotFound", err)
	}
}

func TestDeviceByRef(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	dev, err := cat.DeviceByRef("DVC-1")
	if err != nil || dev.Designator != "Tractor" {
		t.Errorf("DeviceByRef(DVC-1) = %v, %v", dev, err)
	}
	if _, err := cat.DeviceByRef("DVC-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeviceByRef(DVC-404) = %v, want ErrNotFound", err)
	}
}

func TestElementByRef(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	dev, elem, ok := cat.ElementByRef("DET-1")
	if !ok || dev.ID != "DVC-1" || elem.Designator != "Engine" {
		t.Errorf("ElementByRef(DET-1) = %v, %v, %v", dev, elem, ok)
	}
	if _, _, ok := cat.ElementByRef("DET-404"); ok {
		t.Error("ElementByRef(DET-404) should not match")
	}
}

func TestProductNamesDirect(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	got := cat.ProductNames(nil)
	if len(got) != 2 || got["PDT1"] != "Corn" || got["PDT2"] != "Wheat" {
		t.Errorf("ProductNames(nil) = %v", got)
	}
}

func TestProductNamesRebuiltByDDI(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	zones := []TreatmentZone{
		{Values: []ZoneValue{
			{DDI: "0001", Value: "5", ProductRef: "PDT1"},
			{DDI: "0006", Value: "9", ProductRef: "PDT2"},
		}},
	}

	got := cat.ProductNames(zones)
	if len(got) != 2 || got["0001"] != "Corn" || got["0006"] != "Wheat" {
		t.Errorf("rebuilt product map = %v", got)
	}
}

func TestProductNamesUnknownRefAbandonsRebuild(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	// One resolvable reference and one dangling one: the rebuild is
	// abandoned entirely rather than returning a mixed keyspace.
	zones := []TreatmentZone{
		{Values: []ZoneValue{
			{DDI: "0001", ProductRef: "PDT1"},
			{DDI: "0006", ProductRef: "PDT-404"},
		}},
	}

	got := cat.ProductNames(zones)
	if got["PDT1"] != "Corn" || got["PDT2"] != "Wheat" {
		t.Errorf("fallback product map = %v, want direct map", got)
	}
	if _, ok := got["0001"]; ok {
		t.Errorf("fallback product map = %v, contains rebuilt key", got)
	}
}

func TestProductNamesMissingRefAbandonsRebuild(t *testing.T) {
	cat := NewCatalog(catalogDoc())

	// An omitted product reference resolves to nothing, which abandons the
	// rebuild the same way a dangling reference does: the zone values name
	// products or the rebuild does not happen at all.
	zones := []TreatmentZone{
		{Values: []ZoneValue{
			{DDI: "0001", Value: "5", ProductRef: "PDT1"},
			{DDI: "0006", Value: "9"},
		}},
	}

	got := cat.ProductNames(zones)
	if got["PDT1"] != "Corn" || got["PDT2"] != "Wheat" || len(got) != 2 {
		t.Errorf("product map = %v, want direct map", got)
	}
	if _, ok := got["0001"]; ok {
		t.Errorf("product map = %v, partially rebuilt", got)
	}
}

func TestProductNamesNoProducts(t *testing.T) {
	cat := NewCatalog(&Document{})
	zones := []TreatmentZone{
		{Values: []ZoneValue{{DDI: "0001", ProductRef: "PDT1"}}},
	}
	if got := cat.ProductNames(zones); len(got) != 0 {
		t.Errorf("product map = %v, want empty", got)
	}
}
