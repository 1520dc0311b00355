// Package catalog holds the detailing packages and vehicle surcharges offered
// by the business. The data is fixed at build time.
package catalog

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryInterior Category = "interior"
	CategoryExterior Category = "exterior"
	CategoryInNOut   Category = "in-n-out"
)

type VehicleType string

const (
	VehicleSedan VehicleType = "sedan"
	VehicleSUV   VehicleType = "suv"
	VehicleVan   VehicleType = "van"
)

type Package struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	BasePrice   int64    `json:"basePrice"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}

type VehicleSurcharge struct {
	VehicleTypeID VehicleType `json:"vehicleTypeId"`
	Label         string      `json:"label"`
	Surcharge     int64       `json:"surcharge"`
}

var packages = []Package{
	{ID: "1", Name: "Interior Express", BasePrice: 129, Category: CategoryInterior, Description: "Vacuum, wipe-down of hard surfaces and windows"},
	{ID: "2", Name: "Interior Premium", BasePrice: 189, Category: CategoryInterior, Description: "Shampoo of seats and carpets, leather conditioning, steam clean"},
	{ID: "3", Name: "Exterior Express", BasePrice: 99, Category: CategoryExterior, Description: "Hand wash, wheels and tires, spray wax"},
	{ID: "4", Name: "Exterior Premium", BasePrice: 169, Category: CategoryExterior, Description: "Clay bar, one-step polish, sealant"},
	{ID: "5", Name: "In-N-Out Express", BasePrice: 209, Category: CategoryInNOut, Description: "Interior Express and Exterior Express together"},
	{ID: "6", Name: "In-N-Out Premium", BasePrice: 329, Category: CategoryInNOut, Description: "Interior Premium and Exterior Premium together"},
}

var surcharges = []VehicleSurcharge{
	{VehicleTypeID: VehicleSedan, Label: "Sedan / Coupe", Surcharge: 0},
	{VehicleTypeID: VehicleSUV, Label: "SUV / Truck", Surcharge: 20},
	{VehicleTypeID: VehicleVan, Label: "Minivan / Van", Surcharge: 40},
}

// Packages returns every package in display order.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// ByCategory returns the packages of one category in display order.
func ByCategory(c Category) []Package {
	var out []Package
	for _, p := range packages {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Surcharges returns every vehicle surcharge.
func Surcharges() []VehicleSurcharge {
	out := make([]VehicleSurcharge, len(surcharges))
	copy(out, surcharges)
	return out
}

// Lookup finds a package by id.
func Lookup(id string) (Package, bool) {
	id = strings.TrimSpace(id)
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// Surcharge returns the surcharge for a vehicle type.
func Surcharge(v VehicleType) (int64, bool) {
	for _, s := range surcharges {
		if s.VehicleTypeID == v {
			return s.Surcharge, true
		}
	}
	return 0, false
}

// Selection is a priced package+vehicle choice, ready to be added to a cart.
type Selection struct {
	PackageID   string
	PackageName string
	BasePrice   int64
	VehicleType VehicleType
	FinalPrice  int64
}

// Quote prices a package for a vehicle type: base price plus surcharge.
func Quote(packageID string, vehicle VehicleType) (Selection, error) {
	p, ok := Lookup(packageID)
	if !ok {
		return Selection{}, fmt.Errorf("unknown package %q", packageID)
	}
	extra, ok := Surcharge(vehicle)
	if !ok {
		return Selection{}, fmt.Errorf("unknown vehicle type %q", vehicle)
	}
	return Selection{
		PackageID:   p.ID,
		PackageName: p.Name,
		BasePrice:   p.BasePrice,
		VehicleType: vehicle,
		FinalPrice:  p.BasePrice + extra,
	}, nil
}
