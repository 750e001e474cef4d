// Package catalog holds the static per-apartment service lists. The
// catalog is loaded once at startup and never mutated at runtime.
package catalog

import "komunalka/internal/core"

var apartments = []core.Apartment{
	{
		ID:      "khmelnytskogo",
		Name:    "Б.Хмельницького 8е/20",
		Address: "вул. Б.Хмельницького 8е, кв. 20",
		Services: []core.Service{
			{Name: "Світло День", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Світло Ніч", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 2.16},
			{Name: "Вода лічильник 1", Kind: core.Meter, Unit: "м³", UnitPrice: 31.36},
			{Name: "Газ", Kind: core.Meter, Unit: "м³", UnitPrice: 7.89},
			{Name: "Орендна плата", Kind: core.Fixed, Unit: "грн", FixedAmount: 9500},
			{Name: "АП Вода (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 38},
			{Name: "АП Газ (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 3.51},
			{Name: "Домофон", Kind: core.Fixed, Unit: "грн", FixedAmount: 70},
			{Name: "Інтернет", Kind: core.Fixed, Unit: "грн", FixedAmount: 260},
			{Name: "ЖЕУ", Kind: core.Fixed, Unit: "грн", FixedAmount: 328.92},
			{Name: "Сміття", Kind: core.Fixed, Unit: "грн", FixedAmount: 33.57},
			{Name: "АП Опалення", Kind: core.Fixed, Unit: "грн", FixedAmount: 35},
		},
	},
	{
		ID:      "mechnykova",
		Name:    "Мечнікова 5/20",
		Address: "вул. Мечнікова 5, кв. 20",
		Services: []core.Service{
			{Name: "Світло День", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Світло Ніч", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 2.16},
			{Name: "Вода", Kind: core.Meter, Unit: "м³", UnitPrice: 31.36},
			// Association fee: the entered value is the amount itself.
			{Name: "ОСББ", Kind: core.LumpSum, Unit: "грн"},
			{Name: "Орендна плата", Kind: core.Fixed, Unit: "грн", FixedAmount: 18500},
			{Name: "АП Вода (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 38},
			{Name: "Опалення в зимовий період", Kind: core.Seasonal, Unit: "грн", FixedAmount: 1200, WinterOnly: true},
		},
	},
	{
		ID:      "salakyna",
		Name:    "М. Салакунова 12/5",
		Address: "вул. М. Салакунова 12, кв. 5",
		Services: []core.Service{
			{Name: "Світло День", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Світло Ніч", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 2.16},
			{Name: "Вода лічильник 1", Kind: core.Meter, Unit: "м³", UnitPrice: 31.36},
			{Name: "Орендна плата", Kind: core.Fixed, Unit: "грн", FixedAmount: 10200},
			{Name: "ОСББ", Kind: core.Fixed, Unit: "грн", FixedAmount: 477.08},
			{Name: "АП Опалення", Kind: core.Fixed, Unit: "грн", FixedAmount: 27.42},
			{Name: "АП Вода (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 38},
		},
	},
	{
		ID:      "sevastopolska",
		Name:    "Севастопольська 67А/2",
		Address: "вул. Севастопольська 67А, кв. 2",
		Services: []core.Service{
			{Name: "Світло День", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Світло Ніч", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 2.16},
			{Name: "Вода лічильник 1", Kind: core.Meter, Unit: "м³", UnitPrice: 31.36},
			{Name: "Вода лічильник 2", Kind: core.Meter, Unit: "м³", UnitPrice: 31.36},
			{Name: "Газ", Kind: core.Meter, Unit: "м³", UnitPrice: 7.89},
			{Name: "АП Вода (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 38},
			{Name: "АП Газ (фікс)", Kind: core.Fixed, Unit: "грн", FixedAmount: 101.96},
		},
	},
}

// Apartments returns a copy of the catalog in display order.
func Apartments() []core.Apartment {
	out := make([]core.Apartment, len(apartments))
	copy(out, apartments)
	return out
}

// ByID returns the named apartment.
func ByID(id string) (core.Apartment, bool) {
	for _, apt := range apartments {
		if apt.ID == id {
			return apt, true
		}
	}
	return core.Apartment{}, false
}
