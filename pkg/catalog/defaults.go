package catalog

import (
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/layout"
)

// defaultMachines is the fixed asset list of the training cell.
var defaultMachines = []Machine{
	{ID: "1081579", Name: "Furadeira S.A. Yadoya", Type: "Furadeira de Bancada", Model: "FY-B 25 E (Série 0813) - 220V"},
	{ID: "1081578", Name: "Furadeira S.A. Yadoya", Type: "Furadeira de Bancada", Model: "FY-B 25 E (Série 0713) - 220V"},
	{ID: "465067", Name: "Torno Nardini", Type: "Torno Convencional", Model: "MC220AE (Série 465067) - 220V"},
	{ID: "465059", Name: "Torno Nardini", Type: "Torno Convencional", Model: "MC220AE (Série 465059) - 220V"},
	{ID: "779282", Name: "Torno Nardini", Type: "Torno Convencional", Model: "MC220AE (Série 779282) - 220V"},
	{ID: "463285", Name: "Serra Fita", Type: "Serra de Fita", Model: "Standardizata"},
	{ID: "1124424", Name: "Torno ROMI", Type: "Torno CNC", Model: "T240 (Série 016-018306-452) - 220V"},
	{ID: "1124425", Name: "Torno ROMI", Type: "Torno CNC", Model: "T240 (Série 016-018309-452) - 220V"},
	{ID: "1124426", Name: "Torno ROMI", Type: "Torno CNC", Model: "T240 (Série 016-018310-452) - 220V"},
	{ID: "1124427", Name: "Torno ROMI", Type: "Torno CNC", Model: "T240 (Série 016-018308-452) - 220V"},
	{ID: "1085926", Name: "Fresas", Type: "Fresadora Universal", Model: "KonE Standard"},
	{ID: "837073", Name: "Fresas", Type: "Fresadora", Model: "Deb Maq Padrão"},
	{ID: "837074", Name: "Fresas", Type: "Fresadora", Model: "Deb Maq Padrão"},
	{ID: "BD-001", Name: "Bancadas Didáticas", Type: "Bancada", Model: "Bancada de Ajustagem 01"},
	{ID: "BD-002", Name: "Bancadas Didáticas", Type: "Bancada", Model: "Bancada de Ajustagem 02"},
	{ID: "BD-003", Name: "Bancadas Didáticas", Type: "Bancada", Model: "Bancada de Ajustagem 03"},
	{ID: "BD-004", Name: "Bancadas Didáticas", Type: "Bancada", Model: "Bancada de Ajustagem 04"},
	{ID: "RT-001", Name: "Retífica", Type: "Retífica Plana", Model: "Ferdimat"},
	{ID: "ES-001", Name: "Esmeril", Type: "Moto Esmeril", Model: "Industrial 2CV"},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultMachines)
	if err != nil {
		panic("catalog: invalid built-in machines: " + err.Error())
	}
	return c
}

func seed(ref, label string, x, y float64, size layout.SizeClass) layout.ItemSpec {
	return layout.ItemSpec{
		Kind:        layout.KindMachine,
		ReferenceID: ref,
		DisplayText: label,
		Position:    geom.V(x, y),
		SizeClass:   size,
	}
}

func bench(ref string, x, y float64) layout.ItemSpec {
	s := seed(ref, "BANCADA", x, y, layout.SizeMedium)
	s.SizeOverride = &geom.Size{W: 110}
	return s
}

// DefaultLayout returns the floor plan a fresh session starts with.
func DefaultLayout() []layout.ItemSpec {
	return []layout.ItemSpec{
		// Left wall.
		seed("RT-001", "RETÍFICA", 50, 50, layout.SizeMedium),
		seed("1081579", "FURADEIRA", 50, 130, layout.SizeSmall),
		seed("1081578", "FURADEIRA", 50, 190, layout.SizeSmall),

		seed("463285", "SERRA", 176, 224, layout.SizeMedium),
		seed("ES-001", "ESMERIL", 176, 272, layout.SizeMedium),

		seed("1085926", "FRESAS", 384, 16, layout.SizeMedium),
		seed("837073", "FRESAS", 474, 16, layout.SizeMedium),
		seed("837074", "FRESAS", 564, 16, layout.SizeMedium),

		bench("BD-001", 384, 90),
		bench("BD-002", 504, 90),
		bench("BD-003", 384, 150),
		bench("BD-004", 504, 150),

		{
			Kind:         layout.KindLabel,
			DisplayText:  "ARMÁRIO DE FERRAMENTAS",
			Position:     geom.V(384, 220),
			SizeOverride: &geom.Size{W: 260, H: 50},
			SizeClass:    layout.SizeLarge,
		},

		// Lathes, two rows.
		seed("465067", "TORNO", 384, 290, layout.SizeSmall),
		seed("465059", "TORNO", 444, 290, layout.SizeSmall),
		seed("779282", "TORNO", 504, 290, layout.SizeSmall),
		seed("1124424", "TORNO", 564, 290, layout.SizeSmall),
		seed("1124425", "TORNO", 384, 360, layout.SizeSmall),
		seed("1124426", "TORNO", 444, 360, layout.SizeSmall),
		seed("1124427", "TORNO", 504, 360, layout.SizeSmall),
	}
}
