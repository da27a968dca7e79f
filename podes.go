// Package podes is the analytics core of the PODES 2024 Kota Batu village
// dashboard.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/podes/engine"
//	    "github.com/spektr-org/podes/schema"
//	)
//
//	reg := schema.MustLoad()
//	view := engine.NewSliceView(rows)
//	result, err := engine.Execute(engine.IndicatorQuery{
//	    Indicator: "kekuatan_sinyal",
//	    Kecamatan: []string{"Batu"},
//	}, view, reg)
//
// The engine takes village rows and an indicator registry and returns
// render-ready output: summary statistics, donut and histogram series,
// per-kecamatan cross-tabs, rankings and village comparisons. It never
// performs I/O. Rows come from the source package, the server package
// exposes everything over HTTP and cmd/podes wraps it in a CLI.
package podes
