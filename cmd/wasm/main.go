//go:build js && wasm

// Command wasm exposes the eco-speed advisor to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	runAdvisor(jsonString) -> jsonString
//
// The input and output are JSON-encoded Input and Report respectively,
// matching the same contract used by the CLI and the HTTP API.
package main

import (
	"syscall/js"

	"github.com/cxd309/ecospeed/internal/engine"
)

func main() {
	js.Global().Set("runAdvisor", js.FuncOf(runAdvisor))
	select {} // keep the WASM module alive until the page is closed
}

func runAdvisor(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	// One worker: the browser runtime is single-threaded.
	result, err := engine.RunJSON(args[0].String(), engine.WithWorkers(1))
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}
