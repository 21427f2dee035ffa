// Package evalbuilder constructs evaluators by name so binaries can
// share one -eval flag.
package evalbuilder

import (
	"fmt"
	"log"
	"sync"

	material "github.com/zephyrchess/zephyr/pkg/eval/material"
	nnue "github.com/zephyrchess/zephyr/pkg/eval/nnue"
	pesto "github.com/zephyrchess/zephyr/pkg/eval/pesto"
)

var warnOnce sync.Once

// Get returns a builder for the named evaluator. The empty name means
// the network evaluator with a fallback to pesto when no weights file
// can be found. Builders for unknown names panic when called.
func Get(key string) func() interface{} {
	return func() interface{} {
		switch key {
		case "":
			var e, err = nnue.NewDefaultEvaluationService()
			if err != nil {
				warnOnce.Do(func() {
					log.Println("fallback to pesto:", err)
				})
				return pesto.NewEvaluationService()
			}
			return e
		case "nnue":
			var e, err = nnue.NewDefaultEvaluationService()
			if err != nil {
				panic(err)
			}
			return e
		case "pesto":
			return pesto.NewEvaluationService()
		case "material":
			return material.NewEvaluationService()
		}
		panic(fmt.Errorf("bad eval %v", key))
	}
}
