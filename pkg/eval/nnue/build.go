package nnue

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
)

const defaultWeightsName = "zephyr.znn"

var once sync.Once
var defaultWeights *Weights
var defaultErr error

// NewDefaultEvaluationService loads the network weights from the first
// location that has them: $ZEPHYR_NNUE, next to the executable, or
// ~/chess. The blob is loaded once and shared by all services.
func NewDefaultEvaluationService() (*EvaluationService, error) {
	once.Do(func() {
		var paths []string
		if env := os.Getenv("ZEPHYR_NNUE"); env != "" {
			paths = append(paths, mapPath(env))
		}
		paths = append(paths,
			mapPath("./"+defaultWeightsName),
			mapPath("~/chess/"+defaultWeightsName))
		for _, path := range paths {
			var w, err = LoadWeightsFile(path)
			if err == nil {
				defaultWeights = w
				return
			}
			defaultErr = err
		}
		defaultErr = fmt.Errorf("network weights not found: %w", defaultErr)
	})
	if defaultWeights == nil {
		return nil, defaultErr
	}
	return NewEvaluationService(defaultWeights), nil
}

func mapPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		curUser, err := user.Current()
		if err != nil {
			return path
		}
		return filepath.Join(curUser.HomeDir, strings.TrimPrefix(path, "~/"))
	}
	if strings.HasPrefix(path, "./") {
		var exePath, err = os.Executable()
		if err != nil {
			return path
		}
		return filepath.Join(filepath.Dir(exePath), strings.TrimPrefix(path, "./"))
	}
	return path
}
