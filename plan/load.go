package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fornellas/slogxt/log"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a plan from a yaml file.
func Load(ctx context.Context, path string) (*Plan, error) {
	_, logger := log.MustWithGroupAttrs(ctx, "🗃️ Loading plan", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	pln := &Plan{}
	if err := decoder.Decode(pln); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Message: fmt.Sprintf("%s: empty plan file", path)}
		}
		return nil, &ConfigError{Message: fmt.Sprintf("%s: %s", path, err.Error())}
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Message: fmt.Sprintf(
			"%s: plan file must contain a single document", path,
		)}
	}

	if err := pln.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Loaded", "steps", pln.Steps.Names())

	return pln, nil
}
