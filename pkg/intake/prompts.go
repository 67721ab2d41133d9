package intake

import (
	"fmt"
	"path/filepath"

	"github.com/papercomputeco/intake/pkg/store"
)

// Prompts maps prompt file names to their content.
type Prompts map[string]string

// LoadPrompts reads every prompt template from dir. A missing template is an
// error so a run never starts with a stage it cannot finish.
func LoadPrompts(dir string) (Prompts, error) {
	p := make(Prompts, len(PromptFiles()))
	for _, name := range PromptFiles() {
		content, err := store.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("could not load prompt template %s: %w", name, err)
		}
		p[name] = content
	}
	return p, nil
}

// Get returns the template for name.
func (p Prompts) Get(name string) (string, error) {
	content, ok := p[name]
	if !ok {
		return "", fmt.Errorf("prompt template %s is not loaded", name)
	}
	return content, nil
}
