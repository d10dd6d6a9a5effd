package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}

// PresetManager reads voice presets from a directory holding a
// "_list.json" index and one "<name>.json" per voice.
type PresetManager struct {
	dir  string
	list []string
}

// NewPresetManager ...
func NewPresetManager(dir string) *PresetManager {
	return &PresetManager{
		dir: dir,
	}
}

// List returns the preset names in index order.
func (pm *PresetManager) List() ([]string, error) {
	if pm.list == nil {
		if err := pm.loadList(); err != nil {
			return nil, err
		}
	}
	return pm.list, nil
}

// Load reads one preset. The voice takes the preset name when the file has none.
func (pm *PresetManager) Load(name string) (*VoiceParams, error) {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	v := newVoiceParams(name)
	if err := v.applyJSON(bytes); err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	if v.Name == "" {
		v.Name = name
	}
	return v, nil
}

// ApplyTo appends every listed preset to c.Voices.
func (pm *PresetManager) ApplyTo(c *Config) error {
	names, err := pm.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		v, err := pm.Load(name)
		if err != nil {
			return err
		}
		c.Voices = append(c.Voices, v)
	}
	return nil
}

// Save writes v as a preset and adds it to the index.
func (pm *PresetManager) Save(v *VoiceParams) error {
	names, err := pm.List()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(filepath.Join(pm.dir, v.Name+".json"), v.toJSON(), 0644); err != nil {
		return err
	}
	for _, name := range names {
		if name == v.Name {
			return nil
		}
	}
	pm.list = append(names, v.Name)
	return pm.saveList()
}

func (pm *PresetManager) loadList() error {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if err != nil {
		return fmt.Errorf("preset list: %w", err)
	}
	var metaListJSON presetMetaListJSON
	if err := json.Unmarshal(bytes, &metaListJSON); err != nil {
		return fmt.Errorf("preset list: %w", err)
	}
	pm.list = make([]string, len(metaListJSON.Items))
	for i, item := range metaListJSON.Items {
		pm.list[i] = item.Name
	}
	return nil
}

func (pm *PresetManager) saveList() error {
	metaListJSON := presetMetaListJSON{Items: make([]presetMetaJSON, len(pm.list))}
	for i, name := range pm.list {
		metaListJSON.Items[i] = presetMetaJSON{Name: name}
	}
	return os.WriteFile(filepath.Join(pm.dir, "_list.json"), toRawMessage(&metaListJSON), 0644)
}
