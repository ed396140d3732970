package fallback

import (
	_ "embed"
	"fmt"

	"github.com/tidwall/gjson"
)

//go:embed data/fallback.json
var bundledJSON []byte

// Dataset is a versioned snapshot of domain records in API shape, shown when
// the remote cannot be read.
type Dataset struct {
	Version string
	root    gjson.Result
}

// Bundled returns the snapshot compiled into the binary.
func Bundled() Dataset {
	ds, err := ParseDataset(bundledJSON)
	if err != nil {
		panic(fmt.Sprintf("fallback: bundled dataset: %v", err))
	}
	return ds
}

// ParseDataset reads a snapshot. It must be a JSON object with a version.
func ParseDataset(raw []byte) (Dataset, error) {
	if !gjson.ValidBytes(raw) {
		return Dataset{}, fmt.Errorf("dataset is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Dataset{}, fmt.Errorf("dataset must be an object")
	}
	version := root.Get("version").String()
	if version == "" {
		return Dataset{}, fmt.Errorf("dataset has no version")
	}
	return Dataset{Version: version, root: root}, nil
}

// Records returns the raw records stored under plural ("clientes", ...).
// Unknown collections are empty, never nil.
func (d Dataset) Records(plural string) []gjson.Result {
	list := d.root.Get(plural)
	if !list.IsArray() || len(list.Array()) == 0 {
		return []gjson.Result{}
	}
	return list.Array()
}
