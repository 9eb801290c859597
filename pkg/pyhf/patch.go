package pyhf

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/pyhf/hfval/pkg/errors"
)

// Operation is one RFC 6902 operation.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
	From  string          `json:"from,omitempty"`
}

// Sample decodes the operation value as a sample. ok is false when the
// value is absent or does not carry a named sample.
func (o Operation) Sample() (Sample, bool) {
	var sample Sample
	if len(o.Value) == 0 {
		return sample, false
	}
	if err := json.Unmarshal(o.Value, &sample); err != nil {
		return Sample{}, false
	}
	if sample.Name == "" || sample.Data == nil {
		return Sample{}, false
	}
	return sample, true
}

// ChannelIndex returns the channel index addressed by a /channels/<i>/... path.
func (o Operation) ChannelIndex() (int, error) {
	parts := strings.Split(strings.TrimPrefix(o.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "channels" {
		return 0, &errors.ValidationError{Field: "path", Value: o.Path, Message: "path does not address a channel"}
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return 0, &errors.ValidationError{Field: "path", Value: o.Path, Message: "channel index is not a non-negative integer"}
	}
	return idx, nil
}

// Patch is a JSON patch with pyhf patch-set metadata.
type Patch struct {
	Metadata   PatchMetadata `json:"metadata"`
	Operations []Operation   `json:"patch"`
}

// PatchMetadata names a patch and records its signal-model values.
type PatchMetadata struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// SignalName returns the name of the sample added by the first operation,
// which is how a signal hypothesis is identified. ok is false for patches
// that do not start with a sample.
func (p Patch) SignalName() (string, bool) {
	if len(p.Operations) == 0 {
		return "", false
	}
	sample, ok := p.Operations[0].Sample()
	if !ok {
		return "", false
	}
	return sample.Name, true
}

// JSON encodes the operations as an RFC 6902 document.
func (p Patch) JSON() ([]byte, error) {
	return json.Marshal(p.Operations)
}

// PatchSet is a pyhf patch set: one patch per signal hypothesis.
type PatchSet struct {
	Metadata PatchSetMetadata `json:"metadata"`
	Patches  []Patch          `json:"patches"`
	Version  string           `json:"version"`
}

// PatchSetMetadata describes a patch set.
type PatchSetMetadata struct {
	Description string            `json:"description"`
	Digests     map[string]string `json:"digests"`
	Labels      []string          `json:"labels"`
	References  map[string]string `json:"references,omitempty"`
}

// LoadPatchSet reads a patch set file.
func LoadPatchSet(path string) (*PatchSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var ps PatchSet
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if len(ps.Patches) == 0 {
		return nil, &errors.ValidationError{Field: "patches", Value: path, Message: "patch set has no patches"}
	}
	for i, p := range ps.Patches {
		if p.Metadata.Name == "" {
			return nil, &errors.ValidationError{Field: "patches", Value: i, Message: "patch without a name"}
		}
		if len(ps.Metadata.Labels) > 0 && len(p.Metadata.Values) != len(ps.Metadata.Labels) {
			return nil, &errors.ValidationError{
				Field:   "values",
				Value:   p.Metadata.Name,
				Message: "patch values do not match patch set labels",
			}
		}
	}
	return &ps, nil
}

// Patch returns the named patch.
func (ps *PatchSet) Patch(name string) (*Patch, error) {
	for i := range ps.Patches {
		if ps.Patches[i].Metadata.Name == name {
			return &ps.Patches[i], nil
		}
	}
	return nil, errors.NewNotFoundError("patch", name)
}

// LoadPatch reads a plain RFC 6902 patch file.
func LoadPatch(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if _, err := jsonpatch.DecodePatch(data); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return data, nil
}

// ApplyPatch applies an RFC 6902 patch document to a workspace and returns
// the validated result.
func ApplyPatch(ws *Workspace, patch []byte) (*Workspace, error) {
	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, errors.WrapParse("json", "patch", err)
	}
	doc, err := decoded.Apply(ws.Bytes())
	if err != nil {
		return nil, errors.WrapResource("apply", "patch", "", err)
	}
	return DecodeWorkspace(doc)
}

// Apply applies this patch to a workspace.
func (p Patch) Apply(ws *Workspace) (*Workspace, error) {
	doc, err := p.JSON()
	if err != nil {
		return nil, err
	}
	patched, err := ApplyPatch(ws, doc)
	if err != nil {
		return nil, errors.WrapResource("apply", "patch", p.Metadata.Name, err)
	}
	return patched, nil
}
