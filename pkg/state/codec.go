package state

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

// Build creates the snapshot for the specs a run retained. Paths are
// relative to home; managed files are only recorded for open specs.
func Build(retained []types.RetainedSpec) types.AppliedState {
	st := types.AppliedState{Applied: make([]types.AppliedLinkRecord, 0, len(retained))}
	for _, r := range retained {
		if r.Spec.Open {
			st.Applied = append(st.Applied, types.NewOpenRecord(r.Spec.From, r.Destination, r.ManagedFiles))
			continue
		}
		st.Applied = append(st.Applied, types.NewClosedRecord(r.Spec.From, r.Destination))
	}
	return st
}

// Encode renders a snapshot as YAML.
func Encode(st types.AppliedState) ([]byte, error) {
	st = normalize(st)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return nil, errors.Wrap(err, errors.ErrStateWrite, "failed to encode state")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStateWrite, "failed to encode state")
	}
	return buf.Bytes(), nil
}

// Decode parses a snapshot. Empty input is the empty snapshot; anything
// unparsable or inconsistent is STATE_CORRUPT.
func Decode(data []byte) (types.AppliedState, error) {
	var st types.AppliedState
	if len(bytes.TrimSpace(data)) == 0 {
		return normalize(st), nil
	}

	if err := yaml.Unmarshal(data, &st); err != nil {
		return types.AppliedState{}, errors.Wrap(err, errors.ErrStateCorrupt, "state is not valid YAML")
	}
	if err := st.Validate(); err != nil {
		return types.AppliedState{}, errors.Wrap(err, errors.ErrStateCorrupt, "state is inconsistent")
	}
	return normalize(st), nil
}

func normalize(st types.AppliedState) types.AppliedState {
	if st.Applied == nil {
		st.Applied = []types.AppliedLinkRecord{}
	}
	for i := range st.Applied {
		if st.Applied[i].ManagedFiles == nil {
			st.Applied[i].ManagedFiles = []string{}
		}
	}
	return st
}
