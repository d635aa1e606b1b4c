package state_test

import (
	"testing"

	"github.com/arthur-debert/dotlinks/pkg/errors"
	"github.com/arthur-debert/dotlinks/pkg/state"
	"github.com/arthur-debert/dotlinks/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	retained := []types.RetainedSpec{
		{Spec: types.LinkSpec{From: "nvim", To: ".config/nvim"}, Destination: ".config/nvim"},
		{
			Spec:         types.LinkSpec{From: "foo", Open: true},
			Destination:  "foo",
			ManagedFiles: []string{"/home/dex/foo/a", "/home/dex/foo/b"},
		},
	}

	st := state.Build(retained)

	assert.Equal(t, []types.AppliedLinkRecord{
		{Source: "nvim", Path: ".config/nvim", ManagedFiles: []string{}},
		{Source: "foo", Path: "foo", Open: true, ManagedFiles: []string{"/home/dex/foo/a", "/home/dex/foo/b"}},
	}, st.Applied)
	require.NoError(t, st.Validate())
}

func TestDecodeKnownDocument(t *testing.T) {
	doc := `applied:
  - source: nvim
    path: .config/nvim
    open: false
    managed_files: []
  - source: polybar
    path: .config/polybar
    open: true
    managed_files: [/home/dex/.config/polybar/config.ini]
`
	st, err := state.Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []types.AppliedLinkRecord{
		{Source: "nvim", Path: ".config/nvim", ManagedFiles: []string{}},
		{Source: "polybar", Path: ".config/polybar", Open: true, ManagedFiles: []string{"/home/dex/.config/polybar/config.ini"}},
	}, st.Applied)
}

func TestDecodeOlderDocumentWithoutManagedFiles(t *testing.T) {
	st, err := state.Decode([]byte("applied:\n- source: .bashrc\n  path: .bashrc\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{}, st.Applied[0].ManagedFiles)
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n"} {
		st, err := state.Decode([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, st.Applied)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := map[string]string{
		"not yaml":                "applied: [\n",
		"wrong shape":             "applied: 12\n",
		"duplicate source":        "applied:\n- {source: a, path: a}\n- {source: a, path: b}\n",
		"closed without path":     "applied:\n  - source: foo\n    open: false\n",
		"closed with empty path":  "applied:\n- {source: foo, path: \"\"}\n",
		"closed at home":          "applied:\n- {source: foo, path: .}\n",
		"closed at home slash":    "applied:\n- {source: foo, path: ./}\n",
		"closed absolute":         "applied:\n- {source: foo, path: /etc/passwd}\n",
		"closed escaping":         "applied:\n- {source: foo, path: ../other/.bashrc}\n",
		"closed climbing to home": "applied:\n- {source: foo, path: a/..}\n",
		"open relative managed":   "applied:\n- {source: home, path: ., open: true, managed_files: [.bashrc]}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := state.Decode([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrStateCorrupt))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	st := types.AppliedState{Applied: []types.AppliedLinkRecord{
		types.NewClosedRecord(".bashrc", ".bashrc"),
		types.NewOpenRecord("home", ".", []string{"/home/dex/.xinitrc"}),
	}}

	data, err := state.Encode(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), "managed_files: []")

	back, err := state.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, st, back)
}
