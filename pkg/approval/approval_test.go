package approval_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotlinks/pkg/approval"
	"github.com/arthur-debert/dotlinks/pkg/types"
)

type recordingPresenter struct {
	shown []types.Preview
}

func (r *recordingPresenter) Preview(p types.Preview) error {
	r.shown = append(r.shown, p)
	return nil
}

var sample = types.Preview{User: "dex", Repo: "dots", Actions: []types.PlannedAction{types.EnsureDir{Dir: "/home/dex"}}}

func TestApproves(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"", true},
		{"\n", true},
		{"y", true},
		{"YES", true},
		{" s ", true},
		{"sim", true},
		{"n", false},
		{"no", false},
		{"nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, approval.Approves(tt.answer))
		})
	}
}

func TestAutoApprovePresentsPreview(t *testing.T) {
	presenter := &recordingPresenter{}
	ok, err := approval.AutoApprove{Presenter: presenter}.Approve(context.Background(), sample)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []types.Preview{sample}, presenter.shown)
}

func TestConsoleGate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"enter accepts", "\n", true},
		{"yes", "yes\n", true},
		{"sim without newline", "sim", true},
		{"no", "n\n", false},
		{"closed input declines", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presenter := &recordingPresenter{}
			var out bytes.Buffer
			gate := approval.NewConsoleGate(presenter, strings.NewReader(tt.input), &out)

			ok, err := gate.Approve(context.Background(), sample)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Len(t, presenter.shown, 1)
			assert.Contains(t, out.String(), approval.Prompt)
		})
	}
}

func TestConsoleGateReadsOneAnswerPerRepository(t *testing.T) {
	gate := approval.NewConsoleGate(nil, strings.NewReader("y\nn\n"), io.Discard)

	first, err := gate.Approve(context.Background(), sample)
	require.NoError(t, err)
	second, err := gate.Approve(context.Background(), sample)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestConsoleGateCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := approval.NewConsoleGate(nil, pr, io.Discard).Approve(ctx, sample)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleGateAnswersAfterCancelledCall(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	gate := approval.NewConsoleGate(nil, pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := gate.Approve(ctx, sample)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_, _ = io.WriteString(pw, "n\ny\n")
	}()

	first, err := gate.Approve(context.Background(), sample)
	require.NoError(t, err)
	second, err := gate.Approve(context.Background(), sample)
	require.NoError(t, err)

	assert.False(t, first)
	assert.True(t, second)
}

func TestConsoleGateDeclinesOnceInputIsClosed(t *testing.T) {
	gate := approval.NewConsoleGate(nil, strings.NewReader("y"), io.Discard)

	ok, err := gate.Approve(context.Background(), sample)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 2; i++ {
		ok, err = gate.Approve(context.Background(), sample)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestNewPicksGate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "answers"))
	require.NoError(t, err)
	defer f.Close()

	assert.IsType(t, approval.AutoApprove{}, approval.New(nil, true, f, f))
	assert.IsType(t, &approval.ConsoleGate{}, approval.New(nil, false, f, f))
}
