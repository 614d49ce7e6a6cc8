package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	tests := map[string]struct {
		category Category
		want     string
	}{
		"setup":      {Setup, "Setup Error"},
		"subprocess": {Subprocess, "Subprocess Error"},
		"parse":      {Parse, "Parse Error"},
		"transport":  {Transport, "Transport Error"},
		"unknown":    {Category(99), "Error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestWrap(t *testing.T) {
	require.Nil(t, Wrap(nil, Setup))

	wrapped := Wrap(stderrors.New("mkdir failed"), Setup, "check disk space")
	require.Equal(t, Setup, wrapped.Category)
	require.Equal(t, "mkdir failed", wrapped.Error())
	require.Equal(t, []string{"check disk space"}, wrapped.Remediation)
}

func TestWrapWithMessage(t *testing.T) {
	wrapped := WrapWithMessage(stderrors.New("eof"), Parse, "decoding transcript")
	require.Equal(t, "decoding transcript: eof", wrapped.Error())
}

func TestAsHarnessError(t *testing.T) {
	require.Nil(t, AsHarnessError(stderrors.New("plain")))
	he := NewParseError("bad record")
	require.Equal(t, he, AsHarnessError(he))
}

func TestFormatErrorPlain(t *testing.T) {
	err := NewSubprocessError("command `oasis build` exited 1", "error: could not find workspace\n",
		"run the command inside a project directory")

	out := FormatErrorPlain(err)
	require.Contains(t, out, "Error [Subprocess Error]: command `oasis build` exited 1")
	require.Contains(t, out, "Captured stderr:")
	require.Contains(t, out, "  error: could not find workspace")
	require.Contains(t, out, "• run the command inside a project directory")
}
