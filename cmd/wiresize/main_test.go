package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireschema/wireschema/internal/schemadoc"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSize(t *testing.T) {
	out, err := run(t, "size", "testdata/msg.toml")
	require.NoError(t, err)
	assert.Contains(t, out, "Message")
	assert.Contains(t, out, "104 bytes")
	assert.Contains(t, out, "101 bytes")
	assert.Contains(t, out, "unbounded: seq without max_len")
}

func TestSizeSelectedTypes(t *testing.T) {
	out, err := run(t, "size", "testdata/msg.toml", "Text")
	require.NoError(t, err)
	assert.Equal(t, "Text  101 bytes\n", out)
}

func TestSizeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown type", []string{"size", "testdata/msg.toml", "Nope"}, `no type "Nope"`},
		{"require bounded", []string{"size", "testdata/msg.toml", "--require-bounded"}, "1 of 3 types are unbounded"},
		{"missing file", []string{"size", "testdata/missing.toml"}, "missing.toml"},
		{"bad log level", []string{"--log-level", "chatty", "size", "testdata/msg.toml"}, "invalid level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "testdata/msg.toml")
	require.NoError(t, err)
	assert.Equal(t, "testdata/msg.toml: 3 types, 0 size overrides\n", out)
}

func TestConvert(t *testing.T) {
	target := filepath.Join(t.TempDir(), "msg.cbor")
	out, err := run(t, "--json", "--log-level", "debug", "convert", "testdata/msg.toml", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target)

	want, err := schemadoc.Load("testdata/msg.toml")
	require.NoError(t, err)
	got, err := schemadoc.Load(target)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = run(t, "convert", "testdata/msg.toml")
	assert.ErrorContains(t, err, "missing --output")
}
