package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-s", "sheet123", "-x", "ignored"},
			allowed: []string{"-s"},
			want:    []string{"-s", "sheet123"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-i=5"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "positional command dropped",
			args:    []string{"flush", "-i", "10"},
			allowed: []string{"-i"},
			want:    []string{"-i", "10"},
		},
		{
			name:    "flag without value",
			args:    []string{"-v", "-s", "abc"},
			allowed: []string{"-v", "-s"},
			want:    []string{"-v", "-s", "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"cmd", "-c", "conf.json"}
	require.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"cmd"}
	require.Equal(t, "", JsonConfigFlags())
}
