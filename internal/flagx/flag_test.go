package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "fmdata.json", "-store", "redis"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "fmdata.json"},
		},
		{
			name:         "double dash with equals",
			args:         []string{"--config=alt.json", "-store", "redis"},
			allowedFlags: []string{"-config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "double dash with separate value",
			args:         []string{"--timeout", "10s"},
			allowedFlags: []string{"-timeout"},
			want:         []string{"--timeout", "10s"},
		},
		{
			name:         "order preserved across spellings",
			args:         []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next flag is not taken as value",
			args:         []string{"-c", "-store", "memory"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "equals value that looks like a flag",
			args:         []string{"-dsn=--weird"},
			allowedFlags: []string{"-dsn"},
			want:         []string{"-dsn=--weird"},
		},
		{
			name:         "several allowed flags",
			args:         []string{"-url", "https://fm.example.com/fmi/data/v1/databases/Contacts", "-c", "fmdata.json", "--other", "x"},
			allowedFlags: []string{"-c", "-url"},
			want:         []string{"-url", "https://fm.example.com/fmi/data/v1/databases/Contacts", "-c", "fmdata.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "repeated flag kept in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFile(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/fmdata/short.json"}, "/etc/fmdata/short.json"},
		{"long", []string{"-config", "/etc/fmdata/long.json"}, "/etc/fmdata/long.json"},
		{"double dash equals", []string{"--config=/tmp/x.json"}, "/tmp/x.json"},
		{"absent", []string{"-store", "redis"}, ""},
		{"last wins", []string{"-c", "/1.json", "-config", "/2.json"}, "/2.json"},
		{"no args", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConfigFile(tc.args))
		})
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, nil},
		{"command only", []string{"list", "People", "10"}, []string{"list", "People", "10"}},
		{"flags before command", []string{"-c", "fmdata.json", "-store", "memory", "get", "People", "7"}, []string{"get", "People", "7"}},
		{"inline values", []string{"--store=memory", "status"}, []string{"status"}},
		{"flag followed by flag", []string{"-x", "-db", "Contacts", "logout"}, []string{"logout"}},
		{"double dash", []string{"-db", "Contacts", "--", "find", "People", `{"query":[]}`, "-v"}, []string{"find", "People", `{"query":[]}`, "-v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args))
		})
	}
}
