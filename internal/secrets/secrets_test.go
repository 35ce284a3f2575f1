package secrets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLine(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		line string
		want []string
	}{
		{`password = "hunter2"`, []string{"password"}},
		{`const API_KEY = "0123456789abcdef0123"`, []string{"api-key"}},
		{`private_key = load("id_rsa")`, []string{"private-key"}},
		{`AWS_SECRET_ACCESS_KEY=abcd1234efgh`, []string{"secret", "aws-secret"}},
		{`DATABASE_URL = "postgres://user:pass@db/app"`, []string{"database-url"}},
		{`user_count = 3`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var got []string
			for _, m := range d.ScanLine(tt.line) {
				got = append(got, m.Rule)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchAt(t *testing.T) {
	m := NewDetector().ScanLine(`const PRIVATE_KEY = load()`)
	require.Len(t, m, 1)
	assert.Equal(t, Finding{
		File:     "keys/dev.pem",
		Line:     1,
		Rule:     "private-key",
		Severity: Critical,
		Message:  "private key material",
	}, m[0].At("keys/dev.pem", 1))
}

func TestAtLeast(t *testing.T) {
	rules := AtLeast(DefaultRules(), Critical)
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Equal(t, Critical, r.Severity)
	}
	assert.Len(t, AtLeast(DefaultRules(), Low), len(DefaultRules()))

	d := NewDetector(AtLeast(DefaultRules(), High)...)
	assert.Empty(t, d.ScanLine(`token = "abcdefghijklmnopqrstuvwxyz"`))
	assert.NotEmpty(t, d.ScanLine(`password = "hunter2"`))
}

func TestSeverityText(t *testing.T) {
	b, err := json.Marshal(map[string]Severity{"s": High})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"high"}`, string(b))

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("Critical")))
	assert.Equal(t, Critical, s)
	assert.Error(t, s.UnmarshalText([]byte("extreme")))
	assert.Equal(t, "Severity(9)", Severity(9).String())
	assert.True(t, Low < Medium && Medium < High && High < Critical)
}
