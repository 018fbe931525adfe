package main

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter adds step to count on every rising clock edge and calls $finish
// when count reaches 12.
const counter = `<?xml version="1.0"?>
<module name="counter">
  <var name="clk" width="1"/>
  <var name="last" width="1"/>
  <var name="step" width="8"/>
  <var name="count" width="8"/>
  <cfunc name="_eval">
    <if>
      <and><varref name="clk"/><not><varref name="last"/></not></and>
      <begin>
        <assign><add><varref name="count"/><varref name="step"/></add><varref name="count"/></assign>
        <if>
          <eq><varref name="count"/><const value="12"/></eq>
          <begin>
            <ccall name="$display"><sformatf name="done in %m"/></ccall>
            <ccall name="$finish" loc="counter.v:7:9"/>
          </begin>
        </if>
      </begin>
    </if>
    <assign><varref name="clk"/><varref name="last"/></assign>
  </cfunc>
</module>
`

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0644))
	}
	return fs
}

func TestParseConfig(t *testing.T) {
	fs := memFs(t, nil)
	cfg, err := parseConfig(fs, []string{"--cycles", "3", "--set", "a=1,b=0x10", "--watch", "out", "design.xml"})
	require.NoError(t, err)
	assert.Equal(t, "design.xml", cfg.Design)
	assert.Equal(t, 3, cfg.Cycles)
	assert.Equal(t, "clk", cfg.Clock)
	assert.Equal(t, 100, cfg.MaxSettle)
	assert.Equal(t, map[string]int64{"a": 1, "b": 16}, cfg.Set)
	assert.Empty(t, cfg.Specialize)
	assert.Equal(t, []string{"out"}, cfg.Watch)

	_, err = parseConfig(fs, nil)
	assert.Error(t, err)
	_, err = parseConfig(fs, []string{"--set", "a", "design.xml"})
	assert.Error(t, err)
	_, err = parseConfig(fs, []string{"--set", "a=zz", "design.xml"})
	assert.Error(t, err)
}

func TestParseConfig_env(t *testing.T) {
	t.Setenv("RTLSIM_MAX_SETTLE", "7")
	t.Setenv("RTLSIM_CLOCK", "clock")
	cfg, err := parseConfig(memFs(t, nil), []string{"--clock", "ck", "design.xml"})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxSettle)
	assert.Equal(t, "ck", cfg.Clock, "flags take precedence over the environment")
}

func TestParseConfig_file(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/etc/sim.yaml": "cycles: 42\nlog-level: debug\nwatch:\n  - q\n  - out\n",
	})
	cfg, err := parseConfig(fs, []string{"--config", "/etc/sim.yaml", "design.xml"})
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Cycles)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"q", "out"}, cfg.Watch)

	_, err = parseConfig(fs, []string{"--config", "/etc/nope.yaml", "design.xml"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	fs := memFs(t, map[string]string{"/designs/counter.xml": counter})
	var out strings.Builder
	err := run(fs, []string{
		"--set", "step=3",
		"--watch", "count,clk",
		"--log-level", "error",
		"--metrics",
		"/designs/counter.xml",
	}, &out)
	require.NoError(t, err)
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "done in counter\ncount = 12\nclk = 1\n"), s)
	assert.Contains(t, s, "rtlsim_evals 9\n")
	assert.Contains(t, s, "rtlsim_settle_rounds_count")
}

func TestRun_specialize(t *testing.T) {
	fs := memFs(t, map[string]string{"counter.xml": counter})
	var out strings.Builder
	err := run(fs, []string{"--specialize", "step=4", "--cycles", "2", "--watch", "count", "--log-level", "crit", "counter.xml"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "count = 8\n", out.String())
}

func TestRun_errors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"counter.xml": counter,
		"bad.xml":     `<?xml?><module name="bad"><cfunc name="_eval"><ccall name="nope"/></cfunc></module>`,
	})
	var out strings.Builder
	for _, args := range [][]string{
		{"missing.xml"},
		{"--log-level", "loud", "counter.xml"},
		{"--log-level", "crit", "bad.xml"},
		{"--log-level", "crit", "--watch", "nope", "counter.xml"},
	} {
		assert.Error(t, run(fs, args, &out), "%v", args)
	}
}
