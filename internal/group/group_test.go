package group

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muurk/devreg/internal/registry"
	"github.com/muurk/devreg/internal/store/memstore"
)

type plantLevel int16

func newTestGroup(commit func() error) (*Group, *int16, *string, *bool) {
	var (
		period int16 = 60
		devEUI       = "00FA3F26B4128C7D"
		enable       = true
	)
	g := New("app", WithCommit(commit)).Add(
		Int("data_send_period", &period),
		String("dev_eui", &devEUI, 17),
		Bool("enable", &enable),
	)
	return g, &period, &devEUI, &enable
}

func TestSetAndGet(t *testing.T) {
	g, period, _, _ := newTestGroup(nil)

	require.NoError(t, g.Set([]string{"data_send_period"}, "300"))
	require.Equal(t, int16(300), *period)

	v, ok := g.Get([]string{"data_send_period"}, registry.MaxValLen)
	require.True(t, ok)
	require.Equal(t, "300", v)
}

func TestSetRejectedLeavesValue(t *testing.T) {
	g, period, devEUI, enable := newTestGroup(nil)

	require.True(t, registry.IsOverflow(g.Set([]string{"data_send_period"}, "40000")))
	require.True(t, registry.IsInvalidFormat(g.Set([]string{"data_send_period"}, "12abc")))
	require.True(t, registry.IsOverflow(g.Set([]string{"dev_eui"}, "00FA3F26B4128C7D00")))
	require.True(t, registry.IsOverflow(g.Set([]string{"enable"}, "2")))

	require.Equal(t, int16(60), *period)
	require.Equal(t, "00FA3F26B4128C7D", *devEUI)
	require.True(t, *enable)
}

func TestUnknownParam(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)

	require.True(t, registry.IsNotFound(g.Set([]string{"nope"}, "1")))
	require.True(t, registry.IsNotFound(g.Set(nil, "1")))
	require.True(t, registry.IsNotFound(g.Set([]string{"data_send_period", "x"}, "1")))

	_, ok := g.Get([]string{"nope"}, registry.MaxValLen)
	require.False(t, ok)
}

func TestGetBufferTooSmall(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)
	_, ok := g.Get([]string{"data_send_period"}, 2)
	require.False(t, ok)
}

func TestExportAll(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)

	var got [][2]string
	require.NoError(t, g.Export(func(name, value string) error {
		got = append(got, [2]string{name, value})
		return nil
	}, nil))

	require.Equal(t, [][2]string{
		{"app/data_send_period", "60"},
		{"app/dev_eui", "00FA3F26B4128C7D"},
		{"app/enable", "1"},
	}, got)
}

func TestExportOne(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)

	var got []string
	require.NoError(t, g.Export(func(name, _ string) error {
		got = append(got, name)
		return nil
	}, []string{"enable"}))
	require.Equal(t, []string{"app/enable"}, got)

	require.True(t, registry.IsNotFound(g.Export(func(string, string) error { return nil }, []string{"nope"})))
}

func TestExportContinuesPastFailure(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)
	boom := errors.New("boom")

	calls := 0
	err := g.Export(func(string, string) error {
		calls++
		if calls == 1 {
			return boom
		}
		return nil
	}, nil)

	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestCommit(t *testing.T) {
	g, _, _, _ := newTestGroup(nil)
	require.NoError(t, g.Commit())

	boom := errors.New("apply failed")
	g, _, _, _ = newTestGroup(func() error { return boom })
	require.ErrorIs(t, g.Commit(), boom)
}

func TestIntWidths(t *testing.T) {
	var (
		a int8
		b plantLevel
		c int32
		d int64
	)
	require.Equal(t, registry.TypeInt8, Int("a", &a).Type())
	require.Equal(t, registry.TypeInt16, Int("b", &b).Type())
	require.Equal(t, registry.TypeInt32, Int("c", &c).Type())
	require.Equal(t, registry.TypeInt64, Int("d", &d).Type())

	p := Int("b", &b)
	require.NoError(t, p.Set("0x10"))
	require.Equal(t, plantLevel(16), b)
}

func TestFloatBytesParams(t *testing.T) {
	var (
		f   float32
		d   float64
		key []byte
	)
	g := New("cal").Add(
		Float("gain", &f),
		Double("offset", &d),
		Bytes("key", &key, 4),
	)

	require.NoError(t, g.Set([]string{"gain"}, "1.5"))
	require.NoError(t, g.Set([]string{"offset"}, "-0.25"))
	require.NoError(t, g.Set([]string{"key"}, "3q2+7w=="))
	require.Equal(t, float32(1.5), f)
	require.Equal(t, -0.25, d)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, key)

	require.True(t, registry.IsOverflow(g.Set([]string{"key"}, "AAAAAAA=")))

	v, ok := g.Get([]string{"key"}, registry.MaxValLen)
	require.True(t, ok)
	require.Equal(t, "3q2+7w==", v)
}

func TestStringCappedAtValueLimit(t *testing.T) {
	var label string
	g := New("dev").Add(String("label", &label, 128))

	require.True(t, registry.IsOverflow(g.Set([]string{"label"}, strings.Repeat("x", 100))))
	require.Empty(t, label)

	long := strings.Repeat("x", registry.MaxValLen)
	require.NoError(t, g.Set([]string{"label"}, long))
	v, ok := g.Get([]string{"label"}, registry.MaxValLen+1)
	require.True(t, ok)
	require.Equal(t, long, v)
}

func TestSaveSkipsUnformattableParam(t *testing.T) {
	var (
		period int16 = 60
		blob   []byte
	)
	g := New("dev").Add(
		Bytes("blob", &blob, 60),
		Int("period", &period),
	)
	// 49 bytes fit the capacity but their base64 form exceeds the value limit
	require.NoError(t, g.Set([]string{"blob"}, base64.StdEncoding.EncodeToString(make([]byte, 49))))

	reg := registry.New()
	require.NoError(t, reg.Register(g))
	dst := memstore.New(0)
	reg.RegisterDestination(dst)

	err := reg.Save()
	require.True(t, registry.IsOverflow(err))

	var saved []string
	require.NoError(t, dst.Load(func(name, value string) {
		saved = append(saved, name+"="+value)
	}))
	require.Equal(t, []string{"dev/period=60"}, saved)
}

func TestAddPanicsOnDuplicate(t *testing.T) {
	var a, b int16
	require.Panics(t, func() {
		New("app").Add(Int("x", &a), Int("x", &b))
	})
	require.Panics(t, func() {
		New("app").Add(Int("x/y", &a))
	})
}

func TestRegistryRoundTrip(t *testing.T) {
	g, period, _, _ := newTestGroup(nil)
	reg := registry.New()
	require.NoError(t, reg.Register(g))

	require.NoError(t, reg.SetValue("app/data_send_period", "120"))
	require.Equal(t, int16(120), *period)

	v, ok := reg.GetValue("app/data_send_period", registry.MaxValLen)
	require.True(t, ok)
	require.Equal(t, "120", v)
}
