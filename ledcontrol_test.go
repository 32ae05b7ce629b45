package ledcontrol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flavioheleno/ledcontrol/bus"
	"github.com/flavioheleno/ledcontrol/sim"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

type tx struct {
	devices int
	addr    int
	opcode  byte
	data    byte
}

// recorder is a Transport remembering every transfer.
type recorder struct {
	txs []tx
	err error
}

func (r *recorder) Transfer(devices, addr int, opcode, data byte) error {
	r.txs = append(r.txs, tx{devices, addr, opcode, data})
	return r.err
}

// newRecorded returns a Dev whose startup sequence has been discarded.
func newRecorded(t *testing.T, devices int, opts *Opts) (*Dev, *recorder) {
	t.Helper()
	r := &recorder{}
	d, err := New(r, devices, opts)
	require.NoError(t, err)
	r.txs = nil
	return d, r
}

func TestNewRequiresTransport(t *testing.T) {
	_, err := New(nil, 1, nil)
	assert.Error(t, err)
}

func TestDeviceCountClamp(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero", 0, 8},
		{"negative", -1, 8},
		{"too many", 9, 8},
		{"one", 1, 1},
		{"three", 3, 3},
		{"eight", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newRecorded(t, tt.requested, nil)
			assert.Equal(t, tt.want, d.DeviceCount())
		})
	}
}

func TestStartupSequence(t *testing.T) {
	r := &recorder{}
	_, err := New(r, 2, nil)
	require.NoError(t, err)

	var want []tx
	for addr := 0; addr < 2; addr++ {
		want = append(want,
			tx{2, addr, opDisplayTest, 0},
			tx{2, addr, opScanLimit, 7},
			tx{2, addr, opDecodeMode, 0},
		)
		for row := 0; row < Rows; row++ {
			want = append(want, tx{2, addr, opDigit0 + byte(row), 0})
		}
		want = append(want, tx{2, addr, opShutdown, 0})
	}
	assert.Equal(t, want, r.txs)
}

func TestStartupOnChain(t *testing.T) {
	chain, err := sim.New(3)
	require.NoError(t, err)

	d, err := NewBitBang(chain.Data(), chain.Clock(), chain.CS(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, d.DeviceCount())
	assert.Equal(t, gpio.High, chain.CS().Read())

	for i, dev := range chain.Snapshot() {
		assert.True(t, dev.Shutdown, "device %d", i)
		assert.False(t, dev.Test, "device %d", i)
		assert.Equal(t, byte(7), dev.ScanLimit, "device %d", i)
		assert.Equal(t, byte(0), dev.Decode, "device %d", i)
		assert.Equal(t, [8]byte{}, dev.Digits, "device %d", i)
	}
	assert.Len(t, chain.Transactions(), 3*12)
}

func TestNewBitBangPinError(t *testing.T) {
	_, err := NewBitBang(nil, &gpiotest.Pin{N: "CLK"}, &gpiotest.Pin{N: "CS"}, 1, nil)
	assert.Error(t, err)
}

func TestNewSPI(t *testing.T) {
	var ops []conntest.IO
	add := func(opcode, data byte) {
		w, err := bus.Wire(1, 0, opcode, data)
		require.NoError(t, err)
		ops = append(ops, conntest.IO{W: w})
	}
	add(opDisplayTest, 0)
	add(opScanLimit, 7)
	add(opDecodeMode, 0)
	for row := 0; row < Rows; row++ {
		add(opDigit0+byte(row), 0)
	}
	add(opShutdown, 0)
	add(opShutdown, 1)

	port := &spitest.Playback{
		Playback: conntest.Playback{Ops: ops, DontPanic: true},
	}
	d, err := NewSPI(port, 1, nil)
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(0, false))
	require.NoError(t, port.Close())
}

func TestInvalidAddressIsIgnored(t *testing.T) {
	ops := map[string]func(d *Dev, addr int) error{
		"Shutdown":          func(d *Dev, addr int) error { return d.Shutdown(addr, false) },
		"SetScanLimit":      func(d *Dev, addr int) error { return d.SetScanLimit(addr, 3) },
		"SetIntensity":      func(d *Dev, addr int) error { return d.SetIntensity(addr, 3) },
		"SetDisplayTest":    func(d *Dev, addr int) error { return d.SetDisplayTest(addr, true) },
		"ClearDisplay":      func(d *Dev, addr int) error { return d.ClearDisplay(addr) },
		"SetLed":            func(d *Dev, addr int) error { return d.SetLed(addr, 1, 1, true) },
		"SetRow":            func(d *Dev, addr int) error { return d.SetRow(addr, 1, 0xFF) },
		"SetColumn":         func(d *Dev, addr int) error { return d.SetColumn(addr, 1, 0xFF) },
		"SetDigit":          func(d *Dev, addr int) error { return d.SetDigit(addr, 1, 5, true) },
		"SetChar":           func(d *Dev, addr int) error { return d.SetChar(addr, 1, 'H', false) },
		"PrintChar":         func(d *Dev, addr int) error { return d.PrintChar(addr, 0, 'A') },
		"PrintString":       func(d *Dev, addr int) error { return d.PrintString(addr, 0, "AB") },
		"PrintStringScroll": func(d *Dev, addr int) error { return d.PrintStringScroll(addr, 0, "AB", 0, ScrollLeft) },
	}

	for name, op := range ops {
		for _, addr := range []int{-1, 2, 8} {
			d, r := newRecorded(t, 2, nil)
			before := d.status
			require.NoError(t, op(d, addr), "%s(%d)", name, addr)
			assert.Empty(t, r.txs, "%s(%d) issued a transaction", name, addr)
			assert.Equal(t, before, d.status, "%s(%d) changed the shadow", name, addr)
		}
	}
}

func TestShutdownPolarity(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	require.NoError(t, d.Shutdown(0, true))
	require.NoError(t, d.Shutdown(0, false))

	assert.Equal(t, []tx{
		{1, 0, opShutdown, 0},
		{1, 0, opShutdown, 1},
	}, r.txs)
}

func TestScanLimitAndIntensityPermissive(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	require.NoError(t, d.SetScanLimit(0, 3))
	require.NoError(t, d.SetScanLimit(0, 9))
	require.NoError(t, d.SetIntensity(0, 15))
	require.NoError(t, d.SetIntensity(0, 16))
	require.NoError(t, d.SetIntensity(0, -1))

	assert.Equal(t, []tx{
		{1, 0, opScanLimit, 3},
		{1, 0, opScanLimit, 9},
		{1, 0, opIntensity, 15},
		{1, 0, opIntensity, 16},
		{1, 0, opIntensity, 0xFF},
	}, r.txs)
}

func TestScanLimitAndIntensityStrict(t *testing.T) {
	d, r := newRecorded(t, 1, &Opts{StrictRanges: true})

	require.NoError(t, d.SetScanLimit(0, 7))
	require.NoError(t, d.SetScanLimit(0, 8))
	require.NoError(t, d.SetScanLimit(0, -1))
	require.NoError(t, d.SetIntensity(0, 0))
	require.NoError(t, d.SetIntensity(0, 16))

	assert.Equal(t, []tx{
		{1, 0, opScanLimit, 7},
		{1, 0, opIntensity, 0},
	}, r.txs)
}

func TestSetDisplayTest(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	require.NoError(t, d.SetDisplayTest(0, true))
	require.NoError(t, d.SetDisplayTest(0, false))

	assert.Equal(t, []tx{
		{1, 0, opDisplayTest, 1},
		{1, 0, opDisplayTest, 0},
	}, r.txs)
}

func TestSetLedRoundTrip(t *testing.T) {
	d, _ := newRecorded(t, 1, nil)

	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			mask := byte(0x80) >> uint(col)
			before := byte(0x5A) &^ mask
			require.NoError(t, d.SetRow(0, row, before))

			require.NoError(t, d.SetLed(0, row, col, true))
			assert.True(t, d.Led(0, row, col))
			assert.Equal(t, before|mask, d.Row(0, row))

			require.NoError(t, d.SetLed(0, row, col, false))
			assert.Equal(t, before, d.Row(0, row), "row %d col %d", row, col)
		}
	}
}

func TestSetLedTransaction(t *testing.T) {
	d, r := newRecorded(t, 2, nil)

	require.NoError(t, d.SetLed(1, 4, 0, true))
	require.NoError(t, d.SetLed(1, 4, 7, true))
	require.NoError(t, d.SetLed(1, 4, 0, false))

	assert.Equal(t, []tx{
		{2, 1, opDigit0 + 4, 0x80},
		{2, 1, opDigit0 + 4, 0x81},
		{2, 1, opDigit0 + 4, 0x01},
	}, r.txs)
}

func TestSetLedOutOfRange(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	for _, pos := range [][2]int{{-1, 0}, {8, 0}, {0, -1}, {0, 8}} {
		require.NoError(t, d.SetLed(0, pos[0], pos[1], true))
	}
	assert.Empty(t, r.txs)
}

func TestSetRow(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	require.NoError(t, d.SetRow(0, 2, 0xFF))
	require.NoError(t, d.SetRow(0, 8, 0xFF))
	require.NoError(t, d.SetRow(0, -1, 0xFF))

	assert.Equal(t, []tx{{1, 0, opDigit0 + 2, 0xFF}}, r.txs)
	for col := 0; col < Columns; col++ {
		assert.True(t, d.Led(0, 2, col), "col %d", col)
	}
}

func TestSetColumn(t *testing.T) {
	d, r := newRecorded(t, 1, nil)

	require.NoError(t, d.SetColumn(0, 2, 0b10100001))

	require.Len(t, r.txs, Rows)
	want := []bool{true, false, true, false, false, false, false, true}
	for row, on := range want {
		assert.Equal(t, on, d.Led(0, row, 2), "row %d", row)
		assert.Equal(t, opDigit0+byte(row), r.txs[row].opcode)
	}

	r.txs = nil
	require.NoError(t, d.SetColumn(0, 8, 0xFF))
	assert.Empty(t, r.txs)
}

func TestClearDisplay(t *testing.T) {
	d, r := newRecorded(t, 2, nil)
	for row := 0; row < Rows; row++ {
		require.NoError(t, d.SetRow(0, row, 0xFF))
		require.NoError(t, d.SetRow(1, row, 0xFF))
	}
	r.txs = nil

	require.NoError(t, d.ClearDisplay(0))

	assert.Len(t, r.txs, Rows)
	for row := 0; row < Rows; row++ {
		assert.Equal(t, byte(0), d.Row(0, row))
		assert.Equal(t, byte(0xFF), d.Row(1, row))
		assert.Equal(t, tx{2, 0, opDigit0 + byte(row), 0}, r.txs[row])
	}
}

func TestSetDigit(t *testing.T) {
	tests := []struct {
		name   string
		digit  int
		value  byte
		dp     bool
		want   byte
		issued bool
	}{
		{"zero", 0, 0, false, 0x7E, true},
		{"A with dp", 3, 0x0A, true, 0xF7, true},
		{"F", 7, 0x0F, false, 0x47, true},
		{"value too large", 1, 16, false, 0, false},
		{"digit too large", 8, 1, false, 0, false},
		{"negative digit", -1, 1, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, r := newRecorded(t, 1, nil)
			require.NoError(t, d.SetDigit(0, tt.digit, tt.value, tt.dp))
			if !tt.issued {
				assert.Empty(t, r.txs)
				return
			}
			assert.Equal(t, []tx{{1, 0, opDigit0 + byte(tt.digit), tt.want}}, r.txs)
			assert.Equal(t, tt.want, d.Row(0, tt.digit))
		})
	}
}

func TestSetChar(t *testing.T) {
	tests := []struct {
		name string
		c    byte
		dp   bool
		want byte
	}{
		{"H", 'H', false, 0x37},
		{"minus", '-', false, 0x01},
		{"digit with dp", '1', true, 0xB0},
		{"high code is space", 200, false, 0x00},
		{"high code keeps dp", 255, true, 0x80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, r := newRecorded(t, 1, nil)
			require.NoError(t, d.SetChar(0, 5, tt.c, tt.dp))
			assert.Equal(t, []tx{{1, 0, opDigit0 + 5, tt.want}}, r.txs)
			assert.Equal(t, tt.want, d.Row(0, 5))
		})
	}

	d, r := newRecorded(t, 1, nil)
	require.NoError(t, d.SetChar(0, 8, 'H', false))
	assert.Empty(t, r.txs)
}

func TestShadowQueriesOutOfRange(t *testing.T) {
	d, _ := newRecorded(t, 1, nil)
	require.NoError(t, d.SetRow(0, 0, 0xFF))

	assert.Equal(t, byte(0), d.Row(1, 0))
	assert.Equal(t, byte(0), d.Row(0, 8))
	assert.False(t, d.Led(0, 0, 8))
	assert.False(t, d.Led(0, 0, -1))
}

func TestTransportError(t *testing.T) {
	d, r := newRecorded(t, 1, nil)
	r.err = errors.New("bus down")

	err := d.SetRow(0, 3, 0x18)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus down")
	assert.Equal(t, byte(0x18), d.Row(0, 3))

	assert.Error(t, d.SetColumn(0, 0, 0xFF))
	assert.Len(t, r.txs, 2)
}

func TestStartupError(t *testing.T) {
	_, err := New(&recorder{err: errors.New("bus down")}, 1, nil)
	assert.Error(t, err)
}

func TestRejectedCallsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	d, r := newRecorded(t, 1, &Opts{Logger: &logger})

	require.NoError(t, d.SetRow(3, 0, 0xFF))
	require.NoError(t, d.SetLed(0, 9, 0, true))

	assert.Empty(t, r.txs)
	assert.Contains(t, buf.String(), `"message":"device out of range"`)
	assert.Contains(t, buf.String(), `"message":"led out of range"`)
	assert.Contains(t, buf.String(), `"driver":"ledcontrol"`)
}

func TestEndToEndOnChain(t *testing.T) {
	chain, err := sim.New(2)
	require.NoError(t, err)
	d, err := NewBitBang(chain.Data(), chain.Clock(), chain.CS(), 2, nil)
	require.NoError(t, err)

	require.NoError(t, d.Shutdown(1, false))
	require.NoError(t, d.SetIntensity(1, 9))
	require.NoError(t, d.SetLed(1, 6, 1, true))
	require.NoError(t, d.SetDigit(0, 2, 4, true))

	devs := chain.Snapshot()
	assert.False(t, devs[1].Shutdown)
	assert.Equal(t, byte(9), devs[1].Intensity)
	assert.Equal(t, byte(0x40), devs[1].Digits[6])
	assert.True(t, devs[1].Lit(6, 1))
	assert.True(t, devs[0].Shutdown)
	assert.Equal(t, byte(0xB3), devs[0].Digits[2])

	for addr := 0; addr < 2; addr++ {
		for row := 0; row < Rows; row++ {
			assert.Equal(t, d.Row(addr, row), devs[addr].Digits[row], "device %d row %d", addr, row)
		}
	}
}

func TestString(t *testing.T) {
	d, _ := newRecorded(t, 4, nil)
	assert.Equal(t, "ledcontrol.Dev{4 devices}", d.String())
}
