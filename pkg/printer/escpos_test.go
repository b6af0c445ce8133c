package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(d *Document) []string {
	body := bytes.TrimPrefix(d.Bytes(), []byte{ESC, '@'})
	return strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
}

func TestDocument_Columns(t *testing.T) {
	d := NewDocument(20)
	d.Columns("Total:", "199.98")
	d.Columns("A very long product name indeed", "5.00")

	got := lines(d)
	require.Len(t, got, 2)
	assert.Equal(t, "Total:        199.98", got[0])
	assert.Len(t, got[1], 20)
	assert.True(t, strings.HasSuffix(got[1], " 5.00"))
	assert.True(t, strings.HasPrefix(got[1], "A very long pro"))
}

func TestDocument_TextClipsAndSeparator(t *testing.T) {
	d := NewDocument(8)
	d.Text("Café au lait").Separator('-')

	got := lines(d)
	assert.Equal(t, "Café au ", got[0])
	assert.Equal(t, "--------", got[1])
}

func TestDocument_DefaultWidth(t *testing.T) {
	assert.Equal(t, Width58mm, NewDocument(0).Width())
}

func TestNew(t *testing.T) {
	p, err := New(Config{Type: "none"})
	require.NoError(t, err)
	assert.NoError(t, p.Print(context.Background(), []byte("x")))
	assert.False(t, p.IsConnected(context.Background()))

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)

	_, err = New(Config{Type: "network"})
	assert.Error(t, err)

	_, err = New(Config{Type: "serial"})
	assert.Error(t, err)

	p, err = New(Config{Type: "usb", USBPath: "/nonexistent/lp0"})
	require.NoError(t, err)
	assert.False(t, p.IsConnected(context.Background()))
	assert.Error(t, p.Print(context.Background(), []byte("x")))
}
