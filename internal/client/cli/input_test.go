package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out, "Password")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPassword_OK(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out, "Password")
	require.NoError(t, err)
	require.Equal(t, "secret", string(pw))
	require.Equal(t, "Password: \n", out.String())
}

func TestTextOrPrompt(t *testing.T) {
	var out bytes.Buffer

	got, err := textOrPrompt(rdr(""), &out, "given", "Email")
	require.NoError(t, err)
	require.Equal(t, "given", got)
	require.Empty(t, out.String())

	got, err = textOrPrompt(rdr("typed\n"), &out, "", "Email")
	require.NoError(t, err)
	require.Equal(t, "typed", got)

	_, err = textOrPrompt(rdr("\n"), &out, "", "Email")
	require.EqualError(t, err, "email: value required")
}

func TestWipe(t *testing.T) {
	a, b := []byte("abc"), []byte("de")
	wipe(a, b, nil)
	require.Equal(t, []byte{0, 0, 0}, a)
	require.Equal(t, []byte{0, 0}, b)
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
