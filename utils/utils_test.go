package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashing(t *testing.T) {
	require.Equal(t, HashString("诊断给予"), HashBytes([]byte("诊断"), []byte("给予")))
	require.NotEqual(t, HashString("a"), HashString("b"))
}

func TestHexHash(t *testing.T) {
	require.Equal(t, "000000000000000f", HexHash(15))
	require.Len(t, HexHash(HashString("x")), 16)
}

func TestRecoverWithError(t *testing.T) {
	run := func() (err error) {
		defer RecoverWithError(&err)
		panic("boom")
	}
	err := run()
	require.EqualError(t, err, "got panic: boom")

	cause := errors.New("closed channel")
	err = func() (err error) {
		defer RecoverWithError(&err)
		panic(cause)
	}()
	require.ErrorIs(t, err, cause)

	ok := func() (err error) {
		defer RecoverWithError(&err)
		return errors.New("plain")
	}
	require.EqualError(t, ok(), "plain")
}
