package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	var nilPointer *int
	var nilMap map[string]int

	require.Panics(t, func() { NotNil(nil) })
	require.Panics(t, func() { NotNil(nilPointer) })
	require.Panics(t, func() { NotNil(nilMap) })

	value := 3
	require.NotPanics(t, func() { NotNil(&value) })
	require.NotPanics(t, func() { NotNil(value) })
}

func TestNotEmptyStr(t *testing.T) {
	require.Panics(t, func() { NotEmptyStr("") })
	require.NotPanics(t, func() { NotEmptyStr("12345") })
}
