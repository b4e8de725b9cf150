package gencoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Decoder_knownNames(t *testing.T) {
	testCases := []string{"UTF-8", "ISO-8859-1", "Windows-1252", "US-ASCII"}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			enc, err := Decoder(name)
			require.NoError(err)
			require.NotNil(enc)
		})
	}
}

func Test_Decoder_unknownNameIsError(t *testing.T) {
	require := require.New(t)

	_, err := Decoder("not-a-real-encoding")
	require.Error(err)
}

func Test_ToUTF8_plainASCIIRoundTrips(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	out, err := ToUTF8([]byte("grammar Foo;"), "UTF-8")
	require.NoError(err)
	assert.Equal("grammar Foo;", out)
}

func Test_ToUTF8_latin1DecodesHighBytes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// 0xE9 in ISO-8859-1 is U+00E9 (e acute).
	out, err := ToUTF8([]byte{'e', 0xE9}, "ISO-8859-1")
	require.NoError(err)
	assert.Equal("eé", out)
}

func Test_ToUTF8_unknownEncodingIsError(t *testing.T) {
	require := require.New(t)

	_, err := ToUTF8([]byte("x"), "bogus")
	require.Error(err)
}
