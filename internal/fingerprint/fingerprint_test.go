package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeterministic(t *testing.T) {
	images := [][]byte{[]byte("image-a"), []byte("image-b")}

	first, err := Compute(images)
	require.NoError(t, err)
	second, err := Compute(images)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestComputeOrderSensitive(t *testing.T) {
	a := []byte("image-a")
	b := []byte("image-b")

	ab, err := Compute([][]byte{a, b})
	require.NoError(t, err)
	ba, err := Compute([][]byte{b, a})
	require.NoError(t, err)

	assert.NotEqual(t, ab, ba)
}

func TestComputeSingleImage(t *testing.T) {
	data := []byte("just one photo")

	got, err := Compute([][]byte{data})
	require.NoError(t, err)

	inner := md5.Sum(data)
	outer := md5.Sum([]byte(hex.EncodeToString(inner[:])))
	assert.Equal(t, hex.EncodeToString(outer[:]), got)
}

func TestComputeEmptySubmission(t *testing.T) {
	_, err := Compute(nil)
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = Compute([][]byte{})
	assert.ErrorIs(t, err, ErrNoImages)
}
