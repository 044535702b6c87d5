// Package fingerprint computes content-addressed identities for recipe
// submissions. A submission is one or more images; its fingerprint is a pure
// function of the image bytes and their order.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
)

// ErrNoImages is returned when a submission carries no images at all.
var ErrNoImages = errors.New("fingerprint: submission contains no images")

// Compute hashes each image in input order, concatenates the hex digests and
// hashes the concatenation. Submitting the same images in a different order
// yields a different fingerprint; that is deliberate, a reordered submission
// is a different document.
func Compute(images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	var combined []byte
	for _, img := range images {
		sum := md5.Sum(img)
		combined = append(combined, hex.EncodeToString(sum[:])...)
	}

	final := md5.Sum(combined)
	return hex.EncodeToString(final[:]), nil
}
