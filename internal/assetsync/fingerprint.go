package assetsync

import (
	"bytes"
	"image"
	"math/bits"
	"sync"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/style-genie/internal/overlay"
)

// nearDuplicateDistance is the largest dHash Hamming distance treated as the same picture.
const nearDuplicateDistance = 4

// differenceHash computes a 64-bit dHash: the image is shrunk to 9x8 grey
// pixels and each bit records whether a pixel is brighter than its right neighbor.
func differenceHash(data []byte, source string) (uint64, error) {
	img, err := overlay.DecodeImage(bytes.NewReader(data), source)
	if err != nil {
		return 0, err
	}

	small := image.NewGray(image.Rect(0, 0, 9, 8))
	// Transparent hairstyle backgrounds compare as white.
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	draw.BiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)

	var hash uint64
	for y := range 8 {
		for x := range 8 {
			hash <<= 1
			if small.GrayAt(x, y).Y > small.GrayAt(x+1, y).Y {
				hash |= 1
			}
		}
	}
	return hash, nil
}

func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// seenImages remembers the hashes imported during one run.
type seenImages struct {
	mu     sync.Mutex
	hashes map[uint64]string
}

func newSeenImages() *seenImages {
	return &seenImages{hashes: make(map[uint64]string)}
}

// claim records hash for key unless a near-identical image was already
// claimed, in which case it returns that image's key.
func (s *seenImages) claim(hash uint64, key string) (duplicateOf string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for seen, seenKey := range s.hashes {
		if hammingDistance(seen, hash) <= nearDuplicateDistance {
			return seenKey, false
		}
	}
	s.hashes[hash] = key
	return "", true
}
