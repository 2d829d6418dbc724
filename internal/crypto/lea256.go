package crypto

import (
	"encoding/binary"
	"math/bits"
)

// LEA-256 key-schedule constants.
var leaDelta = [8]uint32{
	0xc3efe9db, 0x44626b02, 0x79e27c8a, 0x78df30ec,
	0x715ea49e, 0xc785da0a, 0xe04ef22a, 0xe5c40957,
}

const (
	leaRounds    = 32
	leaBlockSize = 16
)

var leaShifts = [6]int{1, 3, 6, 11, 13, 17}

type leaRoundKeys [leaRounds][6]uint32

func expandLEAKey(key [32]byte) *leaRoundKeys {
	var t [8]uint32
	for i := range t {
		t[i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	rk := new(leaRoundKeys)
	for i := 0; i < leaRounds; i++ {
		d := leaDelta[i%8]
		s := (i * 6) % 8
		for j := 0; j < 6; j++ {
			w := (s + j) % 8
			t[w] = bits.RotateLeft32(t[w]+bits.RotateLeft32(d, i+j), leaShifts[j])
			rk[i][j] = t[w]
		}
	}
	return rk
}

type leaState [4]uint32

func (s *leaState) encrypt(rk *leaRoundKeys) {
	for r := 0; r < leaRounds; r++ {
		k := &rk[r]
		*s = leaState{
			bits.RotateLeft32((s[0]^k[0])+(s[1]^k[1]), 9),
			bits.RotateLeft32((s[1]^k[2])+(s[2]^k[3]), -5),
			bits.RotateLeft32((s[2]^k[4])+(s[3]^k[5]), -3),
			s[0],
		}
	}
}

func (s *leaState) decrypt(rk *leaRoundKeys) {
	for r := leaRounds - 1; r >= 0; r-- {
		k := &rk[r]
		x0 := s[3]
		x1 := (bits.RotateLeft32(s[0], -9) - (x0 ^ k[0])) ^ k[1]
		x2 := (bits.RotateLeft32(s[1], 5) - (x1 ^ k[2])) ^ k[3]
		x3 := (bits.RotateLeft32(s[2], 3) - (x2 ^ k[4])) ^ k[5]
		*s = leaState{x0, x1, x2, x3}
	}
}

// leaECB runs step over every whole 16-byte block. A trailing partial block
// is left zeroed in the output.
func leaECB(data []byte, key [32]byte, step func(*leaState, *leaRoundKeys)) []byte {
	rk := expandLEAKey(key)
	out := make([]byte, len(data))
	for off := 0; off+leaBlockSize <= len(data); off += leaBlockSize {
		var s leaState
		for i := range s {
			s[i] = binary.LittleEndian.Uint32(data[off+i*4:])
		}
		step(&s, rk)
		for i := range s {
			binary.LittleEndian.PutUint32(out[off+i*4:], s[i])
		}
	}
	return out
}

// DecryptLEA decrypts data with LEA-256 in ECB mode.
// The input length must be a multiple of 16.
func DecryptLEA(data []byte, key [32]byte) []byte {
	return leaECB(data, key, (*leaState).decrypt)
}

// EncryptLEA is the inverse of DecryptLEA.
func EncryptLEA(data []byte, key [32]byte) []byte {
	return leaECB(data, key, (*leaState).encrypt)
}
