package crypto

const xorChainSeed = 0x5E

// DecryptXOR decrypts BMD v12 data using chained XOR with a 16-byte key.
// Initial chain value is 0x5E. For each byte:
//
//	out[i] = ((data[i] ^ key[i&15]) - chainKey) & 0xFF
//	chainKey = (data[i] + 0x3D) & 0xFF
func DecryptXOR(data []byte, key [16]byte) []byte {
	out := make([]byte, len(data))
	chainKey := byte(xorChainSeed)

	for i, b := range data {
		out[i] = (b ^ key[i&15]) - chainKey
		chainKey = b + 0x3D
	}
	return out
}

// EncryptXOR is the inverse of DecryptXOR.
func EncryptXOR(data []byte, key [16]byte) []byte {
	out := make([]byte, len(data))
	chainKey := byte(xorChainSeed)

	for i, b := range data {
		c := (b + chainKey) ^ key[i&15]
		out[i] = c
		chainKey = c + 0x3D
	}
	return out
}
