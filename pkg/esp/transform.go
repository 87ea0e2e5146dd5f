package esp

import (
	"encoding/binary"
	"hash/fnv"
)

// The transforms below only give packets a believable shape. They are
// deterministic per key and carry no secrecy.

func digest(key []byte, parts ...[]byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(key)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum64()
}

// keystream expands key and seed into n bytes.
func keystream(key []byte, seed uint64, n int) []byte {
	out := make([]byte, 0, n+8)
	var block [16]byte
	binary.BigEndian.PutUint64(block[:8], seed)
	for i := uint64(0); len(out) < n; i++ {
		binary.BigEndian.PutUint64(block[8:], i)
		out = binary.BigEndian.AppendUint64(out, digest(key, block[:]))
	}
	return out[:n]
}

func xor(data, stream []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ stream[i]
	}
	return out
}

func u64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func makeIV(key []byte, seq uint64, size int) []byte {
	return keystream(key, digest(key, []byte("iv"), u64(seq)), size)
}

func encrypt(key, iv, plain []byte) []byte {
	return xor(plain, keystream(key, digest(key, iv), len(plain)))
}

func decrypt(key, iv, cipher []byte) []byte {
	return encrypt(key, iv, cipher)
}

// makeICV is a keyed digest over the ESP header and payload truncated to
// size bytes.
func makeICV(key []byte, spi uint32, seq uint64, iv, cipher []byte, size int) []byte {
	head := binary.BigEndian.AppendUint32(nil, spi)
	return keystream(key, digest(key, head, u64(seq), iv, cipher), size)
}
