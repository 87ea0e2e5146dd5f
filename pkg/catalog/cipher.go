package catalog

// Cipher describes the sizes an ESP transform puts on the wire.
type Cipher struct {
	Name      string
	BlockSize int
	IVSize    int
	ICVSize   int
	AEAD      bool
}

var ciphers = map[string]Cipher{
	"aes128":      {Name: "aes128", BlockSize: 16, IVSize: 16},
	"aes256":      {Name: "aes256", BlockSize: 16, IVSize: 16},
	"aes256gcm16": {Name: "aes256gcm16", BlockSize: 4, IVSize: 8, ICVSize: 16, AEAD: true},
	"3des":        {Name: "3des", BlockSize: 8, IVSize: 8},
}

// truncated HMAC lengths, RFC 4868 and RFC 2404.
var icvSizes = map[string]int{
	"md5":    12,
	"sha1":   12,
	"sha256": 16,
	"sha384": 24,
	"sha512": 32,
}

// GetCipher resolves an encryption/integrity pair into wire sizes. An
// unknown cipher falls back to the ESP minimum of 4 byte alignment.
func GetCipher(encryption, integrity string) Cipher {
	c, ok := ciphers[encryption]
	if !ok {
		c = Cipher{Name: encryption, BlockSize: 4, IVSize: 8}
	}
	if !c.AEAD {
		if size, ok := icvSizes[integrity]; ok {
			c.ICVSize = size
		} else {
			c.ICVSize = 12
		}
	}
	return c
}
