package params

const (
	SecParam  = 256
	SecBytes  = SecParam / 8
	StatParam = 80

	L            = 1 * SecParam // = 256
	Epsilon      = 2 * SecParam // = 512
	LPlusEpsilon = L + Epsilon  // = 768

	BitsIntModN  = 8 * SecParam    // = 2048
	BytesIntModN = BitsIntModN / 8 // = 256

	BitsBlumPrime = 4 * SecParam      // = 1024
	BitsTimelock  = 2 * BitsBlumPrime // = 2048

	BytesTimelock   = BitsTimelock / 8  // = 256
	BytesCiphertext = 2 * BytesTimelock // = 512
)
