package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultIterations is the PBKDF2 iteration count.
	DefaultIterations = 10000
	// DefaultKeyLen selects AES-256.
	DefaultKeyLen = 32
	// DefaultWorkers bounds concurrent row encryption.
	DefaultWorkers = 4
)

// ErrCorruptCell indicates a cell that is not valid ciphertext for this key.
var ErrCorruptCell = errors.New("encrypted cell cannot be opened")

// KeyParams derives the table key from a password.
type KeyParams struct {
	Password   string
	Salt       []byte
	Iterations int // zero uses DefaultIterations
	KeyLen     int // 16, 24 or 32; zero uses DefaultKeyLen
}

// Cipher seals individual cells with AES-GCM. A sealed cell is the base64
// encoding of nonce(12) || ciphertext || tag(16). Empty cells stay empty.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a key with PBKDF2-HMAC-SHA256 and prepares AES-GCM.
func NewCipher(p KeyParams) (*Cipher, error) {
	if p.Password == "" {
		return nil, errors.New("vault password is empty")
	}
	iterations := p.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	keyLen := p.KeyLen
	if keyLen == 0 {
		keyLen = DefaultKeyLen
	}
	switch keyLen {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key length must be 16, 24 or 32 bytes, got %d", keyLen)
	}

	key := pbkdf2.Key([]byte(p.Password), p.Salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts one cell with a fresh random nonce.
func (c *Cipher) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts one sealed cell.
func (c *Cipher) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptCell, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: %d bytes is too short", ErrCorruptCell, len(raw))
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptCell, err)
	}
	return string(plain), nil
}

// SealTable encrypts every cell, one row per goroutine, at most workers at a time.
func (c *Cipher) SealTable(ctx context.Context, rows [][]string, workers int) ([][]string, error) {
	return mapTable(ctx, rows, workers, c.Seal)
}

// OpenTable decrypts every cell of a sealed table.
func (c *Cipher) OpenTable(ctx context.Context, rows [][]string, workers int) ([][]string, error) {
	return mapTable(ctx, rows, workers, c.Open)
}

func mapTable(ctx context.Context, rows [][]string, workers int, fn func(string) (string, error)) ([][]string, error) {
	out := make([][]string, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)

	for i, row := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := make([]string, len(row))
			for j, cell := range row {
				v, err := fn(cell)
				if err != nil {
					return fmt.Errorf("row %d column %d: %w", i, j, err)
				}
				res[j] = v
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
