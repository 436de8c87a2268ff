package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Argon2 hashes and verifies passwords. Safe for concurrent use.
type Argon2 struct {
	config Config
}

func NewArgon2(cfg Config) (*Argon2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Argon2{config: cfg}, nil
}

// Hash derives an Argon2id hash over the raw password bytes as provided,
// with no Unicode normalization, and encodes it in PHC string format.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash with the parameters recorded in encodedHash
// and compares in constant time.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// NeedsUpgrade reports whether encodedHash was produced with weaker
// parameters than the current configuration.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	if a.config.Memory > parsed.memory {
		return true, nil
	}
	if a.config.Time > parsed.time {
		return true, nil
	}
	if a.config.Parallelism > parsed.parallelism {
		return true, nil
	}
	return a.config.KeyLength != uint32(len(parsed.hash)), nil
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, errors.New("missing argon2 version")
	}
	v, err := strconv.Atoi(version)
	if err != nil || v != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	var parsed parsedPHC
	if err := parseParams(parts[3], &parsed); err != nil {
		return nil, err
	}

	parsed.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(parsed.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt")
	}
	parsed.hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(parsed.hash) == 0 {
		return nil, errors.New("invalid hash")
	}

	return &parsed, nil
}

func parseParams(part string, out *parsedPHC) error {
	var seenM, seenT, seenP bool

	for _, pair := range strings.Split(part, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("invalid parameter entry")
		}
		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return errors.New("invalid memory parameter")
			}
			out.memory = uint32(v)
			seenM = true
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return errors.New("invalid time parameter")
			}
			out.time = uint32(v)
			seenT = true
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(v)
			seenP = true
		default:
			return errors.New("unsupported parameter")
		}
	}

	if !seenM || !seenT || !seenP {
		return errors.New("missing parameters")
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	return nil
}
