package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "keepsake/pkg/domain-errors"
)

// Identity is an account address that can own, approve, or administer records.
// Invariant: a parsed Identity is "0x" followed by 40 hex digits in EIP-55
// checksum form, so two spellings of the same account always compare equal.
//
// The zero value and the all-zero address are both the null identity.
type Identity string

// NilIdentity is the canonical null identity.
const NilIdentity Identity = ""

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ParseIdentity constructs an Identity from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or
// mixed-case with a checksum that does not match.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != 40 {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity must be a 0x-prefixed 20-byte hex address")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity must be a 0x-prefixed 20-byte hex address")
	}

	checksummed := checksumAddress(body)
	if isMixedCase(body) && "0x"+body != checksummed {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity checksum mismatch")
	}
	return Identity(checksummed), nil
}

// MustParseIdentity is ParseIdentity for constants and tests.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsNil reports whether the identity is the null identity.
func (i Identity) IsNil() bool {
	return i == NilIdentity || strings.EqualFold(string(i), zeroAddress)
}

func (i Identity) String() string {
	return string(i)
}

// checksumAddress applies EIP-55 mixed-case encoding to a 40-digit hex body.
func checksumAddress(body string) string {
	lower := strings.ToLower(body)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// ContentID identifies a Content descriptor. IDs start at 1; zero is never assigned.
type ContentID uint64

// RecordID identifies a Record. IDs are unique across the whole registry and
// start at 1; zero is never assigned.
type RecordID uint64

// ParseContentID parses a decimal content identifier from a path or CLI argument.
func ParseContentID(s string) (ContentID, error) {
	v, err := parsePositive(s, "content id")
	return ContentID(v), err
}

// ParseRecordID parses a decimal record identifier from a path or CLI argument.
func ParseRecordID(s string) (RecordID, error) {
	v, err := parsePositive(s, "record id")
	return RecordID(v), err
}

func parsePositive(s, label string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return v, nil
}

func (c ContentID) String() string { return strconv.FormatUint(uint64(c), 10) }
func (r RecordID) String() string  { return strconv.FormatUint(uint64(r), 10) }
