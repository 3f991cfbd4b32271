package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string into a most-significant-bit-
// first byte stream.
//
// The BitGen format allows bit-streams to be generated from a series of
// tokens describing bits in the resulting string. The format is designed for
// testing purposes: it aids a human in manually scripting a bit sequence,
// succinctly, while allowing comments to document authorial intent.
//
// Unlike the variable bit-order BitGen dialect used by LSB-first wire
// formats, this dialect always packs most-significant-bit first (bit 0 of
// the logical sequence is the MSB of the first output byte), matching the
// bit order this library exposes everywhere else.
//
// The format consists of a series of tokens separated by white space of any
// kind. The '#' character starts a comment that runs to the end of the line.
//
// A token matching "[01]{1,64}" is a literal bit-string (e.g. "11010"); its
// left-most bit is written first.
//
// A token matching "D[0-9]+:[0-9]+" or "H[0-9]+:[0-9a-fA-F]{1,16}" is a
// decimal or hexadecimal value, respectively. The first number gives the
// bit-length (0-64) of the resulting bit-string; the second gives the value,
// written most-significant-bit first.
//
// A token matching "X:[0-9a-fA-F]+" is literal bytes in hexadecimal. It may
// only be used when the bit-stream produced so far is byte-aligned.
//
// A trailing "[*][0-9]+" quantifier repeats the token that many times.
//
// If the total bit-stream does not end on a byte boundary, it is padded with
// zero bits up to the next byte.
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		for _, t := range strings.Split(s, " ") {
			t = strings.TrimSpace(t)
			if len(t) > 0 {
				toks = append(toks, t)
			}
		}
	}

	var bw bitBuffer
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			tt, tn := t[:i], t[i+1:]
			n, err := strconv.Atoi(tn)
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v <<= 1
				v |= uint64(b - '0')
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			tb, tn, tv := t[0], t[1:i], t[i+1:]

			base := 10
			if tb == 'H' {
				base = 16
			}

			n, err1 := strconv.Atoi(tn)
			v, err2 := strconv.ParseUint(tv, base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits(v, uint(n))
			}
		case reRaw.MatchString(t):
			tx := t[2:]
			b, err := hex.DecodeString(tx)
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			b = bytes.Repeat(b, rep)
			if err := bw.WriteAligned(b); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bw.Bytes(), nil
}

// bitBuffer is a minimal MSB-first bit accumulator, used here to avoid a
// dependency cycle with the root bitform package (which these helpers are
// used to test).
type bitBuffer struct {
	b    []byte
	bits uint // number of valid bits in the trailing byte
}

func (b *bitBuffer) WriteAligned(buf []byte) error {
	if b.bits != 0 {
		return errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return nil
}

func (b *bitBuffer) WriteBits(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		bit := byte(v>>(n-1-i)) & 1
		if b.bits == 0 {
			b.b = append(b.b, 0)
		}
		b.b[len(b.b)-1] |= bit << (7 - b.bits)
		b.bits++
		if b.bits == 8 {
			b.bits = 0
		}
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
