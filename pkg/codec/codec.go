// Package codec implements the fixed-order little-endian account layout used
// by every ledger account: integers are little-endian, Option<T> is one tag
// byte (0 = None, 1 = Some) followed by T, vectors are a u32 length followed
// by their elements, and Pubkeys are 32 raw bytes.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"voterweight/pkg/domain"
)

// DiscriminatorSize is the length of the account type prefix of program-owned accounts.
const DiscriminatorSize = 8

var (
	ErrShortBuffer      = errors.New("account data too short")
	ErrBadOptionTag     = errors.New("invalid option tag")
	ErrBadDiscriminator = errors.New("account discriminator mismatch")
)

// AccountDiscriminator returns the first 8 bytes of sha256("account:<name>").
func AccountDiscriminator(name string) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorSize]byte
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// Writer appends encoded values to a growing buffer.
type Writer struct {
	buf []byte
}

func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) I8(v int8) { w.buf = append(w.buf, byte(v)) }

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
		return
	}
	w.U8(0)
}

func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *Writer) U64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

func (w *Writer) Pubkey(p domain.Pubkey) { w.buf = append(w.buf, p[:]...) }

func (w *Writer) OptionPubkey(p *domain.Pubkey) {
	if p == nil {
		w.U8(0)
		return
	}
	w.U8(1)
	w.Pubkey(*p)
}

func (w *Writer) OptionU64(v *uint64) {
	if v == nil {
		w.U8(0)
		return
	}
	w.U8(1)
	w.U64(*v)
}

func (w *Writer) OptionSlot(v *domain.Slot) {
	if v == nil {
		w.U8(0)
		return
	}
	w.U8(1)
	w.U64(uint64(*v))
}

func (w *Writer) OptionAction(v *domain.VoterWeightAction) {
	if v == nil {
		w.U8(0)
		return
	}
	w.U8(1)
	w.U8(uint8(*v))
}

// COptionPubkey writes the token program's 4-byte tagged option.
func (w *Writer) COptionPubkey(p *domain.Pubkey) {
	if p == nil {
		w.U32(0)
		w.Raw(make([]byte, domain.PubkeySize))
		return
	}
	w.U32(1)
	w.Pubkey(*p)
}

func (w *Writer) Text(s string) {
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Zeros pads the buffer with n zero bytes (reserved space, arena slack).
func (w *Writer) Zeros(n int) { w.buf = append(w.buf, make([]byte, n)...) }

// Reader decodes values from account data. The first failure is sticky:
// later reads return zero values and Err reports the original cause.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Offset() int { return r.off }

func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, len(r.data))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Discriminator consumes an 8-byte prefix and fails unless it equals want.
func (r *Reader) Discriminator(want [DiscriminatorSize]byte) {
	b := r.take(DiscriminatorSize)
	if b == nil {
		return
	}
	if [DiscriminatorSize]byte(b) != want {
		r.err = ErrBadDiscriminator
	}
}

func (r *Reader) Skip(n int) { r.take(n) }

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) I8() int8 { return int8(r.U8()) }

func (r *Reader) Bool() bool {
	switch v := r.U8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = fmt.Errorf("invalid bool byte %d", v)
		}
		return false
	}
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) I64() int64 { return int64(r.U64()) }

func (r *Reader) F64() float64 { return math.Float64frombits(r.U64()) }

func (r *Reader) Pubkey() domain.Pubkey {
	b := r.take(domain.PubkeySize)
	if b == nil {
		return domain.Pubkey{}
	}
	return domain.Pubkey(b)
}

func (r *Reader) optionTag() bool {
	switch tag := r.U8(); tag {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: %d", ErrBadOptionTag, tag)
		}
		return false
	}
}

func (r *Reader) OptionPubkey() *domain.Pubkey {
	if !r.optionTag() {
		return nil
	}
	p := r.Pubkey()
	return &p
}

func (r *Reader) OptionU64() *uint64 {
	if !r.optionTag() {
		return nil
	}
	v := r.U64()
	return &v
}

func (r *Reader) OptionSlot() *domain.Slot {
	if !r.optionTag() {
		return nil
	}
	v := domain.Slot(r.U64())
	return &v
}

func (r *Reader) OptionAction() *domain.VoterWeightAction {
	if !r.optionTag() {
		return nil
	}
	v := domain.VoterWeightAction(r.U8())
	if !v.IsValid() && r.err == nil {
		r.err = fmt.Errorf("invalid voter weight action %d", uint8(v))
	}
	return &v
}

func (r *Reader) COptionPubkey() *domain.Pubkey {
	tag := r.U32()
	p := r.Pubkey()
	switch tag {
	case 0:
		return nil
	case 1:
		return &p
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: %d", ErrBadOptionTag, tag)
		}
		return nil
	}
}

func (r *Reader) Text() string {
	n := r.U32()
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}
