// File: dns/packet.go
// Author: momentics <momentics@gmail.com>
//
// Own wire-format codec for the subset of RFC 1035 this repository needs:
// a 12-byte header, four sections, and only the A/PTR/IN record shapes.
// Grounded on no pack dependency (this repo owns the codec per spec.md §1
// "the core" boundary) but shaped after the struct-and-method layout the
// other_examples DNS files use (vimarsh244-dns__types.go,
// PhantomInTheWire-picodns__resolver.go): explicit bit-field header,
// length-prefixed label encoding, pointer-compression decoding with
// bounded recursion.

package dns

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// Resource record types and class this repository interprets.
const (
	TypeA   uint16 = 1
	TypePTR uint16 = 12
	ClassIN uint16 = 1
)

const (
	maxLabelLength    = 63
	maxPointerDepth   = 16
	maxNameIterations = 32
)

// Header is the 12-byte DNS message header (RFC 1035 §4.1.1).
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

const (
	flagQR = 1 << 15
	flagAA = 1 << 10
	flagTC = 1 << 9
	flagRD = 1 << 8
	flagRA = 1 << 7
)

// QR reports the response bit.
func (h Header) QR() bool { return h.Flags&flagQR != 0 }

// Opcode extracts the 4-bit opcode field.
func (h Header) Opcode() int { return int(h.Flags>>11) & 0xF }

// Rcode extracts the 4-bit response-code field.
func (h Header) Rcode() int { return int(h.Flags) & 0xF }

const (
	RcodeNoError  = 0
	RcodeNameErr  = 3
)

// Question is one entry of the question section.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// ResourceRecord is one answer/authority/additional section entry. Only
// A and PTR rdata are interpreted; anything else is kept as raw bytes.
type ResourceRecord struct {
	Name    string
	Type    uint16
	Class   uint16
	TTL     uint32
	A       [4]byte
	PTRName string
	RawData []byte
}

// Message is a full DNS packet.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// NewQuery builds a standard recursive query: opcode 0, RD=1, a single
// question, random id supplied by the caller.
func NewQuery(id uint16, name string, qtype uint16) *Message {
	return &Message{
		Header: Header{
			ID:      id,
			Flags:   flagRD,
			QDCount: 1,
		},
		Questions: []Question{{Name: name, Type: qtype, Class: ClassIN}},
	}
}

// Marshal serializes the header and question section of m. The answer,
// authority and additional records are not written, although the header's
// ANCOUNT/NSCOUNT/ARCOUNT are taken from the lengths of those slices, so
// only a message with empty record sections round-trips through Parse.
// Outbound names are never compressed: this repository only ever sends
// single-question queries, where compression buys nothing.
func Marshal(m *Message) ([]byte, error) {
	var buf []byte
	buf = appendUint16(buf, m.Header.ID)
	buf = appendUint16(buf, m.Header.Flags)
	buf = appendUint16(buf, uint16(len(m.Questions)))
	buf = appendUint16(buf, uint16(len(m.Answers)))
	buf = appendUint16(buf, uint16(len(m.Authority)))
	buf = appendUint16(buf, uint16(len(m.Additional)))

	for _, q := range m.Questions {
		encoded, err := encodeName(q.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, encoded...)
		buf = appendUint16(buf, q.Type)
		buf = appendUint16(buf, q.Class)
	}
	return buf, nil
}

// encodeName writes name as length-prefixed labels terminated by a zero
// byte, rejecting any label over 63 bytes.
func encodeName(name string) ([]byte, error) {
	var out []byte
	for _, label := range strings.Split(strings.TrimSuffix(name, "."), ".") {
		if label == "" {
			continue
		}
		if len(label) > maxLabelLength {
			return nil, errors.Errorf("dns: label %q exceeds %d bytes", label, maxLabelLength)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	return out, nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// Unmarshal parses data into a Message, enforcing the compression and
// label-length bounds spec.md requires against adversarial input.
func Unmarshal(data []byte) (*Message, error) {
	d := &decoder{data: data}

	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	m := &Message{Header: h}

	for i := 0; i < int(h.QDCount); i++ {
		q, err := d.readQuestion()
		if err != nil {
			return nil, err
		}
		m.Questions = append(m.Questions, q)
	}
	for _, count := range []struct {
		n   int
		out *[]ResourceRecord
	}{
		{int(h.ANCount), &m.Answers},
		{int(h.NSCount), &m.Authority},
		{int(h.ARCount), &m.Additional},
	} {
		for i := 0; i < count.n; i++ {
			rr, err := d.readRR()
			if err != nil {
				return nil, err
			}
			*count.out = append(*count.out, rr)
		}
	}
	return m, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) need(n int) error {
	if d.pos+n > len(d.data) {
		return errors.New("dns: packet truncated")
	}
	return nil
}

func (d *decoder) readUint16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) readHeader() (Header, error) {
	var h Header
	var err error
	if h.ID, err = d.readUint16(); err != nil {
		return h, err
	}
	if h.Flags, err = d.readUint16(); err != nil {
		return h, err
	}
	if h.QDCount, err = d.readUint16(); err != nil {
		return h, err
	}
	if h.ANCount, err = d.readUint16(); err != nil {
		return h, err
	}
	if h.NSCount, err = d.readUint16(); err != nil {
		return h, err
	}
	if h.ARCount, err = d.readUint16(); err != nil {
		return h, err
	}
	return h, nil
}

func (d *decoder) readQuestion() (Question, error) {
	var q Question
	name, err := d.readName()
	if err != nil {
		return q, err
	}
	q.Name = name
	if q.Type, err = d.readUint16(); err != nil {
		return q, err
	}
	if q.Class, err = d.readUint16(); err != nil {
		return q, err
	}
	return q, nil
}

func (d *decoder) readRR() (ResourceRecord, error) {
	var rr ResourceRecord
	name, err := d.readName()
	if err != nil {
		return rr, err
	}
	rr.Name = name
	if rr.Type, err = d.readUint16(); err != nil {
		return rr, err
	}
	if rr.Class, err = d.readUint16(); err != nil {
		return rr, err
	}
	if rr.TTL, err = d.readUint32(); err != nil {
		return rr, err
	}
	rdlength, err := d.readUint16()
	if err != nil {
		return rr, err
	}
	rdataEnd := d.pos + int(rdlength)
	if err := d.need(int(rdlength)); err != nil {
		return rr, err
	}

	switch rr.Type {
	case TypeA:
		if rdlength != 4 {
			return rr, errors.New("dns: malformed A record")
		}
		copy(rr.A[:], d.data[d.pos:d.pos+4])
		d.pos += 4
	case TypePTR:
		name, err := d.readName()
		if err != nil {
			return rr, err
		}
		rr.PTRName = name
	default:
		rr.RawData = append([]byte{}, d.data[d.pos:rdataEnd]...)
		d.pos = rdataEnd
	}

	if d.pos != rdataEnd {
		return rr, errors.New("dns: rdata length mismatch")
	}
	return rr, nil
}

// readName decodes a domain name starting at d.pos, following
// pointer-compression jumps within the bounds spec.md requires: label
// length <= 63, compression depth <= 16, total label/pointer iterations
// <= 32 per name.
func (d *decoder) readName() (string, error) {
	var labels []string
	pos := d.pos
	jumped := false
	depth := 0

	for iterations := 0; ; iterations++ {
		if iterations >= maxNameIterations {
			return "", errors.New("dns: name exceeds iteration bound")
		}
		if pos >= len(d.data) {
			return "", errors.New("dns: name decode out of bounds")
		}
		b := d.data[pos]

		if b == 0 {
			pos++
			if !jumped {
				d.pos = pos
			}
			break
		}

		if b&0xC0 == 0xC0 {
			if pos+1 >= len(d.data) {
				return "", errors.New("dns: truncated compression pointer")
			}
			depth++
			if depth > maxPointerDepth {
				return "", errors.New("dns: compression depth exceeded")
			}
			ptr := int(b&0x3F)<<8 | int(d.data[pos+1])
			if !jumped {
				d.pos = pos + 2
				jumped = true
			}
			pos = ptr
			continue
		}

		length := int(b)
		if length > maxLabelLength {
			return "", errors.Errorf("dns: label exceeds %d bytes", maxLabelLength)
		}
		pos++
		if pos+length > len(d.data) {
			return "", errors.New("dns: truncated label")
		}
		labels = append(labels, string(d.data[pos:pos+length]))
		pos += length
	}

	return strings.Join(labels, "."), nil
}
