package emu

// Memory is the guest's flat, byte-addressed address space: a single
// buffer from 0 to Size(), carrying a [textStart, textEnd) range,
// installed with SetTextRange, that holds executable code. Loads are permitted anywhere
// (instruction fetch needs to read the text range); stores into the
// text range are rejected with ErrTextSegmentWrite.
//
// All multi-byte accesses are little-endian, and unaligned accesses are
// permitted — RV32I requires it, and natural alignment is never
// enforced here.
type Memory struct {
	buf       []byte
	textStart uint32
	textEnd   uint32
}

// NewMemory creates a zeroed guest memory of the given size with no text
// range installed (TextStart == TextEnd == 0, so no address is
// initially protected).
func NewMemory(size uint32) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// SetTextRange installs the half-open code range [start, end).
func (m *Memory) SetTextRange(start, end uint32) {
	m.textStart = start
	m.textEnd = end
}

// TextRange returns the installed [start, end) code range.
func (m *Memory) TextRange() (start, end uint32) {
	return m.textStart, m.textEnd
}

// Size returns the memory's length in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.buf))
}

// InText reports whether addr falls inside [TextStart, TextEnd).
func (m *Memory) InText(addr uint32) bool {
	return addr >= m.textStart && addr < m.textEnd
}

func (m *Memory) checkBounds(addr uint32, width uint32) error {
	if uint64(addr)+uint64(width) > uint64(len(m.buf)) {
		return segfaultAt(addr)
	}
	return nil
}

// ReadU8 reads a single byte at addr.
func (m *Memory) ReadU8(addr uint32) (uint8, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return m.buf[addr], nil
}

// ReadU16 reads a little-endian halfword at addr.
func (m *Memory) ReadU16(addr uint32) (uint16, error) {
	if err := m.checkBounds(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.buf[addr]) | uint16(m.buf[addr+1])<<8, nil
}

// ReadU32 reads a little-endian word at addr.
func (m *Memory) ReadU32(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 4); err != nil {
		return 0, err
	}
	return uint32(m.buf[addr]) |
		uint32(m.buf[addr+1])<<8 |
		uint32(m.buf[addr+2])<<16 |
		uint32(m.buf[addr+3])<<24, nil
}

// ReadI8 reads a byte at addr and sign-extends it to 32 bits.
func (m *Memory) ReadI8(addr uint32) (uint32, error) {
	v, err := m.ReadU8(addr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int8(v))), nil
}

// ReadI16 reads a halfword at addr and sign-extends it to 32 bits.
func (m *Memory) ReadI16(addr uint32) (uint32, error) {
	v, err := m.ReadU16(addr)
	if err != nil {
		return 0, err
	}
	return uint32(int32(int16(v))), nil
}

// WriteU8 writes a single byte at addr. Rejected if addr is in the text range.
func (m *Memory) WriteU8(addr uint32, value uint8) error {
	if err := m.checkBounds(addr, 1); err != nil {
		return err
	}
	if m.InText(addr) {
		return textWriteAt(addr)
	}
	m.buf[addr] = value
	return nil
}

// WriteU16 writes a little-endian halfword at addr. Rejected if any byte
// of the access falls in the text range.
func (m *Memory) WriteU16(addr uint32, value uint16) error {
	if err := m.checkBounds(addr, 2); err != nil {
		return err
	}
	if m.InText(addr) || m.InText(addr+1) {
		return textWriteAt(addr)
	}
	m.buf[addr] = byte(value)
	m.buf[addr+1] = byte(value >> 8)
	return nil
}

// WriteU32 writes a little-endian word at addr. Rejected if any byte of
// the access falls in the text range.
func (m *Memory) WriteU32(addr uint32, value uint32) error {
	if err := m.checkBounds(addr, 4); err != nil {
		return err
	}
	if m.InText(addr) || m.InText(addr+1) || m.InText(addr+2) || m.InText(addr+3) {
		return textWriteAt(addr)
	}
	m.buf[addr] = byte(value)
	m.buf[addr+1] = byte(value >> 8)
	m.buf[addr+2] = byte(value >> 16)
	m.buf[addr+3] = byte(value >> 24)
	return nil
}

// RawView returns length bytes starting at addr, for use by
// debugger-style tooling. The slice shares the underlying buffer (it is
// not a copy), so writes through it reach guest memory without any text
// range check. It does not check the text range since reads are always
// permitted there; it still bounds-checks against the buffer's size.
func (m *Memory) RawView(addr, length uint32) ([]byte, error) {
	if err := m.checkBounds(addr, length); err != nil {
		return nil, err
	}
	return m.buf[addr : addr+length], nil
}
