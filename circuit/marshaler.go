package circuit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/OrtegaSA/cqc-qhe-repo/utils/buffer"
)

// magic prefixes every serialized circuit. The trailing byte versions the
// format.
var magic = [4]byte{'C', 'Q', 'C', '1'}

// BinarySize returns the serialized size of the object in bytes.
func (c *Circuit) BinarySize() (size int) {

	size = len(magic)

	size += 4 // #qregs
	for _, r := range c.qregs {
		size += 4 + len(r.Name) + 4
	}

	size += 4 // #cregs
	for _, r := range c.cregs {
		size += 4 + len(r.Name) + 4
	}

	size += 4 // #insts
	for _, inst := range c.insts {
		size += instBinarySize(inst)
	}

	return
}

func instBinarySize(inst *Instruction) (size int) {
	size = 1 + 1 // gate, condition flag
	if inst.Cond != nil {
		size += 4 + 1
	}
	size += 4 + len(inst.Qubits)<<2
	size += 4 + len(inst.Clbits)<<2
	size += 4 + len(inst.Params)<<3
	return
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/buffer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see utils/buffer/buffer.go).
func (c *Circuit) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.Write(w, magic[:]); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteUint32(w, uint32(len(c.qregs))); err != nil {
			return n + inc, err
		}
		n += inc

		for _, r := range c.qregs {
			if inc, err = buffer.WriteString(w, r.Name); err != nil {
				return n + inc, err
			}
			n += inc
			if inc, err = buffer.WriteUint32(w, uint32(r.size)); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.WriteUint32(w, uint32(len(c.cregs))); err != nil {
			return n + inc, err
		}
		n += inc

		for _, r := range c.cregs {
			if inc, err = buffer.WriteString(w, r.Name); err != nil {
				return n + inc, err
			}
			n += inc
			if inc, err = buffer.WriteUint32(w, uint32(r.size)); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.WriteUint32(w, uint32(len(c.insts))); err != nil {
			return n + inc, err
		}
		n += inc

		for _, inst := range c.insts {
			if inc, err = writeInstruction(w, inst); err != nil {
				return n + inc, err
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return c.WriteTo(bufio.NewWriter(w))
	}
}

func writeInstruction(w buffer.Writer, inst *Instruction) (n int64, err error) {

	var inc int64

	if inc, err = buffer.WriteUint8(w, uint8(inst.Gate)); err != nil {
		return n + inc, err
	}
	n += inc

	var hasCond uint8
	if inst.Cond != nil {
		hasCond = 1
	}

	if inc, err = buffer.WriteUint8(w, hasCond); err != nil {
		return n + inc, err
	}
	n += inc

	if inst.Cond != nil {
		if inc, err = buffer.WriteUint32(w, uint32(inst.Cond.Clbit)); err != nil {
			return n + inc, err
		}
		n += inc
		if inc, err = buffer.WriteUint8(w, inst.Cond.Value); err != nil {
			return n + inc, err
		}
		n += inc
	}

	for _, bits := range [2][]int{inst.Qubits, inst.Clbits} {

		if inc, err = buffer.WriteUint32(w, uint32(len(bits))); err != nil {
			return n + inc, err
		}
		n += inc

		for _, b := range bits {
			if inc, err = buffer.WriteUint32(w, uint32(b)); err != nil {
				return n + inc, err
			}
			n += inc
		}
	}

	if inc, err = buffer.WriteUint32(w, uint32(len(inst.Params))); err != nil {
		return n + inc, err
	}
	n += inc

	if inc, err = buffer.WriteFloat64Slice(w, inst.Params); err != nil {
		return n + inc, err
	}
	n += inc

	return
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader. Since this requires allocation, it
// is preferable to pass a buffer.Reader directly:
//
//   - When reading multiple values from a io.Reader, it is preferable to first
//     first wrap io.Reader in a pre-allocated bufio.Reader.
//   - When reading from a var b []byte, it is preferable to pass a buffer.NewBuffer(b)
//     as w (see utils/buffer/buffer.go).
func (c *Circuit) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int

		var head [4]byte
		if inc, err = buffer.ReadUint8Slice(r, head[:]); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if !bytes.Equal(head[:], magic[:]) {
			return n, fmt.Errorf("cannot ReadFrom: invalid magic %q", head[:])
		}

		c.qregs = nil
		c.cregs = nil
		c.insts = nil

		var count uint32
		if inc, err = buffer.ReadUint32(r, &count); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		for i := 0; i < int(count); i++ {

			var name string
			var size uint32

			if inc, err = buffer.ReadString(r, &name); err != nil {
				return n + int64(inc), err
			}
			n += int64(inc)

			if inc, err = buffer.ReadUint32(r, &size); err != nil {
				return n + int64(inc), err
			}
			n += int64(inc)

			if _, err = c.AddRegister(name, int(size)); err != nil {
				return n, fmt.Errorf("cannot ReadFrom: %w", err)
			}
		}

		if inc, err = buffer.ReadUint32(r, &count); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		for i := 0; i < int(count); i++ {

			var name string
			var size uint32

			if inc, err = buffer.ReadString(r, &name); err != nil {
				return n + int64(inc), err
			}
			n += int64(inc)

			if inc, err = buffer.ReadUint32(r, &size); err != nil {
				return n + int64(inc), err
			}
			n += int64(inc)

			if _, err = c.AddClassicalRegister(name, int(size)); err != nil {
				return n, fmt.Errorf("cannot ReadFrom: %w", err)
			}
		}

		if inc, err = buffer.ReadUint32(r, &count); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		for i := 0; i < int(count); i++ {

			var inst Instruction
			var inc64 int64

			if inc64, err = readInstruction(r, &inst); err != nil {
				return n + inc64, err
			}
			n += inc64

			if err = c.Append(inst); err != nil {
				return n, fmt.Errorf("cannot ReadFrom: %w", err)
			}
		}

		return n, nil

	default:
		return c.ReadFrom(bufio.NewReader(r))
	}
}

func readInstruction(r buffer.Reader, inst *Instruction) (n int64, err error) {

	var inc int

	var gate uint8
	if inc, err = buffer.ReadUint8(r, &gate); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	if Gate(gate) > gateMax {
		return n, fmt.Errorf("cannot ReadFrom: unknown gate opcode %d", gate)
	}

	inst.Gate = Gate(gate)

	var hasCond uint8
	if inc, err = buffer.ReadUint8(r, &hasCond); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	if hasCond == 1 {

		var clbit uint32
		var value uint8

		if inc, err = buffer.ReadUint32(r, &clbit); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if inc, err = buffer.ReadUint8(r, &value); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		inst.Cond = &Condition{Clbit: int(clbit), Value: value}
	}

	for _, bits := range [2]*[]int{&inst.Qubits, &inst.Clbits} {

		var count uint32
		if inc, err = buffer.ReadUint32(r, &count); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		if count == 0 {
			continue
		}

		u32 := make([]uint32, count)
		if inc, err = buffer.ReadUint32Slice(r, u32); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)

		*bits = make([]int, count)
		for j, v := range u32 {
			(*bits)[j] = int(v)
		}
	}

	var count uint32
	if inc, err = buffer.ReadUint32(r, &count); err != nil {
		return n + int64(inc), err
	}
	n += int64(inc)

	if count > 0 {
		inst.Params = make([]float64, count)
		if inc, err = buffer.ReadFloat64Slice(r, inst.Params); err != nil {
			return n + int64(inc), err
		}
		n += int64(inc)
	}

	return
}

// MarshalBinary encodes the object into a byte slice.
func (c *Circuit) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(c.BinarySize())
	_, err = c.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [Circuit.MarshalBinary]
// on the object.
func (c *Circuit) UnmarshalBinary(p []byte) (err error) {
	_, err = c.ReadFrom(buffer.NewBuffer(p))
	return
}
