package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/genc-murat/crystalstats/internal/core/models"
)

var ErrProtocol = errors.New("resp: protocol error")

const (
	// MaxBulkLength matches the server's default proto-max-bulk-len.
	MaxBulkLength = 512 << 20
	// MaxArrayLength bounds the element count of an array frame.
	MaxArrayLength = 1<<31 - 1

	// arrays grow past this many elements as they are read
	arrayPrealloc = 1024
)

type Reader struct {
	rd *bufio.Reader
}

func NewReader(rd io.Reader) *Reader {
	return &Reader{rd: bufio.NewReader(rd)}
}

// Read decodes the next frame. Error replies are returned as values of type
// "error", not as Go errors; the returned error is reserved for I/O and
// framing faults.
func (r *Reader) Read() (models.Value, error) {
	typ, err := r.rd.ReadByte()
	if err != nil {
		return models.Value{}, err
	}

	switch typ {
	case '+':
		return r.readSimpleString()
	case '-':
		return r.readError()
	case ':':
		return r.readInteger()
	case '$':
		return r.readBulkString()
	case '*':
		return r.readArray()
	default:
		return models.Value{}, fmt.Errorf("%w: unknown type %q", ErrProtocol, typ)
	}
}

func (r *Reader) readLine() (string, error) {
	line, err := r.rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}
	return line[:len(line)-2], nil
}

func (r *Reader) readLength() (int64, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad length %q", ErrProtocol, line)
	}
	return n, nil
}

func (r *Reader) readSimpleString() (models.Value, error) {
	line, err := r.readLine()
	if err != nil {
		return models.Value{}, err
	}
	return models.Value{Type: "string", Str: line}, nil
}

func (r *Reader) readError() (models.Value, error) {
	line, err := r.readLine()
	if err != nil {
		return models.Value{}, err
	}
	return models.Value{Type: "error", Str: line}, nil
}

func (r *Reader) readInteger() (models.Value, error) {
	line, err := r.readLine()
	if err != nil {
		return models.Value{}, err
	}
	num, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return models.Value{}, fmt.Errorf("%w: bad integer %q", ErrProtocol, line)
	}
	return models.Value{Type: "integer", Num: num}, nil
}

func (r *Reader) readBulkString() (models.Value, error) {
	length, err := r.readLength()
	if err != nil {
		return models.Value{}, err
	}
	if length == -1 {
		return models.Value{Type: "null"}, nil
	}
	if length < 0 {
		return models.Value{}, fmt.Errorf("%w: negative bulk length %d", ErrProtocol, length)
	}
	if length > MaxBulkLength {
		return models.Value{}, fmt.Errorf("%w: bulk length %d exceeds %d", ErrProtocol, length, MaxBulkLength)
	}

	// payload plus trailing CRLF; the buffer grows with the data that
	// actually arrives rather than with the declared length
	bulk, err := io.ReadAll(io.LimitReader(r.rd, length+2))
	if err != nil {
		return models.Value{}, err
	}
	if int64(len(bulk)) < length+2 {
		return models.Value{}, io.ErrUnexpectedEOF
	}
	if bulk[length] != '\r' || bulk[length+1] != '\n' {
		return models.Value{}, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrProtocol)
	}

	return models.Value{Type: "bulk", Bulk: string(bulk[:length])}, nil
}

func (r *Reader) readArray() (models.Value, error) {
	length, err := r.readLength()
	if err != nil {
		return models.Value{}, err
	}
	if length == -1 {
		return models.Value{Type: "null"}, nil
	}
	if length < 0 {
		return models.Value{}, fmt.Errorf("%w: negative array length %d", ErrProtocol, length)
	}
	if length > MaxArrayLength {
		return models.Value{}, fmt.Errorf("%w: array length %d exceeds %d", ErrProtocol, length, MaxArrayLength)
	}

	array := make([]models.Value, 0, min(length, arrayPrealloc))
	for i := int64(0); i < length; i++ {
		value, err := r.Read()
		if err != nil {
			return models.Value{}, err
		}
		array = append(array, value)
	}

	return models.Value{Type: "array", Array: array}, nil
}
