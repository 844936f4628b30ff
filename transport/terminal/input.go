package terminal

import (
	"io"
)

// Key is a decoded keypress
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyReset
	KeyRestart
	KeyQuit
)

// Direction returns the move name of a movement key, or ""
func (k Key) Direction() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	}
	return ""
}

// ReadKey reads one keypress from r. Arrow keys arrive as CSI (ESC [) or
// SS3 (ESC O) sequences; Ctrl+C and Ctrl+D quit.
func ReadKey(r io.ByteReader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}

	switch b {
	case 0x1b:
		return readEscape(r)
	case 'w', 'W', 'k', 'K':
		return KeyUp, nil
	case 's', 'S', 'j', 'J':
		return KeyDown, nil
	case 'a', 'A', 'h', 'H':
		return KeyLeft, nil
	case 'd', 'D', 'l', 'L':
		return KeyRight, nil
	case 'r', 'R':
		return KeyReset, nil
	case 't', 'T':
		return KeyRestart, nil
	case 'q', 'Q', 3, 4:
		return KeyQuit, nil
	}
	return KeyUnknown, nil
}

func readEscape(r io.ByteReader) (Key, error) {
	b2, err := r.ReadByte()
	if err == io.EOF {
		// A lone ESC
		return KeyQuit, nil
	}
	if err != nil {
		return KeyUnknown, err
	}
	if b2 != '[' && b2 != 'O' {
		return KeyUnknown, nil
	}

	b3, err := r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}
	switch b3 {
	case 'A':
		return KeyUp, nil
	case 'B':
		return KeyDown, nil
	case 'C':
		return KeyRight, nil
	case 'D':
		return KeyLeft, nil
	}
	return KeyUnknown, nil
}
