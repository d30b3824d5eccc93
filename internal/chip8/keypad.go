package chip8

import "fmt"

// KeyCount is the number of keys of the hex keypad.
const KeyCount = 16

// Keypad holds the pressed state of the keys 0x0-0xF.
type Keypad [KeyCount]bool

// first returns the lowest numbered pressed key.
func (k *Keypad) first() (byte, bool) {
	for key, pressed := range k {
		if pressed {
			return byte(key), true
		}
	}
	return 0, false
}

// PressKey marks a key as pressed.
func (m *Machine) PressKey(key uint8) error {
	return m.setKey(key, true)
}

// ReleaseKey marks a key as released.
func (m *Machine) ReleaseKey(key uint8) error {
	return m.setKey(key, false)
}

// KeyPressed reports whether a key is currently pressed. Keys outside the
// keypad are never pressed.
func (m *Machine) KeyPressed(key uint8) bool {
	if int(key) >= KeyCount {
		return false
	}
	return m.keys[key]
}

// Keys returns a copy of the keypad state.
func (m *Machine) Keys() Keypad {
	return m.keys
}

func (m *Machine) setKey(key uint8, pressed bool) error {
	if int(key) >= KeyCount {
		return fmt.Errorf("%w: $%X", ErrInvalidKey, key)
	}
	m.keys[key] = pressed
	return nil
}
