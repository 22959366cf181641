package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// isTerminalExitKey reports keys that leave terminal mode instead of
// being forwarded.
func isTerminalExitKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+\\", "ctrl+]", "ctrl+q":
		return true
	}
	return false
}

var csiKeys = map[tea.KeyType]string{
	tea.KeyPgUp:     "\x1b[5~",
	tea.KeyPgDown:   "\x1b[6~",
	tea.KeyDelete:   "\x1b[3~",
	tea.KeyInsert:   "\x1b[2~",
	tea.KeyShiftTab: "\x1b[Z",
	tea.KeyF1:       "\x1bOP",
	tea.KeyF2:       "\x1bOQ",
	tea.KeyF3:       "\x1bOR",
	tea.KeyF4:       "\x1bOS",
	tea.KeyF5:       "\x1b[15~",
	tea.KeyF6:       "\x1b[17~",
	tea.KeyF7:       "\x1b[18~",
	tea.KeyF8:       "\x1b[19~",
	tea.KeyF9:       "\x1b[20~",
	tea.KeyF10:      "\x1b[21~",
	tea.KeyF11:      "\x1b[23~",
	tea.KeyF12:      "\x1b[24~",
}

// cursorKeys end in the final byte of their CSI/SS3 form.
var cursorKeys = map[tea.KeyType]byte{
	tea.KeyUp:    'A',
	tea.KeyDown:  'B',
	tea.KeyRight: 'C',
	tea.KeyLeft:  'D',
	tea.KeyHome:  'H',
	tea.KeyEnd:   'F',
}

// keyToBytes translates a key press into the bytes a terminal would send.
// appCursor selects the SS3 form of cursor keys (DECCKM). Unknown keys
// yield nil.
func keyToBytes(msg tea.KeyMsg, appCursor bool) []byte {
	var out []byte
	switch {
	case msg.Type == tea.KeyRunes:
		out = []byte(string(msg.Runes))
	case msg.Type == tea.KeySpace:
		out = []byte{' '}
	case msg.Type >= 0 && msg.Type < 0x20, msg.Type == tea.KeyBackspace:
		// C0 controls, including enter (CR), tab and escape, are their own
		// key codes.
		out = []byte{byte(msg.Type)}
	default:
		if f, ok := cursorKeys[msg.Type]; ok {
			if appCursor {
				out = []byte{0x1b, 'O', f}
			} else {
				out = []byte{0x1b, '[', f}
			}
		} else if s, ok := csiKeys[msg.Type]; ok {
			out = []byte(s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	if msg.Alt {
		out = append([]byte{0x1b}, out...)
	}
	return out
}
