package chip8

// TimerRate is the frequency in Hz at which Tick has to be called,
// independent of the instruction rate.
const TimerRate = 60

// ToneEvent describes the sound state after a timer tick.
type ToneEvent int

const (
	// ToneSilent means the sound timer was already zero.
	ToneSilent ToneEvent = iota
	// ToneActive means the sound timer is still running.
	ToneActive
	// ToneEnded means the sound timer reached zero on this tick.
	ToneEnded
)

func (e ToneEvent) String() string {
	switch e {
	case ToneSilent:
		return "silent"
	case ToneActive:
		return "active"
	case ToneEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Tick advances both timers by one tick. Each timer is decremented
// independently if it is not zero.
func (m *Machine) Tick() ToneEvent {
	if m.DelayTimer > 0 {
		m.DelayTimer--
	}

	switch m.SoundTimer {
	case 0:
		return ToneSilent
	case 1:
		m.SoundTimer = 0
		return ToneEnded
	default:
		m.SoundTimer--
		return ToneActive
	}
}

// ToneActive reports whether the tone should currently sound.
func (m *Machine) ToneActive() bool {
	return m.SoundTimer > 0
}
