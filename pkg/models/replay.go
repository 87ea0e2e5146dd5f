package models

// ReplayWindow is the receiver side sliding window of RFC 4303 3.4.3,
// tracking the highest sequence seen and a bitmap of the ones below it.
type ReplayWindow struct {
	Size   uint64
	Top    uint64
	Bitmap uint64
}

const MaxReplayWindow = 64

func (w *ReplayWindow) size() uint64 {
	if w.Size == 0 || w.Size > MaxReplayWindow {
		return MaxReplayWindow
	}
	return w.Size
}

// Check returns true if seq may be accepted. It does not update the window.
func (w *ReplayWindow) Check(seq uint64) bool {
	if seq == 0 {
		return false
	}
	if seq > w.Top {
		return true
	}
	diff := w.Top - seq
	if diff >= w.size() {
		return false
	}
	return w.Bitmap&(1<<diff) == 0
}

// Update marks seq as received, Check must have passed.
func (w *ReplayWindow) Update(seq uint64) {
	if seq > w.Top {
		shift := seq - w.Top
		if shift >= MaxReplayWindow {
			w.Bitmap = 0
		} else {
			w.Bitmap <<= shift
		}
		w.Bitmap |= 1
		w.Top = seq
		return
	}
	w.Bitmap |= 1 << (w.Top - seq)
}
