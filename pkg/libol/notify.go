package libol

import (
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
)

// PreNotify tells systemd we are still loading.
func PreNotify() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReloading); err != nil {
		Debug("PreNotify: %s", err)
	}
}

func SdNotify() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		Warn("SdNotify: %s", err)
		return
	}
	if !sent {
		Debug("SdNotify: NOTIFY_SOCKET %q not set", os.Getenv("NOTIFY_SOCKET"))
	}
}

func SdStopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}
