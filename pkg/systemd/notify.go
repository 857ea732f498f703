package systemd

import (
	"errors"
	"net"
	"os"

	"github.com/LeoCommon/nmea-emitter/pkg/log"
)

var ErrNoNotifySocket = errors.New("systemd-notify socket was not available")

// EntertainWatchdog sends a notification to the systemd watchdog
func EntertainWatchdog() error {
	return Notify(NotifyWatchdog)
}

// Ready tells systemd that startup is complete
func Ready() error {
	log.Debug("Notifying systemd about readiness")
	return Notify(NotifyReady)
}

func Stopping() error {
	log.Debug("Notifying systemd about shutdown")
	return Notify(NotifyStopping)
}

// Notify sends the provided msg to the systemd socket
func Notify(msg string) error {
	name := os.Getenv(NotifySocketEnvVar)
	if name == "" {
		return ErrNoNotifySocket
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Net: "unixgram", Name: name})
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(msg))
	return err
}
