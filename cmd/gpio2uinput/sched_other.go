//go:build !linux

package main

import "errors"

func setRealtime() error {
	return errors.New("realtime scheduling is only supported on linux")
}
