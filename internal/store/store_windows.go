//go:build windows

package store

func checkOwnership(string) error { return nil }
