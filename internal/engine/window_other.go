//go:build !windows

package engine

import "github.com/go-gl/glfw/v3.3/glfw"

// SetTitleBarColor is a no-op where the window manager owns decorations.
func SetTitleBarColor(window *glfw.Window, hex uint) {}
