//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	DWMWA_USE_IMMERSIVE_DARK_MODE = 20
	DWMWA_BORDER_COLOR            = 34
	DWMWA_CAPTION_COLOR           = 35
)

// SetTitleBarColor switches the window to a dark title bar tinted with the
// scene's fog color so the frame blends into the background.
func SetTitleBarColor(window *glfw.Window, hex uint) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}

	var useDarkMode int32 = 1
	setWindowAttribute(unsafe.Pointer(hwnd), DWMWA_USE_IMMERSIVE_DARK_MODE, unsafe.Pointer(&useDarkMode), unsafe.Sizeof(useDarkMode))

	colorBGR := colorRef(hex)
	setWindowAttribute(unsafe.Pointer(hwnd), DWMWA_BORDER_COLOR, unsafe.Pointer(&colorBGR), unsafe.Sizeof(colorBGR))
	setWindowAttribute(unsafe.Pointer(hwnd), DWMWA_CAPTION_COLOR, unsafe.Pointer(&colorBGR), unsafe.Sizeof(colorBGR))
}

func setWindowAttribute(hwnd unsafe.Pointer, attribute uintptr, value unsafe.Pointer, size uintptr) {
	procDwmSetWindowAttribute.Call(uintptr(hwnd), attribute, uintptr(value), size)
}
